package models

const (
	// URLColumn 输入表中的URL列
	URLColumn = "URL Address"

	// DigestColumn 摘要输出列
	DigestColumn = "Digest"
	// AuthorsColumn 作者输出列
	AuthorsColumn = "Bill Authors"

	// DigestSentinel 摘要未找到时写入的占位值
	DigestSentinel = "Digest not found"
	// AuthorsSentinel 作者未找到时写入的占位值
	AuthorsSentinel = "Authors not found"

	FieldDigest  = "digest"
	FieldAuthors = "authors"
)

// LocatorKind 定位方式
type LocatorKind string

const (
	LocatorCSS   LocatorKind = "css"
	LocatorXPath LocatorKind = "xpath"
)

// Locator 一条定位规则
type Locator struct {
	Kind  LocatorKind `json:"kind"`
	Query string      `json:"query"`
}

// CSS 构造CSS定位规则
func CSS(query string) Locator {
	return Locator{Kind: LocatorCSS, Query: query}
}

// XPath 构造XPath定位规则
func XPath(query string) Locator {
	return Locator{Kind: LocatorXPath, Query: query}
}

// FieldRule 语义字段 -> 按顺序尝试的定位规则
// 目标站点改版导致生成的类名变化时,只需要修改这里的数据
type FieldRule struct {
	Name     string    `json:"name"`
	Column   string    `json:"column"`
	Sentinel string    `json:"sentinel"`
	Locators []Locator `json:"locators"`
}

// Active 是否配置了定位规则
func (r FieldRule) Active() bool {
	return len(r.Locators) > 0
}

// DefaultFieldRules 默认字段规则表
// 作者字段尚无可用的定位规则,始终返回占位值
func DefaultFieldRules() []FieldRule {
	return []FieldRule{
		{
			Name:     FieldDigest,
			Column:   DigestColumn,
			Sentinel: DigestSentinel,
			Locators: []Locator{
				CSS("div.BillDetails_digest__3rGrH p.CollapsibleDigest_digestText__1KQdW"),
			},
		},
		{
			Name:     FieldAuthors,
			Column:   AuthorsColumn,
			Sentinel: AuthorsSentinel,
		},
	}
}

// OutputColumns 规则表涉及的全部输出列(保持规则顺序)
func OutputColumns(rules []FieldRule) []string {
	columns := make([]string, 0, len(rules))
	for _, r := range rules {
		columns = append(columns, r.Column)
	}
	return columns
}
