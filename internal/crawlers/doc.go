// Package crawlers 提供单个法案页面的浏览器会话、等待、字段提取和诊断保存
//
// # 概述
//
// 目标站点是客户端渲染的React应用,页面HTML只有一个空的根节点,
// 真实内容由脚本异步挂载。因此每个URL都需要真实浏览器(go-rod)加载,
// 等待根节点出现,再等待异步内容稳定,最后按字段规则读取文本。
//
// # 核心组件
//
// ## Session / Launcher
//
// Session是一个URL独占的浏览器会话,Launcher负责创建。
// BrowserLauncher每次Open都启动全新的浏览器进程,会话之间不共享cookie和缓存。
// Close可以重复调用,只有第一次生效。
//
//	session, err := NewBrowserLauncher(browserConfig).Open()
//	if err != nil { /* SessionLaunchError */ }
//	defer session.Close()
//
//	err = session.Navigate("https://example.com/bill/123")
//
// MarkupLauncher从之前保存的page_source_<slug>.html创建只读会话(goquery),
// 用于离线验证字段规则。
//
// ## Waiter
//
// 两阶段等待:
//   - WaitForAppRoot: 等待根节点(默认#root)出现,超时返回RootNotFoundError
//   - Settle: 按模式等待异步渲染
//   - fixed:  固定休眠settle_delay
//   - stable: 轮询DOM直到稳定,settle_delay为上限,未稳定只记录日志
//   - none:   不等待
//
// ## FieldExtractor
//
// 每个字段有一张按顺序排列的定位规则表(CSS/XPath)。一次尝试内所有规则竞速,
// 先匹配到可见节点者胜出。失败扣减预算并休眠retry_delay,最后一次失败后不再休眠。
// 预算耗尽写入占位值,如"Digest not found"。
//
//	extractor := NewFieldExtractor(models.ExtractConfig{
//	    Retries:        3,
//	    VisibleTimeout: 30 * time.Second,
//	    RetryDelay:     5 * time.Second,
//	})
//	value, err := extractor.Extract(session, rule)
//
// ## Capturer
//
// 提取结束后保存screenshot_<slug>.png和page_source_<slug>.html,
// slug取URL最后一个非空路径段。两个文件独立写入,失败只记录日志。
//
// ## ResourceMonitor
//
// 启动浏览器前检查可用内存和CPU负载(gopsutil),资源紧张时等待,
// 超过max_wait后照常继续。
package crawlers
