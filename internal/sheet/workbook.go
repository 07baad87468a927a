// Package sheet 读写批处理使用的Excel工作簿
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrColumnNotFound 表头中没有指定列
var ErrColumnNotFound = errors.New("列不存在")

// Workbook 单个工作表的行视图
// 第1行是表头,数据行下标从0开始(对应表格第2行)
// 写入只修改目标单元格,其余单元格和样式原样保留
type Workbook struct {
	file    *excelize.File
	sheet   string
	headers []string
	rows    [][]string
}

// Open 打开工作簿,sheetName为空时使用第一个工作表
func Open(path, sheetName string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("打开工作簿失败 %s: %w", path, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("工作簿中没有工作表: %s", path)
	}

	if sheetName == "" {
		sheetName = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		f.Close()
		return nil, fmt.Errorf("工作表不存在: %s", sheetName)
	}

	all, err := f.GetRows(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	wb := &Workbook{file: f, sheet: sheetName}
	if len(all) > 0 {
		wb.headers = all[0]
		wb.rows = all[1:]
	}
	return wb, nil
}

// Sheet 当前工作表名
func (wb *Workbook) Sheet() string {
	return wb.sheet
}

// Headers 表头(可能因EnsureColumn而增长)
func (wb *Workbook) Headers() []string {
	return wb.headers
}

// Rows 数据行(不含表头),每行尾部的空单元格可能被省略
func (wb *Workbook) Rows() [][]string {
	return wb.rows
}

// RowCount 数据行数
func (wb *Workbook) RowCount() int {
	return len(wb.rows)
}

// ColumnIndex 按表头名查找列下标(0起),表头名两侧空白忽略
func (wb *Workbook) ColumnIndex(name string) (int, error) {
	for i, h := range wb.headers {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// EnsureColumn 列不存在时追加到表头末尾,返回列下标
func (wb *Workbook) EnsureColumn(name string) (int, error) {
	if idx, err := wb.ColumnIndex(name); err == nil {
		return idx, nil
	}

	idx := len(wb.headers)
	cell, err := excelize.CoordinatesToCellName(idx+1, 1)
	if err != nil {
		return -1, err
	}
	if err := wb.file.SetCellStr(wb.sheet, cell, name); err != nil {
		return -1, fmt.Errorf("写入表头失败: %w", err)
	}
	wb.headers = append(wb.headers, name)
	return idx, nil
}

// Cell 读取数据行的单元格文本,越界返回空字符串
func (wb *Workbook) Cell(row, col int) string {
	if row < 0 || row >= len(wb.rows) || col < 0 || col >= len(wb.rows[row]) {
		return ""
	}
	return wb.rows[row][col]
}

// SetText 以文本类型写入数据行的单元格
func (wb *Workbook) SetText(row, col int, value string) error {
	if row < 0 || row >= len(wb.rows) {
		return fmt.Errorf("数据行越界: %d", row)
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+2)
	if err != nil {
		return err
	}
	if err := wb.file.SetCellStr(wb.sheet, cell, value); err != nil {
		return fmt.Errorf("写入单元格 %s 失败: %w", cell, err)
	}

	for len(wb.rows[row]) <= col {
		wb.rows[row] = append(wb.rows[row], "")
	}
	wb.rows[row][col] = value
	return nil
}

// SaveAs 保存到新路径,必要时创建目录
func (wb *Workbook) SaveAs(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := wb.file.SaveAs(path); err != nil {
		return fmt.Errorf("保存工作簿失败 %s: %w", path, err)
	}
	return nil
}

// Close 释放工作簿
func (wb *Workbook) Close() error {
	return wb.file.Close()
}
