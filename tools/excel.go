package tools

import (
	"fmt"
	"io"
	"reflect"

	"github.com/xuri/excelize/v2"
)

// TableOf 把结构体切片按 `excel` 标签展开为表头和行，标签为 "-" 的字段跳过，nil 指针输出为空串
func TableOf(data any) ([]string, [][]any, error) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return nil, nil, fmt.Errorf("data %T 不是切片", data)
	}
	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("data %T 不是结构体切片", data)
	}

	type fieldInfo struct {
		index  []int
		header string
	}
	var fields []fieldInfo
	var collect func(t reflect.Type, parent []int)
	collect = func(t reflect.Type, parent []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" {
				continue
			}
			idx := append(append([]int(nil), parent...), i)
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				collect(sf.Type, idx)
				continue
			}
			tag := sf.Tag.Get("excel")
			if tag == "-" {
				continue
			}
			if tag == "" {
				tag = sf.Name
			}
			fields = append(fields, fieldInfo{index: idx, header: tag})
		}
	}
	collect(elemType, nil)

	headers := make([]string, len(fields))
	for i, fi := range fields {
		headers[i] = fi.header
	}

	rows := make([][]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		row := make([]any, len(fields))
		for col, fi := range fields {
			fv := elem.FieldByIndex(fi.index)
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					row[col] = ""
					continue
				}
				fv = fv.Elem()
			}
			row[col] = fv.Interface()
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// ExportToExcel 把结构体切片写入 sheet，表头加粗
func ExportToExcel(f *excelize.File, sheet string, data any) error {
	headers, rows, err := TableOf(data)
	if err != nil {
		return err
	}
	return WriteSheet(f, sheet, headers, rows)
}

// WriteSheet 写入表头和数据行，sheet 不存在时创建
func WriteSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	if sheet == "" {
		sheet = "Sheet1"
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if len(headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(headers))
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
			return err
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return nil
}

// ReadExcel 读取第一个工作表的全部行
func ReadExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("文件中没有工作表")
	}
	return f.GetRows(sheets[0])
}
