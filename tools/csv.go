package tools

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

const utf8BOM = "\ufeff"

// WriteCSV 写入带 UTF-8 BOM 的 CSV，Excel 打开中文不乱码
func WriteCSV(w io.Writer, headers []string, rows [][]any) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportToCSV 把结构体切片按 `excel` 标签写为 CSV
func ExportToCSV(w io.Writer, data any) error {
	headers, rows, err := TableOf(data)
	if err != nil {
		return err
	}
	return WriteCSV(w, headers, rows)
}

// ReadCSV 读取全部记录；去掉 BOM，非 UTF-8 内容按 GB18030 解码
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	var src io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		src, err = charset.NewReaderLabel("gb18030", src)
		if err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.ReadAll()
}
