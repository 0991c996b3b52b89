package equipment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/tools"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ParseFormat 接受 csv、excel、xlsx，默认 excel
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "excel", "xlsx":
		return FormatExcel, true
	case "csv":
		return FormatCSV, true
	default:
		return "", false
	}
}

const (
	sheetName         = "装备列表"
	categorySheetName = "分类列表"
	uncategorized     = "未分类"
	dateLayout        = "2006-01-02"
)

// exportHeaders 导出列，导入模板不含 ID 列
var exportHeaders = []string{"ID", "名称", "序列号", "分类", "数量", "可用数量", "状态", "品牌", "型号", "购买日期", "购买价格", "位置", "描述"}

var templateHeaders = exportHeaders[1:]

// 导入时识别的列，值为内部字段名
const (
	colID                = "id"
	colName              = "name"
	colSerialNumber      = "serialNumber"
	colCategory          = "category"
	colQuantity          = "quantity"
	colAvailableQuantity = "availableQuantity"
	colStatus            = "status"
	colManufacturer      = "manufacturer"
	colModel             = "model"
	colPurchaseDate      = "purchaseDate"
	colPurchasePrice     = "purchasePrice"
	colLocation          = "location"
	colDescription       = "description"
)

// headerAliases 中文表头和英文字段名（忽略大小写和下划线）都可以识别
var headerAliases = map[string]string{
	"id": colID, "编号": colID,
	"name": colName, "名称": colName, "装备名称": colName,
	"serialnumber": colSerialNumber, "序列号": colSerialNumber,
	"category": colCategory, "categoryid": colCategory, "categoryname": colCategory, "分类": colCategory, "分类id": colCategory,
	"quantity": colQuantity, "数量": colQuantity, "总数量": colQuantity,
	"availablequantity": colAvailableQuantity, "可用数量": colAvailableQuantity,
	"status": colStatus, "状态": colStatus,
	"manufacturer": colManufacturer, "brand": colManufacturer, "品牌": colManufacturer, "制造商": colManufacturer,
	"model": colModel, "型号": colModel,
	"purchasedate": colPurchaseDate, "购买日期": colPurchaseDate,
	"purchaseprice": colPurchasePrice, "购买价格": colPurchasePrice,
	"location": colLocation, "位置": colLocation, "存放位置": colLocation,
	"description": colDescription, "描述": colDescription,
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	h = strings.ReplaceAll(strings.ToLower(h), "_", "")
	if col, ok := headerAliases[h]; ok {
		return col
	}
	return ""
}

// ImportOptions 导入开关
type ImportOptions struct {
	UpdateExisting bool
	SkipErrors     bool
}

// ImportResult Aborted 表示因未开启 SkipErrors 而提前终止，之前的行已生效
type ImportResult struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Errors   []string `json:"errors"`
	Aborted  bool     `json:"aborted"`
}

// rowError 行级错误，不是 *response.Error
type rowError struct {
	msg string
}

func (e *rowError) Error() string { return e.msg }

func rowErrorf(format string, args ...any) error {
	return &rowError{msg: fmt.Sprintf(format, args...)}
}

// Import 逐行导入，每行一个事务
func (s *Service) Import(ctx context.Context, r io.Reader, filename string, opts ImportOptions) (*ImportResult, error) {
	table, err := readTable(r, filename)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, response.ErrInvalidRequest.WithTips("文件内容为空")
	}

	columns := make([]string, len(table[0]))
	hasName, hasID := false, false
	for i, h := range table[0] {
		columns[i] = normalizeHeader(h)
		hasName = hasName || columns[i] == colName
		hasID = hasID || columns[i] == colID
	}
	if !hasName {
		return nil, response.ErrInvalidRequest.WithTips("无法识别表头，请使用导入模板")
	}

	result := &ImportResult{Errors: []string{}}
	for i, cells := range table[1:] {
		rowNum := i + 2
		if blankRow(cells) || (!hasID && commentRow(cells)) {
			continue
		}
		values := make(map[string]string, len(columns))
		for j, col := range columns {
			if col != "" && j < len(cells) {
				values[col] = cells[j]
			}
		}

		// 导出文件带 ID 列，分类列是分类名称
		updated, err := s.importRow(ctx, values, opts.UpdateExisting, hasID)
		if err != nil {
			var re *rowError
			if !errors.As(err, &re) {
				// 数据库错误直接终止
				return nil, database.Wrap(err, nil)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: %s", rowNum, re.msg))
			if !opts.SkipErrors {
				result.Aborted = true
				break
			}
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Imported++
		}
	}
	return result, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")) != "" {
			return false
		}
	}
	return true
}

// commentRow 模板里的说明行：只有第一格的 # 行，或 "# <分类ID>, 名称, 描述" 分类参考行
func commentRow(cells []string) bool {
	first := strings.TrimSpace(strings.TrimPrefix(cells[0], "\ufeff"))
	if !strings.HasPrefix(first, "#") {
		return false
	}
	if blankRow(cells[1:]) {
		return true
	}
	_, err := strconv.ParseUint(strings.TrimSpace(strings.TrimPrefix(first, "#")), 10, 64)
	return err == nil && (len(cells) <= 3 || blankRow(cells[3:]))
}

func readTable(r io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err := tools.ReadCSV(r)
		if err != nil {
			return nil, response.ErrInvalidRequest.WithTips("CSV 文件解析失败").WithOrigin(err)
		}
		return rows, nil
	case ".xlsx":
		rows, err := tools.ReadExcel(r)
		if err != nil {
			return nil, response.ErrInvalidRequest.WithTips("Excel 文件解析失败").WithOrigin(err)
		}
		return rows, nil
	default:
		return nil, response.ErrInvalidRequest.WithTips("仅支持 CSV 或 XLSX 文件")
	}
}

// importRow 返回 true 表示更新了已有装备
func (s *Service) importRow(ctx context.Context, values map[string]string, updateExisting, byName bool) (bool, error) {
	updated := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		in, err := parseRow(tx, values, byName)
		if err != nil {
			return err
		}

		var existing model.Equipment
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("serial_number = ?", in.SerialNumber).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			eq := &model.Equipment{}
			if err := apply(eq, in); err != nil {
				return rowErrorf("%s", tipsOf(err))
			}
			return saveRow(tx.Create(eq).Error, in.SerialNumber)
		case err != nil:
			return err
		}

		if !updateExisting {
			return rowErrorf("序列号 '%s' 已存在", in.SerialNumber)
		}
		if err := apply(&existing, in); err != nil {
			return rowErrorf("%s", tipsOf(err))
		}
		updated = true
		return saveRow(tx.Save(&existing).Error, in.SerialNumber)
	})
	return updated, err
}

// saveRow 并发导入同一序列号时由唯一索引兜底
func saveRow(err error, serial string) error {
	if database.IsDuplicate(err) {
		return rowErrorf("序列号 '%s' 已存在", serial)
	}
	return err
}

func tipsOf(err error) string {
	var e *response.Error
	if errors.As(err, &e) {
		return e.Tips()
	}
	return err.Error()
}

// parseRow 校验一行并解析成 Input，描述、品牌、型号、位置保留原文
func parseRow(tx *gorm.DB, v map[string]string, byName bool) (Input, error) {
	field := func(col string) string { return strings.TrimSpace(v[col]) }
	in := Input{
		Name:         field(colName),
		SerialNumber: field(colSerialNumber),
		Description:  v[colDescription],
		Manufacturer: v[colManufacturer],
		Model:        v[colModel],
		Location:     v[colLocation],
		Status:       field(colStatus),
	}
	if in.Name == "" {
		return in, rowErrorf("名称不能为空")
	}
	if in.SerialNumber == "" {
		return in, rowErrorf("序列号不能为空")
	}

	categoryID, err := resolveCategory(tx, field(colCategory), byName)
	if err != nil {
		return in, err
	}
	in.CategoryID = categoryID

	quantity, ok := parseInt(field(colQuantity))
	if !ok || quantity < 1 {
		return in, rowErrorf("数量必须是正整数")
	}
	in.Quantity = quantity

	raw := field(colAvailableQuantity)
	if raw == "" {
		return in, rowErrorf("可用数量不能为空")
	}
	available, ok := parseInt(raw)
	if !ok || available < 0 {
		return in, rowErrorf("可用数量必须是非负整数")
	}
	if available > quantity {
		return in, rowErrorf("可用数量不能大于总数量")
	}
	in.AvailableQuantity = &available

	if !model.ValidEquipmentStatus(in.Status) {
		return in, rowErrorf("状态无效，必须是 %s 之一", strings.Join(model.EquipmentStatuses, "、"))
	}

	if raw := field(colPurchaseDate); raw != "" {
		d, ok := parseDate(raw)
		if !ok {
			return in, rowErrorf("购买日期格式错误: %s，应为 yyyy-MM-dd", raw)
		}
		in.PurchaseDate = &d
	}
	if raw := field(colPurchasePrice); raw != "" {
		cleaned := strings.NewReplacer("¥", "", "￥", "", ",", "").Replace(raw)
		p, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
		if err != nil || p < 0 {
			return in, rowErrorf("购买价格格式错误: %s", raw)
		}
		in.PurchasePrice = &p
	}
	return in, nil
}

// resolveCategory 模板导入时数字先按 ID 查找，找不到再按名称精确匹配；
// byName 为 true 时顺序相反，导出文件里纯数字的分类名不会被当成 ID
func resolveCategory(tx *gorm.DB, raw string, byName bool) (uint, error) {
	if raw == "" {
		return 0, rowErrorf("分类不能为空")
	}
	lookups := []func() (uint, error){
		func() (uint, error) { return categoryByID(tx, raw) },
		func() (uint, error) { return categoryByName(tx, raw) },
	}
	if byName {
		lookups[0], lookups[1] = lookups[1], lookups[0]
	}
	for _, lookup := range lookups {
		id, err := lookup()
		if err != nil {
			return 0, err
		}
		if id != 0 {
			return id, nil
		}
	}
	return 0, rowErrorf("分类不存在: %s", raw)
}

// categoryByID 不是数字或不存在时返回 0
func categoryByID(tx *gorm.DB, raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	var c model.Category
	err = tx.Select("id").First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return c.ID, err
}

func categoryByName(tx *gorm.DB, name string) (uint, error) {
	var c model.Category
	err := tx.Select("id").Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return c.ID, err
}

// parseInt Excel 中的数字可能带 .0
func parseInt(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

var dateLayouts = []string{dateLayout, "2006/01/02", "2006-1-2", "2006/1/2", "2006.01.02", "01-02-06", time.RFC3339}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	// 未设置日期格式的单元格读出来是序列号
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), true
		}
	}
	return time.Time{}, false
}

func exportRow(eq model.Equipment) []any {
	category := uncategorized
	if eq.Category != nil {
		category = eq.Category.Name
	}
	date := ""
	if eq.PurchaseDate != nil {
		date = eq.PurchaseDate.Format(dateLayout)
	}
	price := ""
	if eq.PurchasePrice != nil {
		price = fmt.Sprintf("%.2f", *eq.PurchasePrice)
	}
	return []any{
		eq.ID, eq.Name, eq.SerialNumber, category, eq.Quantity, eq.AvailableQuantity, eq.Status,
		eq.Manufacturer, eq.ModelNo, date, price, eq.Location, eq.Description,
	}
}

// Export 按搜索条件导出全部匹配的装备，返回文件内容和文件名
func (s *Service) Export(ctx context.Context, f Filter, format Format) ([]byte, string, error) {
	list, err := s.All(ctx, f)
	if err != nil {
		return nil, "", err
	}
	rows := make([][]any, 0, len(list))
	for _, eq := range list {
		rows = append(rows, exportRow(eq))
	}

	name := "equipment_" + time.Now().Format("20060102150405")
	data, err := writeTable(format, exportHeaders, rows, nil)
	if err != nil {
		return nil, "", response.ErrServerInternal.WithOrigin(err)
	}
	return data, name + extension(format), nil
}

// Template 导入模板：表头、一行示例和现有分类
func (s *Service) Template(ctx context.Context, format Format) ([]byte, string, error) {
	var categories []model.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, "", database.Wrap(err, nil)
	}
	example := "请填入有效分类"
	if len(categories) > 0 {
		example = categories[0].Name
	}
	rows := [][]any{{"示例装备", "SN123456", example, 10, 8, model.EquipmentAvailable, "示例品牌", "X-100", "2023-01-01", "2000.00", "A区-01架", "示例描述"}}

	data, err := writeTable(format, templateHeaders, rows, categories)
	if err != nil {
		return nil, "", response.ErrServerInternal.WithOrigin(err)
	}
	return data, "equipment_import_template" + extension(format), nil
}

func extension(format Format) string {
	if format == FormatCSV {
		return ".csv"
	}
	return ".xlsx"
}

// writeTable categories 不为空时附上分类参考：CSV 写成 # 注释行，Excel 单独一个工作表
func writeTable(format Format, headers []string, rows [][]any, categories []model.Category) ([]byte, error) {
	var buf bytes.Buffer
	if format == FormatCSV {
		if categories != nil {
			rows = append(rows, []any{"# 可用分类（ID / 名称 / 描述），导入时分类列可以填写 ID 或名称"})
			for _, c := range categories {
				rows = append(rows, []any{fmt.Sprintf("# %d", c.ID), c.Name, c.Description})
			}
		}
		if err := tools.WriteCSV(&buf, headers, rows); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := tools.WriteSheet(f, sheetName, headers, rows); err != nil {
		return nil, err
	}
	if categories != nil {
		refs := make([][]any, 0, len(categories))
		for _, c := range categories {
			refs = append(refs, []any{c.ID, c.Name, c.Description})
		}
		if err := tools.WriteSheet(f, categorySheetName, []string{"ID", "名称", "描述"}, refs); err != nil {
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
