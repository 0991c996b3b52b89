package equipment

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/test"
	"equipment-lending-system/tools"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const csvHeader = "名称,序列号,分类,数量,可用数量,状态,品牌,型号,购买日期,购买价格,位置,描述\n"

func importCSV(t *testing.T, s *Service, body string, opts ImportOptions) *ImportResult {
	t.Helper()
	result, err := s.Import(context.Background(), strings.NewReader(body), "equipment.csv", opts)
	require.NoError(t, err)
	return result
}

func findBySerial(t *testing.T, db *gorm.DB, serial string) (model.Equipment, bool) {
	t.Helper()
	var eq model.Equipment
	err := db.Where("serial_number = ?", serial).First(&eq).Error
	if err == gorm.ErrRecordNotFound {
		return eq, false
	}
	require.NoError(t, err)
	return eq, true
}

func TestImportCreatesRows(t *testing.T) {
	s, db, category := newService(t)
	body := csvHeader +
		"冲击钻,SN-100,电动工具,5,5,可用,Bosch,GSB,2023-03-01,1299.00,A区,大功率\n" +
		fmt.Sprintf("角磨机,SN-101,%d,3,2,维修中,,,2023/4/5,\"1,050.5\",,\n", category.ID)

	result := importCSV(t, s, body, ImportOptions{})
	require.Equal(t, 2, result.Imported)
	require.Equal(t, 0, result.Updated)
	require.Empty(t, result.Errors)
	require.False(t, result.Aborted)

	drill, ok := findBySerial(t, db, "SN-100")
	require.True(t, ok)
	require.Equal(t, category.ID, drill.CategoryID)
	require.Equal(t, "GSB", drill.ModelNo)
	require.Equal(t, "2023-03-01", drill.PurchaseDate.Format("2006-01-02"))
	require.InDelta(t, 1299.0, *drill.PurchasePrice, 0.001)

	grinder, ok := findBySerial(t, db, "SN-101")
	require.True(t, ok)
	require.Equal(t, 2, grinder.AvailableQuantity)
	require.Equal(t, model.EquipmentRepairing, grinder.Status)
	require.InDelta(t, 1050.5, *grinder.PurchasePrice, 0.001)
}

func TestImportDuplicateSerial(t *testing.T) {
	s, db, category := newService(t)
	test.CreateEquipment(t, db, category.ID, "Drill", "SN-001", 5)
	body := csvHeader +
		"Drill,SN-001,电动工具,9,9,可用,,,,,,\n" +
		"Saw,SN-002,电动工具,1,1,可用,,,,,,\n"

	result := importCSV(t, s, body, ImportOptions{SkipErrors: true})
	require.Equal(t, 1, result.Imported)
	require.Equal(t, 0, result.Updated)
	require.Equal(t, []string{"第2行: 序列号 'SN-001' 已存在"}, result.Errors)

	existing, _ := findBySerial(t, db, "SN-001")
	require.Equal(t, 5, existing.Quantity)
	_, ok := findBySerial(t, db, "SN-002")
	require.True(t, ok)
}

func TestImportUpdatesExisting(t *testing.T) {
	s, db, category := newService(t)
	test.CreateEquipment(t, db, category.ID, "Drill", "SN-001", 5)
	body := csvHeader + "Drill Pro,SN-001,电动工具,9,7,可用,Makita,,,,B区,\n"

	result := importCSV(t, s, body, ImportOptions{UpdateExisting: true})
	require.Equal(t, 0, result.Imported)
	require.Equal(t, 1, result.Updated)

	eq, _ := findBySerial(t, db, "SN-001")
	require.Equal(t, "Drill Pro", eq.Name)
	require.Equal(t, 9, eq.Quantity)
	require.Equal(t, 7, eq.AvailableQuantity)
	require.Equal(t, "Makita", eq.Manufacturer)
	require.Nil(t, eq.PurchaseDate)
}

func TestImportAbortsWithoutSkipErrors(t *testing.T) {
	s, db, _ := newService(t)
	body := csvHeader +
		"A,SN-A,电动工具,1,1,可用,,,,,,\n" +
		"B,SN-B,电动工具,0,0,可用,,,,,,\n" +
		"C,SN-C,电动工具,1,1,可用,,,,,,\n"

	result := importCSV(t, s, body, ImportOptions{})
	require.True(t, result.Aborted)
	require.Equal(t, 1, result.Imported)
	require.Equal(t, []string{"第3行: 数量必须是正整数"}, result.Errors)

	_, ok := findBySerial(t, db, "SN-A")
	require.True(t, ok, "rows before the failure stay applied")
	_, ok = findBySerial(t, db, "SN-C")
	require.False(t, ok)
}

func TestImportRowValidation(t *testing.T) {
	cases := []struct {
		row  string
		want string
	}{
		{"钻,,电动工具,1,1,可用,,,,,,", "序列号不能为空"},
		{"钻,SN-1,,1,1,可用,,,,,,", "分类不能为空"},
		{"钻,SN-1,木工,1,1,可用,,,,,,", "分类不存在: 木工"},
		{"钻,SN-1,999,1,1,可用,,,,,,", "分类不存在: 999"},
		{"钻,SN-1,电动工具,abc,1,可用,,,,,,", "数量必须是正整数"},
		{"钻,SN-1,电动工具,10,15,可用,,,,,,", "可用数量不能大于总数量"},
		{"钻,SN-1,电动工具,10,,可用,,,,,,", "可用数量不能为空"},
		{"钻,SN-1,电动工具,10,-1,可用,,,,,,", "可用数量必须是非负整数"},
		{"钻,SN-1,电动工具,1,1,坏了,,,,,,", "状态无效"},
		{"钻,SN-1,电动工具,1,1,可用,,,2023-13-45,,,", "购买日期格式错误"},
		{"钻,SN-1,电动工具,1,1,可用,,,,abc,,", "购买价格格式错误"},
	}
	for i, c := range cases {
		t.Run(fmt.Sprintf("row%d", i), func(t *testing.T) {
			s, db, _ := newService(t)
			result := importCSV(t, s, csvHeader+c.row+"\n", ImportOptions{SkipErrors: true})
			require.Equal(t, 0, result.Imported)
			require.Len(t, result.Errors, 1)
			require.True(t, strings.HasPrefix(result.Errors[0], "第2行: "), result.Errors[0])
			require.Contains(t, result.Errors[0], c.want)

			var n int64
			require.NoError(t, db.Model(&model.Equipment{}).Count(&n).Error)
			require.Zero(t, n)
		})
	}
}

func TestImportEnglishHeadersAndCommentRows(t *testing.T) {
	s, db, category := newService(t)
	numeric := test.CreateCategory(t, db, "2024")
	body := "name,serial_number,categoryId,quantity,availableQuantity,status\n" +
		"# 说明行\n" +
		",,,,,\n" +
		fmt.Sprintf("钻,SN-1,%d,2,2,可用\n", category.ID) +
		"帐篷,SN-2,2024,1,1,可用\n" +
		"梯子,SN-3,x,1,1,可用\n"

	result := importCSV(t, s, body, ImportOptions{SkipErrors: true})
	require.Equal(t, 2, result.Imported)
	require.Equal(t, []string{"第6行: 分类不存在: x"}, result.Errors)

	tent, _ := findBySerial(t, db, "SN-2")
	require.Equal(t, numeric.ID, tent.CategoryID, "numeric text falls back to a name match")
}

func TestImportNamesStartingWithHash(t *testing.T) {
	s, db, category := newService(t)
	body := csvHeader +
		"#1 Drill,SN-H1,电动工具,5,5,可用,,,,,,\n" +
		fmt.Sprintf("# %d,电动工具,电动工具类装备\n", category.ID) +
		"# 说明\n" +
		",SN-H2,电动工具,1,1,可用,,,,,,\n"

	result := importCSV(t, s, body, ImportOptions{SkipErrors: true})
	require.Equal(t, 1, result.Imported)
	require.Equal(t, []string{"第5行: 名称不能为空"}, result.Errors)

	eq, ok := findBySerial(t, db, "SN-H1")
	require.True(t, ok)
	require.Equal(t, "#1 Drill", eq.Name)
}

func TestImportRejectsUnknownFiles(t *testing.T) {
	s, _, _ := newService(t)
	_, err := s.Import(context.Background(), strings.NewReader("x"), "equipment.txt", ImportOptions{})
	require.ErrorIs(t, err, response.ErrInvalidRequest)

	_, err = s.Import(context.Background(), strings.NewReader("foo,bar\n1,2\n"), "equipment.csv", ImportOptions{})
	require.ErrorIs(t, err, response.ErrInvalidRequest)
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatExcel} {
		t.Run(string(format), func(t *testing.T) {
			s, db, category := newService(t)
			ctx := context.Background()
			first := test.CreateEquipment(t, db, category.ID, "冲击钻, 大号", "SN-1", 5)
			first.Description = "  line1\nline2  "
			first.Manufacturer = " Bosch "
			require.NoError(t, db.Save(first).Error)
			// 分类名恰好是另一个分类的 ID
			numeric := test.CreateCategory(t, db, fmt.Sprint(category.ID))
			second, err := s.Create(ctx, Input{Name: "帐篷", SerialNumber: "SN-2", CategoryID: numeric.ID, Quantity: 3, AvailableQuantity: intPtr(1), Status: model.EquipmentRepairing, Location: "B区 "})
			require.NoError(t, err)

			data, name, err := s.Export(ctx, Filter{}, format)
			require.NoError(t, err)
			require.True(t, strings.HasSuffix(name, extension(format)))
			if format == FormatCSV {
				require.True(t, bytes.HasPrefix(data, []byte("\ufeff")))
			}

			// 导出后修改数据库，再导入应恢复原值
			require.NoError(t, db.Model(&model.Equipment{}).Where("id IN ?", []uint{first.ID, second.ID}).
				Updates(map[string]any{"name": "changed", "location": "changed", "description": "changed",
					"manufacturer": "changed", "category_id": category.ID, "available_quantity": 0}).Error)

			result, err := s.Import(ctx, bytes.NewReader(data), name, ImportOptions{UpdateExisting: true})
			require.NoError(t, err)
			require.Empty(t, result.Errors)
			require.Equal(t, 2, result.Updated)

			for _, want := range []*model.Equipment{first, second} {
				got, err := s.Get(ctx, want.ID)
				require.NoError(t, err)
				require.Equal(t, want.Name, got.Name)
				require.Equal(t, want.SerialNumber, got.SerialNumber)
				require.Equal(t, want.CategoryID, got.CategoryID)
				require.Equal(t, want.Quantity, got.Quantity)
				require.Equal(t, want.AvailableQuantity, got.AvailableQuantity)
				require.Equal(t, want.Status, got.Status)
				require.Equal(t, want.Manufacturer, got.Manufacturer)
				require.Equal(t, want.ModelNo, got.ModelNo)
				require.Equal(t, want.Location, got.Location)
				require.Equal(t, want.Description, got.Description)
				if want.PurchaseDate == nil {
					require.Nil(t, got.PurchaseDate)
				} else {
					require.Equal(t, want.PurchaseDate.Format(dateLayout), got.PurchaseDate.Format(dateLayout))
				}
				if want.PurchasePrice == nil {
					require.Nil(t, got.PurchasePrice)
				} else {
					require.InDelta(t, *want.PurchasePrice, *got.PurchasePrice, 0.001)
				}
			}
		})
	}
}

func TestExportColumns(t *testing.T) {
	s, db, category := newService(t)
	eq := test.CreateEquipment(t, db, category.ID, "钻", "SN-1", 2)
	require.NoError(t, db.Create(&model.Equipment{Name: "孤儿", SerialNumber: "SN-2", CategoryID: 999, Quantity: 1, AvailableQuantity: 1}).Error)

	data, _, err := s.Export(context.Background(), Filter{}, FormatCSV)
	require.NoError(t, err)
	rows, err := tools.ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, exportHeaders, rows[0])
	require.Len(t, rows, 3)
	require.Equal(t, []string{"SN-2", uncategorized, "", ""}, []string{rows[1][2], rows[1][3], rows[1][9], rows[1][10]})
	require.Equal(t, []string{fmt.Sprint(eq.ID), "钻", "SN-1", "电动工具", "2", "2", "可用", "Bosch", "X-1", "2023-01-01", "199.50", "A区", ""}, rows[2])

	data, _, err = s.Export(context.Background(), Filter{Keyword: "SN-1"}, FormatCSV)
	require.NoError(t, err)
	rows, err = tools.ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestTemplate(t *testing.T) {
	s, db, category := newService(t)
	test.CreateCategory(t, db, "露营")
	ctx := context.Background()

	data, name, err := s.Template(ctx, FormatCSV)
	require.NoError(t, err)
	require.Equal(t, "equipment_import_template.csv", name)
	rows, err := tools.ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, templateHeaders, rows[0])
	require.Equal(t, "示例装备", rows[1][0])
	require.Equal(t, category.Name, rows[1][2])
	require.Contains(t, string(data), "# 1")
	require.Contains(t, string(data), "露营")

	// 模板本身可以直接导入，说明行会被跳过
	result, err := s.Import(ctx, bytes.NewReader(data), name, ImportOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)
	require.Empty(t, result.Errors)

	data, name, err = s.Template(ctx, FormatExcel)
	require.NoError(t, err)
	require.Equal(t, "equipment_import_template.xlsx", name)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{sheetName, categorySheetName}, f.GetSheetList())
	refs, err := f.GetRows(categorySheetName)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	require.Equal(t, "露营", refs[2][1])
}

func TestTemplateWithoutCategories(t *testing.T) {
	db := test.NewDB(t)
	s := NewService(db)
	data, _, err := s.Template(context.Background(), FormatCSV)
	require.NoError(t, err)
	rows, err := tools.ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "请填入有效分类", rows[1][2])
}
