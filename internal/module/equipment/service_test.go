package equipment

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/test"
	"equipment-lending-system/tools"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func intPtr(v int) *int { return &v }

func newService(t *testing.T) (*Service, *gorm.DB, *model.Category) {
	db := test.NewDB(t)
	return NewService(db), db, test.CreateCategory(t, db, "电动工具")
}

func TestCreateEquipment(t *testing.T) {
	s, _, category := newService(t)
	ctx := context.Background()

	eq, err := s.Create(ctx, Input{Name: " 冲击钻 ", SerialNumber: "SN-1", CategoryID: category.ID, Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, "冲击钻", eq.Name)
	require.Equal(t, 4, eq.AvailableQuantity)
	require.Equal(t, model.EquipmentAvailable, eq.Status)
	require.Equal(t, "电动工具", eq.Category.Name)

	_, err = s.Create(ctx, Input{Name: "另一台", SerialNumber: "SN-1", CategoryID: category.ID, Quantity: 1})
	require.ErrorIs(t, err, response.ErrAlreadyExists)
	require.Contains(t, err.Error(), "序列号 'SN-1' 已存在")

	_, err = s.Create(ctx, Input{Name: "无分类", CategoryID: 999, Quantity: 1})
	require.ErrorIs(t, err, response.ErrNotFound)

	_, err = s.Create(ctx, Input{Name: "超量", CategoryID: category.ID, Quantity: 2, AvailableQuantity: intPtr(3)})
	require.ErrorIs(t, err, response.ErrInvalidRequest)

	// 序列号可以为空，且不参与唯一性检查
	_, err = s.Create(ctx, Input{Name: "无序列号A", CategoryID: category.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = s.Create(ctx, Input{Name: "无序列号B", CategoryID: category.ID, Quantity: 1})
	require.NoError(t, err)
}

func TestUpdateReconcilesAvailableQuantity(t *testing.T) {
	s, db, category := newService(t)
	ctx := context.Background()
	eq := test.CreateEquipment(t, db, category.ID, "梯子", "SN-L", 5)
	require.NoError(t, db.Model(eq).Update("available_quantity", 3).Error)

	in := Input{Name: "梯子", SerialNumber: "SN-L", CategoryID: category.ID, Quantity: 8}
	got, err := s.Update(ctx, eq.ID, in)
	require.NoError(t, err)
	require.Equal(t, 8, got.Quantity)
	require.Equal(t, 6, got.AvailableQuantity)

	in.Quantity = 2
	got, err = s.Update(ctx, eq.ID, in)
	require.NoError(t, err)
	require.Equal(t, 0, got.AvailableQuantity, "available is clamped at zero")

	in.Quantity = 4
	in.AvailableQuantity = intPtr(4)
	got, err = s.Update(ctx, eq.ID, in)
	require.NoError(t, err)
	require.Equal(t, 4, got.AvailableQuantity)

	in.AvailableQuantity = intPtr(5)
	_, err = s.Update(ctx, eq.ID, in)
	require.ErrorIs(t, err, response.ErrInvalidRequest)
	require.Contains(t, err.Error(), "可用数量不能大于总数量")

	test.CreateEquipment(t, db, category.ID, "梯子2", "SN-L2", 1)
	in.AvailableQuantity = nil
	in.SerialNumber = "SN-L2"
	_, err = s.Update(ctx, eq.ID, in)
	require.ErrorIs(t, err, response.ErrAlreadyExists)

	_, err = s.Update(ctx, 999, Input{Name: "x", CategoryID: category.ID, Quantity: 1})
	require.ErrorIs(t, err, response.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	s, db, category := newService(t)
	ctx := context.Background()
	eq := test.CreateEquipment(t, db, category.ID, "发电机", "SN-G", 1)

	got, err := s.UpdateStatus(ctx, eq.ID, model.EquipmentRepairing)
	require.NoError(t, err)
	require.Equal(t, model.EquipmentRepairing, got.Status)

	_, err = s.UpdateStatus(ctx, eq.ID, "丢失")
	require.ErrorIs(t, err, response.ErrInvalidRequest)

	_, err = s.UpdateStatus(ctx, 999, model.EquipmentScrapped)
	require.ErrorIs(t, err, response.ErrNotFound)
}

func TestDeleteRefusesOpenBorrows(t *testing.T) {
	s, db, category := newService(t)
	ctx := context.Background()
	user := test.CreateUser(t, db, "alice")
	busy := test.CreateEquipment(t, db, category.ID, "电钻", "SN-B", 2)
	idle := test.CreateEquipment(t, db, category.ID, "锤子", "SN-I", 2)
	require.NoError(t, db.Create(&model.BorrowRecord{
		EquipmentID: busy.ID, BorrowerID: user.ID, Quantity: 1, Status: model.BorrowPending,
	}).Error)
	require.NoError(t, db.Create(&model.BorrowRecord{
		EquipmentID: idle.ID, BorrowerID: user.ID, Quantity: 1, Status: model.BorrowReturned,
	}).Error)

	err := s.Delete(ctx, busy.ID)
	require.ErrorIs(t, err, response.ErrConflict)

	result := s.BulkDelete(ctx, []uint{busy.ID, idle.ID, 999})
	require.Equal(t, 1, result.Deleted)
	require.Equal(t, 3, result.Total)
	require.Contains(t, result.Failures, busy.ID)
	require.Contains(t, result.Failures, uint(999))

	_, err = s.Get(ctx, idle.ID)
	require.ErrorIs(t, err, response.ErrNotFound)
}

func TestSearchAndLists(t *testing.T) {
	s, db, power := newService(t)
	ctx := context.Background()
	camping := test.CreateCategory(t, db, "露营")
	test.CreateEquipment(t, db, power.ID, "冲击钻", "DRILL-1", 10)
	tent := test.CreateEquipment(t, db, camping.ID, "帐篷", "TENT-1", 10)
	scrapped := test.CreateEquipment(t, db, camping.ID, "旧帐篷", "TENT-2", 2)
	require.NoError(t, db.Model(tent).Update("available_quantity", 1).Error)
	require.NoError(t, db.Model(scrapped).Updates(map[string]any{"status": model.EquipmentScrapped, "available_quantity": 0}).Error)

	page, err := s.Search(ctx, Filter{Keyword: "帐篷"}, tools.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)

	page, err = s.Search(ctx, Filter{Keyword: "drill"}, tools.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)

	page, err = s.Search(ctx, Filter{CategoryID: camping.ID, Status: model.EquipmentAvailable}, tools.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Equal(t, "帐篷", page.List[0].Name)
	require.Equal(t, "露营", page.List[0].Category.Name)

	byCategory, err := s.ByCategory(ctx, camping.ID)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)

	available, err := s.Available(ctx)
	require.NoError(t, err)
	require.Len(t, available, 2)

	low, err := s.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	require.Equal(t, 0, low[0].AvailableQuantity)

	exists, err := s.SerialExists(ctx, "TENT-1", 0)
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = s.SerialExists(ctx, "TENT-1", tent.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSerialNumberUniqueIndex(t *testing.T) {
	s, db, category := newService(t)
	ctx := context.Background()
	eq := test.CreateEquipment(t, db, category.ID, "电钻", "SN-U", 1)

	// 绕过服务层检查直接插入，由唯一索引拒绝
	err := db.Create(&model.Equipment{Name: "重复", SerialNumber: "SN-U", CategoryID: category.ID, Quantity: 1, AvailableQuantity: 1}).Error
	require.Error(t, err)
	require.True(t, database.IsDuplicate(err))
	require.ErrorIs(t, database.Wrap(err, nil), response.ErrAlreadyExists)

	// 空序列号不参与唯一约束
	for _, name := range []string{"A", "B"} {
		require.NoError(t, db.Create(&model.Equipment{Name: name, CategoryID: category.ID, Quantity: 1, AvailableQuantity: 1}).Error)
	}

	// 删除后序列号可以再次使用
	require.NoError(t, s.Delete(ctx, eq.ID))
	reused, err := s.Create(ctx, Input{Name: "新电钻", SerialNumber: "SN-U", CategoryID: category.ID, Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, "SN-U", reused.SerialNumber)
}
