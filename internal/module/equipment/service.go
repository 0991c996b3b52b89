package equipment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/tools"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errEquipmentNotFound = response.ErrNotFound.WithTips("装备不存在")
	errCategoryNotFound  = response.ErrNotFound.WithTips("分类不存在")
)

// lowStockRatio 可用数量低于总数的该比例视为库存不足
const lowStockRatio = 0.2

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Input 创建、更新和导入共用的装备字段
type Input struct {
	Name              string     `json:"name" binding:"required,max=100"`
	SerialNumber      string     `json:"serial_number" binding:"max=100"`
	Description       string     `json:"description"`
	CategoryID        uint       `json:"category_id" binding:"required"`
	Quantity          int        `json:"quantity" binding:"required,min=1"`
	AvailableQuantity *int       `json:"available_quantity" binding:"omitempty,min=0"`
	Manufacturer      string     `json:"manufacturer" binding:"max=100"`
	Model             string     `json:"model" binding:"max=100"`
	PurchaseDate      *time.Time `json:"purchase_date"`
	PurchasePrice     *float64   `json:"purchase_price" binding:"omitempty,min=0"`
	Location          string     `json:"location" binding:"max=100"`
	Status            string     `json:"status" binding:"omitempty,equipment_status"`
}

// Filter 搜索和导出共用的过滤条件
type Filter struct {
	Keyword    string `form:"keyword"`
	CategoryID uint   `form:"category_id"`
	Status     string `form:"status"`
}

type BulkDeleteResult struct {
	Deleted  int             `json:"deleted"`
	Total    int             `json:"total"`
	Failures map[uint]string `json:"failures"`
}

// apply 把 in 合并到 eq。总数量变化而未指定可用数量时，可用数量随之增减且不小于 0；
// 指定了可用数量则直接使用
func apply(eq *model.Equipment, in Input) error {
	if in.Quantity < 1 {
		return response.ErrInvalidRequest.WithTips("数量必须是正整数")
	}
	if in.Status != "" && !model.ValidEquipmentStatus(in.Status) {
		return response.ErrInvalidRequest.WithTips("状态无效")
	}

	diff := in.Quantity - eq.Quantity
	switch {
	case in.AvailableQuantity != nil:
		eq.AvailableQuantity = *in.AvailableQuantity
	case eq.ID == 0:
		eq.AvailableQuantity = in.Quantity
	case diff != 0:
		eq.AvailableQuantity = max(0, eq.AvailableQuantity+diff)
	}
	eq.Quantity = in.Quantity
	if eq.AvailableQuantity < 0 {
		return response.ErrInvalidRequest.WithTips("可用数量不能为负数")
	}
	if eq.AvailableQuantity > eq.Quantity {
		return response.ErrInvalidRequest.WithTips("可用数量不能大于总数量")
	}

	eq.Name = strings.TrimSpace(in.Name)
	eq.SerialNumber = strings.TrimSpace(in.SerialNumber)
	eq.Description = in.Description
	eq.CategoryID = in.CategoryID
	eq.Category = nil
	eq.Manufacturer = in.Manufacturer
	eq.ModelNo = in.Model
	eq.PurchaseDate = in.PurchaseDate
	eq.PurchasePrice = in.PurchasePrice
	eq.Location = in.Location
	if in.Status != "" {
		eq.Status = in.Status
	} else if eq.Status == "" {
		eq.Status = model.EquipmentAvailable
	}
	return nil
}

func ensureCategory(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&model.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errCategoryNotFound
	}
	return nil
}

// serialTaken 序列号是否已被其它装备占用
func serialTaken(tx *gorm.DB, serial string, excludeID uint) (bool, error) {
	if serial == "" {
		return false, nil
	}
	q := tx.Model(&model.Equipment{}).Where("serial_number = ?", serial)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func duplicateSerial(serial string) error {
	return response.ErrAlreadyExists.WithTips(fmt.Sprintf("序列号 '%s' 已存在", serial))
}

func (s *Service) Create(ctx context.Context, in Input) (*model.Equipment, error) {
	eq := &model.Equipment{}
	if err := apply(eq, in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategory(tx, eq.CategoryID); err != nil {
			return err
		}
		taken, err := serialTaken(tx, eq.SerialNumber, 0)
		if err != nil {
			return err
		}
		if taken {
			return duplicateSerial(eq.SerialNumber)
		}
		return tx.Create(eq).Error
	})
	if database.IsDuplicate(err) {
		return nil, duplicateSerial(eq.SerialNumber)
	}
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return s.Get(ctx, eq.ID)
}

// Update 锁住装备行后合并字段，和借用审批互斥
func (s *Service) Update(ctx context.Context, id uint, in Input) (*model.Equipment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq model.Equipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&eq, id).Error; err != nil {
			return database.Wrap(err, errEquipmentNotFound)
		}
		if err := apply(&eq, in); err != nil {
			return err
		}
		if err := ensureCategory(tx, eq.CategoryID); err != nil {
			return err
		}
		taken, err := serialTaken(tx, eq.SerialNumber, eq.ID)
		if err != nil {
			return err
		}
		if taken {
			return duplicateSerial(eq.SerialNumber)
		}
		return tx.Save(&eq).Error
	})
	if database.IsDuplicate(err) {
		return nil, duplicateSerial(in.SerialNumber)
	}
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return s.Get(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id uint, status string) (*model.Equipment, error) {
	if !model.ValidEquipmentStatus(status) {
		return nil, response.ErrInvalidRequest.WithTips("状态无效")
	}
	res := s.db.WithContext(ctx).Model(&model.Equipment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, database.Wrap(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return nil, errEquipmentNotFound
	}
	return s.Get(ctx, id)
}

// Delete 仍有待审批、借出或逾期记录的装备不能删除
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq model.Equipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&eq, id).Error; err != nil {
			return database.Wrap(err, errEquipmentNotFound)
		}
		var open int64
		err := tx.Model(&model.BorrowRecord{}).
			Where("equipment_id = ? AND status IN ?", id, []model.BorrowStatus{
				model.BorrowPending, model.BorrowBorrowed, model.BorrowOverdue,
			}).Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return response.ErrConflict.WithTips(fmt.Sprintf("该装备还有 %d 条未完成的借用记录，不能删除", open))
		}
		// 释放序列号，之后可以被新装备使用
		if err := tx.Model(&eq).UpdateColumn("serial_key", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&eq).Error
	})
	return database.Wrap(err, nil)
}

func (s *Service) BulkDelete(ctx context.Context, ids []uint) BulkDeleteResult {
	result := BulkDeleteResult{Total: len(ids), Failures: map[uint]string{}}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			msg := err.Error()
			var e *response.Error
			if errors.As(err, &e) {
				msg = e.Tips()
			}
			result.Failures[id] = msg
			continue
		}
		result.Deleted++
	}
	return result
}

func (s *Service) Get(ctx context.Context, id uint) (*model.Equipment, error) {
	var eq model.Equipment
	if err := s.db.WithContext(ctx).Preload("Category").First(&eq, id).Error; err != nil {
		return nil, database.Wrap(err, errEquipmentNotFound)
	}
	return &eq, nil
}

func (s *Service) filtered(ctx context.Context, f Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&model.Equipment{})
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + kw + "%"
		q = q.Where("(name LIKE ? OR serial_number LIKE ?)", like, like)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (s *Service) Search(ctx context.Context, f Filter, page tools.Page) (tools.PageResult[model.Equipment], error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return tools.PageResult[model.Equipment]{}, database.Wrap(err, nil)
	}
	var list []model.Equipment
	err := s.filtered(ctx, f).Preload("Category").
		Order("id DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&list).Error
	if err != nil {
		return tools.PageResult[model.Equipment]{}, database.Wrap(err, nil)
	}
	return tools.NewPageResult(list, total, page), nil
}

// All 不分页，供导出使用
func (s *Service) All(ctx context.Context, f Filter) ([]model.Equipment, error) {
	list := []model.Equipment{}
	err := s.filtered(ctx, f).Preload("Category").Order("id DESC").Find(&list).Error
	return list, database.Wrap(err, nil)
}

func (s *Service) ByCategory(ctx context.Context, categoryID uint) ([]model.Equipment, error) {
	return s.All(ctx, Filter{CategoryID: categoryID})
}

// Available 状态可用且还有余量的装备
func (s *Service) Available(ctx context.Context) ([]model.Equipment, error) {
	list := []model.Equipment{}
	err := s.db.WithContext(ctx).Preload("Category").
		Where("status = ? AND available_quantity > 0", model.EquipmentAvailable).
		Order("id DESC").Find(&list).Error
	return list, database.Wrap(err, nil)
}

func (s *Service) LowStock(ctx context.Context) ([]model.Equipment, error) {
	list := []model.Equipment{}
	err := s.db.WithContext(ctx).Preload("Category").
		Where("available_quantity < quantity * ?", lowStockRatio).
		Order("available_quantity ASC").Find(&list).Error
	return list, database.Wrap(err, nil)
}

// SerialExists excludeID 用于编辑时排除自身
func (s *Service) SerialExists(ctx context.Context, serial string, excludeID uint) (bool, error) {
	taken, err := serialTaken(s.db.WithContext(ctx), strings.TrimSpace(serial), excludeID)
	return taken, database.Wrap(err, nil)
}
