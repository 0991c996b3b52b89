package category

import (
	"context"
	"fmt"
	"strings"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errCategoryNotFound = response.ErrNotFound.WithTips("分类不存在")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Input struct {
	Name        string `json:"name" binding:"required,max=50"`
	Description string `json:"description" binding:"max=255"`
}

// Item 列表项，附带该分类下的装备数量
type Item struct {
	model.Category
	EquipmentCount int64 `json:"equipment_count"`
}

func duplicateName(name string) error {
	return response.ErrAlreadyExists.WithTips(fmt.Sprintf("分类名称 '%s' 已存在", name))
}

func nameTaken(tx *gorm.DB, name string, excludeID uint) (bool, error) {
	q := tx.Model(&model.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	var categories []model.Category
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, database.Wrap(err, nil)
	}

	type count struct {
		CategoryID uint
		N          int64
	}
	var counts []count
	err := s.db.WithContext(ctx).Model(&model.Equipment{}).
		Select("category_id, COUNT(*) AS n").Group("category_id").Scan(&counts).Error
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.CategoryID] = c.N
	}

	items := make([]Item, 0, len(categories))
	for _, c := range categories {
		items = append(items, Item{Category: c, EquipmentCount: byID[c.ID]})
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*model.Category, error) {
	var c model.Category
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, database.Wrap(err, errCategoryNotFound)
	}
	return &c, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*model.Category, error) {
	c := &model.Category{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if c.Name == "" {
		return nil, response.ErrInvalidRequest.WithTips("分类名称不能为空")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, c.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return duplicateName(c.Name)
		}
		return tx.Create(c).Error
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, response.ErrInvalidRequest.WithTips("分类名称不能为空")
	}
	var c model.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
			return database.Wrap(err, errCategoryNotFound)
		}
		taken, err := nameTaken(tx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return duplicateName(name)
		}
		c.Name = name
		c.Description = in.Description
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return &c, nil
}

// Delete 仍有装备引用的分类不能删除
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
			return database.Wrap(err, errCategoryNotFound)
		}
		var n int64
		if err := tx.Model(&model.Equipment{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return response.ErrConflict.WithTips(fmt.Sprintf("该分类下还有 %d 件装备，不能删除", n))
		}
		return tx.Delete(&c).Error
	})
	return database.Wrap(err, nil)
}
