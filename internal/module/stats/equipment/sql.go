package equipment

import (
	"equipment-lending-system/internal/model"

	"gorm.io/gorm"
)

type Overview struct {
	TotalCount     int64 `json:"total_count"`
	AvailableCount int64 `json:"available_count"`
	BorrowedCount  int64 `json:"borrowed_count"`
	RepairingCount int64 `json:"repairing_count"`
	ScrapCount     int64 `json:"scrap_count"`
}

// selectSummary 按件数统计，借出数只算可用状态装备的 总数-可用数
func selectSummary(db *gorm.DB) (*Overview, error) {
	var rows []struct {
		Status    string
		Total     int64
		Available int64
	}
	err := db.Model(&model.Equipment{}).
		Select("status, COALESCE(SUM(quantity), 0) AS total, COALESCE(SUM(available_quantity), 0) AS available").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	s := &Overview{}
	for _, r := range rows {
		s.TotalCount += r.Total
		s.AvailableCount += r.Available
		switch r.Status {
		case model.EquipmentAvailable:
			s.BorrowedCount += r.Total - r.Available
		case model.EquipmentRepairing:
			s.RepairingCount += r.Total
		case model.EquipmentScrapped:
			s.ScrapCount += r.Total
		}
	}
	return s, nil
}

type Distribution struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type CategoryShare struct {
	CategoryID     uint   `json:"category_id"`
	CategoryName   string `json:"category_name"`
	EquipmentCount int64  `json:"equipment_count"`
	TotalQuantity  int64  `json:"total_quantity"`
}

// selectCategoryDistribution 没有装备的分类也返回，计 0
func selectCategoryDistribution(db *gorm.DB) ([]CategoryShare, error) {
	items := []CategoryShare{}
	err := db.Table("category AS c").
		Select("c.id AS category_id, c.name AS category_name, COUNT(e.id) AS equipment_count, COALESCE(SUM(e.quantity), 0) AS total_quantity").
		Joins("LEFT JOIN equipment AS e ON e.category_id = c.id AND e.deleted_at IS NULL").
		Where("c.deleted_at IS NULL").
		Group("c.id, c.name").
		Order("total_quantity DESC, c.id ASC").
		Scan(&items).Error
	return items, err
}

func selectStatusDistribution(db *gorm.DB) ([]Distribution, error) {
	var rows []Distribution
	err := db.Model(&model.Equipment{}).
		Select("status AS name, COALESCE(SUM(quantity), 0) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	// 三种状态总是都返回，按固定顺序
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Name] = r.Count
	}
	items := make([]Distribution, 0, len(model.EquipmentStatuses))
	for _, status := range model.EquipmentStatuses {
		items = append(items, Distribution{Name: status, Count: counts[status]})
	}
	return items, nil
}
