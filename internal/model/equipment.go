package model

import (
	"time"

	"gorm.io/gorm"
)

// 装备状态
const (
	EquipmentAvailable = "可用"
	EquipmentRepairing = "维修中"
	EquipmentScrapped  = "报废"
)

// EquipmentStatuses 全部合法的装备状态
var EquipmentStatuses = []string{EquipmentAvailable, EquipmentRepairing, EquipmentScrapped}

func ValidEquipmentStatus(s string) bool {
	for _, v := range EquipmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Equipment struct {
	Model
	Name              string     `gorm:"type:varchar(100);not null" json:"name"`
	SerialNumber      string     `gorm:"type:varchar(100);index" json:"serial_number"`
	// SerialKey 未删除且序列号非空时等于 SerialNumber，否则为 NULL
	SerialKey         *string    `gorm:"type:varchar(100);uniqueIndex" json:"-"`
	Description       string     `gorm:"type:text" json:"description"`
	CategoryID        uint       `gorm:"not null;index" json:"category_id"`
	Category          *Category  `json:"category,omitempty"`
	Quantity          int        `gorm:"not null" json:"quantity"`
	AvailableQuantity int        `gorm:"not null" json:"available_quantity"`
	Manufacturer      string     `gorm:"type:varchar(100)" json:"manufacturer"`
	ModelNo           string     `gorm:"column:model;type:varchar(100)" json:"model"`
	PurchaseDate      *time.Time `json:"purchase_date"`
	PurchasePrice     *float64   `gorm:"type:decimal(12,2)" json:"purchase_price"`
	Location          string     `gorm:"type:varchar(100)" json:"location"`
	Status            string     `gorm:"type:varchar(20);not null;default:可用;index" json:"status"`
}

func (e *Equipment) BeforeSave(*gorm.DB) error {
	e.SerialKey = nil
	if e.SerialNumber != "" {
		key := e.SerialNumber
		e.SerialKey = &key
	}
	return nil
}

// LentOut 当前借出的数量
func (e *Equipment) LentOut() int {
	return e.Quantity - e.AvailableQuantity
}
