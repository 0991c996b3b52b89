package model

type Category struct {
	Model
	Name        string `gorm:"type:varchar(50);not null;index" json:"name"`
	Description string `gorm:"type:varchar(255)" json:"description"`
}
