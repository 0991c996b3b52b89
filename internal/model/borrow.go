package model

import (
	"time"

	"gorm.io/gorm"
)

type BorrowStatus string

const (
	BorrowPending  BorrowStatus = "PENDING"
	BorrowBorrowed BorrowStatus = "BORROWED"
	BorrowReturned BorrowStatus = "RETURNED"
	BorrowRejected BorrowStatus = "REJECTED"
	BorrowOverdue  BorrowStatus = "OVERDUE"
)

// HoldsStock 处于该状态的记录占用着装备的可用数量
func (s BorrowStatus) HoldsStock() bool {
	return s == BorrowBorrowed || s == BorrowOverdue
}

type BorrowRecord struct {
	Model
	EquipmentID        uint         `gorm:"not null;index" json:"equipment_id"`
	Equipment          *Equipment   `json:"equipment,omitempty"`
	BorrowerID         uint         `gorm:"not null;index" json:"borrower_id"`
	Borrower           *User        `json:"borrower,omitempty"`
	ApproverID         *uint        `json:"approver_id"`
	Approver           *User        `json:"approver,omitempty"`
	BorrowDate         time.Time    `gorm:"not null;index" json:"borrow_date"`
	ExpectedReturnDate time.Time    `gorm:"not null;index" json:"expected_return_date"`
	ActualReturnDate   *time.Time   `gorm:"index" json:"actual_return_date"`
	Quantity           int          `gorm:"not null;default:1" json:"quantity"`
	Status             BorrowStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Purpose            string       `gorm:"type:varchar(255)" json:"purpose"`
	Remarks            string       `gorm:"type:varchar(500)" json:"remarks"`
	ReminderSent       bool         `gorm:"not null;default:false" json:"reminder_sent"`
	ReminderDate       *time.Time   `json:"reminder_date"`
	ReminderMessage    string       `gorm:"type:varchar(500)" json:"reminder_message"`
}

// IsOverdue 借出中且已超过预计归还时间
func (b *BorrowRecord) IsOverdue(now time.Time) bool {
	return b.Status == BorrowOverdue || (b.Status == BorrowBorrowed && b.ExpectedReturnDate.Before(now))
}

// OverdueScope 已标记为逾期，或借出中且超过预计归还时间
func OverdueScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(status = ? OR (status = ? AND expected_return_date < ?))",
			BorrowOverdue, BorrowBorrowed, now)
	}
}
