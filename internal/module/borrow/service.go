package borrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/tools"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errRecordNotFound    = response.ErrNotFound.WithTips("借用记录不存在")
	errEquipmentNotFound = response.ErrNotFound.WithTips("装备不存在")
)

// Service 借用生命周期：创建、审批、拒绝、归还、删除。
// 每个写操作都在一个事务内完成，并对涉及的装备和借用记录加行锁
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

type CreateRequest struct {
	EquipmentID        uint       `json:"equipment_id" binding:"required"`
	Quantity           int        `json:"quantity" binding:"required,min=1"`
	ExpectedReturnDate *time.Time `json:"expected_return_date"`
	Purpose            string     `json:"purpose" binding:"max=255"`
	Remarks            string     `json:"remarks" binding:"max=500"`
}

// Filter 列表查询条件
type Filter struct {
	Status      model.BorrowStatus
	BorrowerID  uint
	EquipmentID uint
}

// BatchResult 批量审批/拒绝/提醒的结果，每条记录单独成败
type BatchResult struct {
	SuccessCount int            `json:"success_count"`
	TotalCount   int            `json:"total_count"`
	Failures     []BatchFailure `json:"failures"`
}

type BatchFailure struct {
	ID     uint   `json:"id"`
	Reason string `json:"reason"`
}

// MyStats 当前用户各状态的借用数量
type MyStats struct {
	Pending  int64 `json:"pending"`
	Active   int64 `json:"active"`
	Overdue  int64 `json:"overdue"`
	Returned int64 `json:"returned"`
}

func lockEquipment(tx *gorm.DB, id uint) (*model.Equipment, error) {
	var eq model.Equipment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&eq, id).Error; err != nil {
		return nil, database.Wrap(err, errEquipmentNotFound)
	}
	return &eq, nil
}

func lockRecord(tx *gorm.DB, id uint) (*model.BorrowRecord, error) {
	var record model.BorrowRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
		return nil, database.Wrap(err, errRecordNotFound)
	}
	return &record, nil
}

// checkLendable 装备必须处于可用状态且可用数量足够
func checkLendable(eq *model.Equipment, quantity int) error {
	if eq.Status != model.EquipmentAvailable {
		return response.ErrConflict.WithTips(fmt.Sprintf("该装备当前状态为：%s，不可借用", eq.Status))
	}
	if eq.AvailableQuantity < quantity {
		return response.ErrConflict.WithTips(fmt.Sprintf("可用数量不足，当前可用: %d", eq.AvailableQuantity))
	}
	return nil
}

func defaultDays() int {
	if days := config.Get().Borrow.DefaultDays; days > 0 {
		return days
	}
	return 7
}

// Create 创建待审批的借用申请，此时只检查库存，不扣减
func (s *Service) Create(ctx context.Context, borrowerID uint, req CreateRequest) (*model.BorrowRecord, error) {
	if req.Quantity < 1 {
		return nil, response.ErrInvalidRequest.WithTips("借用数量必须大于0")
	}
	now := s.now()
	expected := now.AddDate(0, 0, defaultDays())
	if req.ExpectedReturnDate != nil {
		if !req.ExpectedReturnDate.After(now) {
			return nil, response.ErrInvalidRequest.WithTips("预计归还时间必须晚于当前时间")
		}
		expected = *req.ExpectedReturnDate
	}

	var record *model.BorrowRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eq, err := lockEquipment(tx, req.EquipmentID)
		if err != nil {
			return err
		}
		if err := checkLendable(eq, req.Quantity); err != nil {
			return err
		}
		record = &model.BorrowRecord{
			EquipmentID:        eq.ID,
			BorrowerID:         borrowerID,
			BorrowDate:         now,
			ExpectedReturnDate: expected,
			Quantity:           req.Quantity,
			Status:             model.BorrowPending,
			Purpose:            req.Purpose,
			Remarks:            req.Remarks,
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return record, nil
}

// Approve 审批通过并扣减可用数量，审批时重新检查装备状态和库存
func (s *Service) Approve(ctx context.Context, id, approverID uint) (*model.BorrowRecord, error) {
	var record *model.BorrowRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if record, err = lockRecord(tx, id); err != nil {
			return err
		}
		if record.Status != model.BorrowPending {
			return response.ErrConflict.WithTips("只能审批待处理的借用请求")
		}
		eq, err := lockEquipment(tx, record.EquipmentID)
		if err != nil {
			return err
		}
		if err := checkLendable(eq, record.Quantity); err != nil {
			return err
		}

		res := tx.Model(&model.Equipment{}).
			Where("id = ? AND available_quantity >= ?", eq.ID, record.Quantity).
			Update("available_quantity", gorm.Expr("available_quantity - ?", record.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return response.ErrConflict.WithTips(fmt.Sprintf("可用数量不足，当前可用: %d", eq.AvailableQuantity))
		}

		record.ApproverID = &approverID
		record.Status = model.BorrowBorrowed
		return tx.Model(record).Updates(map[string]any{
			"approver_id": approverID,
			"status":      model.BorrowBorrowed,
		}).Error
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return record, nil
}

// Reject 拒绝申请，reason 不为空时写入备注
func (s *Service) Reject(ctx context.Context, id, approverID uint, reason string) (*model.BorrowRecord, error) {
	var record *model.BorrowRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if record, err = lockRecord(tx, id); err != nil {
			return err
		}
		if record.Status != model.BorrowPending {
			return response.ErrConflict.WithTips("只能拒绝待处理的借用请求")
		}
		updates := map[string]any{
			"approver_id": approverID,
			"status":      model.BorrowRejected,
		}
		if reason != "" {
			record.Remarks = reason
			updates["remarks"] = reason
		}
		record.ApproverID = &approverID
		record.Status = model.BorrowRejected
		return tx.Model(record).Updates(updates).Error
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return record, nil
}

// Return 归还装备并恢复可用数量，只有借用人本人或管理员可以操作
func (s *Service) Return(ctx context.Context, id, operatorID uint, isAdmin bool) (*model.BorrowRecord, error) {
	var record *model.BorrowRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if record, err = lockRecord(tx, id); err != nil {
			return err
		}
		if !isAdmin && record.BorrowerID != operatorID {
			return response.ErrForbidden.WithTips("只能归还自己借用的装备")
		}
		if !record.Status.HoldsStock() {
			return response.ErrConflict.WithTips(fmt.Sprintf("只能归还已借出或逾期的装备，当前状态: %s", record.Status))
		}
		if err := restoreStock(tx, record); err != nil {
			return err
		}

		now := s.now()
		record.ActualReturnDate = &now
		record.Status = model.BorrowReturned
		return tx.Model(record).Updates(map[string]any{
			"actual_return_date": now,
			"status":             model.BorrowReturned,
		}).Error
	})
	if err != nil {
		return nil, database.Wrap(err, nil)
	}
	return record, nil
}

// Delete 删除记录，仍占用库存的记录先归还数量
func (s *Service) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockRecord(tx, id)
		if err != nil {
			return err
		}
		if record.Status.HoldsStock() {
			if err := restoreStock(tx, record); err != nil {
				return err
			}
		}
		return tx.Delete(record).Error
	})
	return database.Wrap(err, nil)
}

// restoreStock 加回借出的数量，不会超过装备总数
func restoreStock(tx *gorm.DB, record *model.BorrowRecord) error {
	eq, err := lockEquipment(tx, record.EquipmentID)
	if err != nil {
		if response.ErrNotFound.Is(err) {
			return response.ErrConflict.WithTips("借用记录关联的装备不存在")
		}
		return err
	}
	available := eq.AvailableQuantity + record.Quantity
	if available > eq.Quantity {
		available = eq.Quantity
	}
	return tx.Model(eq).Update("available_quantity", available).Error
}

// BatchApprove 逐条审批，单条失败不影响其它记录
func (s *Service) BatchApprove(ctx context.Context, ids []uint, approverID uint) BatchResult {
	return s.batch(ids, func(id uint) error {
		_, err := s.Approve(ctx, id, approverID)
		return err
	})
}

func (s *Service) BatchReject(ctx context.Context, ids []uint, approverID uint, reason string) BatchResult {
	return s.batch(ids, func(id uint) error {
		_, err := s.Reject(ctx, id, approverID, reason)
		return err
	})
}

func (s *Service) batch(ids []uint, fn func(id uint) error) BatchResult {
	result := BatchResult{TotalCount: len(ids), Failures: []BatchFailure{}}
	for _, id := range ids {
		if err := fn(id); err != nil {
			reason := err.Error()
			var e *response.Error
			if errors.As(err, &e) {
				reason = e.Tips()
			}
			log.Warn("批量操作单条记录失败", "id", id, "error", err)
			result.Failures = append(result.Failures, BatchFailure{ID: id, Reason: reason})
			continue
		}
		result.SuccessCount++
	}
	return result
}

// SendReminder 记录提醒信息，实际通知只写日志
func (s *Service) SendReminder(ctx context.Context, id uint, message string) (*model.BorrowRecord, error) {
	var record model.BorrowRecord
	if err := s.db.WithContext(ctx).Preload("Borrower").First(&record, id).Error; err != nil {
		return nil, database.Wrap(err, errRecordNotFound)
	}
	now := s.now()
	record.ReminderSent = true
	record.ReminderDate = &now
	record.ReminderMessage = message
	err := s.db.WithContext(ctx).Model(&record).Updates(map[string]any{
		"reminder_sent":    true,
		"reminder_date":    now,
		"reminder_message": message,
	}).Error
	if err != nil {
		return nil, database.Wrap(err, nil)
	}

	borrower := ""
	if record.Borrower != nil {
		borrower = record.Borrower.Username
	}
	log.Info("发送归还提醒", "borrow_id", id, "borrower", borrower, "message", message)
	return &record, nil
}

func (s *Service) BatchSendReminders(ctx context.Context, ids []uint, message string) BatchResult {
	return s.batch(ids, func(id uint) error {
		_, err := s.SendReminder(ctx, id, message)
		return err
	})
}

// withRelations 一次性加载装备、分类、借用人和审批人
func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Equipment").Preload("Equipment.Category").Preload("Borrower").Preload("Approver")
}

// Get 借用人本人或管理员可以查看
func (s *Service) Get(ctx context.Context, id, operatorID uint, isAdmin bool) (*model.BorrowRecord, error) {
	var record model.BorrowRecord
	if err := withRelations(s.db.WithContext(ctx)).First(&record, id).Error; err != nil {
		return nil, database.Wrap(err, errRecordNotFound)
	}
	if !isAdmin && record.BorrowerID != operatorID {
		return nil, response.ErrForbidden.WithTips("无权查看该借用记录")
	}
	return &record, nil
}

func (s *Service) List(ctx context.Context, filter Filter, page tools.Page) (tools.PageResult[model.BorrowRecord], error) {
	q := s.db.WithContext(ctx).Model(&model.BorrowRecord{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.BorrowerID != 0 {
		q = q.Where("borrower_id = ?", filter.BorrowerID)
	}
	if filter.EquipmentID != 0 {
		q = q.Where("equipment_id = ?", filter.EquipmentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return tools.PageResult[model.BorrowRecord]{}, database.Wrap(err, nil)
	}
	var records []model.BorrowRecord
	err := withRelations(q).Order("id DESC").Offset(page.Offset()).Limit(page.PageSize).Find(&records).Error
	if err != nil {
		return tools.PageResult[model.BorrowRecord]{}, database.Wrap(err, nil)
	}
	return tools.NewPageResult(records, total, page), nil
}

func (s *Service) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]model.BorrowRecord, error) {
	records := []model.BorrowRecord{}
	err := scope(withRelations(s.db.WithContext(ctx))).Order("id DESC").Find(&records).Error
	return records, database.Wrap(err, nil)
}

func (s *Service) ByBorrower(ctx context.Context, borrowerID uint) ([]model.BorrowRecord, error) {
	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("borrower_id = ?", borrowerID)
	})
}

// ActiveByBorrower 借出中（含逾期）的记录
func (s *Service) ActiveByBorrower(ctx context.Context, borrowerID uint) ([]model.BorrowRecord, error) {
	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("borrower_id = ? AND status IN ?", borrowerID, activeStatuses)
	})
}

func (s *Service) ActiveByEquipment(ctx context.Context, equipmentID uint) ([]model.BorrowRecord, error) {
	if err := s.db.WithContext(ctx).Select("id").First(&model.Equipment{}, equipmentID).Error; err != nil {
		return nil, database.Wrap(err, errEquipmentNotFound)
	}
	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("equipment_id = ? AND status IN ?", equipmentID, activeStatuses)
	})
}

func (s *Service) ByStatus(ctx context.Context, status model.BorrowStatus) ([]model.BorrowRecord, error) {
	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", status)
	})
}

var activeStatuses = []model.BorrowStatus{model.BorrowBorrowed, model.BorrowOverdue}

func (s *Service) Overdue(ctx context.Context) ([]model.BorrowRecord, error) {
	return s.find(ctx, model.OverdueScope(s.now()))
}

// Expiring 借出中且将在 days 天内到期
func (s *Service) Expiring(ctx context.Context, days int) ([]model.BorrowRecord, error) {
	if days < 0 {
		return nil, response.ErrInvalidRequest.WithTips("天数不能为负数")
	}
	now := s.now()
	end := now.AddDate(0, 0, days)
	return s.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ? AND expected_return_date BETWEEN ? AND ?", model.BorrowBorrowed, now, end)
	})
}

func (s *Service) MyStats(ctx context.Context, borrowerID uint) (MyStats, error) {
	var stats MyStats
	now := s.now()
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.BorrowRecord{}).Where("borrower_id = ?", borrowerID)
	}
	queries := []struct {
		dst   *int64
		scope func(*gorm.DB) *gorm.DB
	}{
		{&stats.Pending, func(db *gorm.DB) *gorm.DB { return db.Where("status = ?", model.BorrowPending) }},
		{&stats.Active, func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ? AND expected_return_date >= ?", model.BorrowBorrowed, now)
		}},
		{&stats.Overdue, model.OverdueScope(now)},
		{&stats.Returned, func(db *gorm.DB) *gorm.DB { return db.Where("status = ?", model.BorrowReturned) }},
	}
	for _, q := range queries {
		if err := q.scope(base()).Count(q.dst).Error; err != nil {
			return MyStats{}, database.Wrap(err, nil)
		}
	}
	return stats, nil
}

// MarkOverdue 把已超过预计归还时间的借出记录标记为逾期，返回更新条数
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.BorrowRecord{}).
		Where("status = ? AND expected_return_date < ?", model.BorrowBorrowed, s.now()).
		Update("status", model.BorrowOverdue)
	return res.RowsAffected, database.Wrap(res.Error, nil)
}
