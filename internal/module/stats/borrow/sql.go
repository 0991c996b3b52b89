package borrow

import (
	"time"

	"equipment-lending-system/internal/model"
	"equipment-lending-system/internal/module/stats/tool"

	"gorm.io/gorm"
)

type Overview struct {
	TotalBorrows  int64 `json:"total_borrows"`
	PendingCount  int64 `json:"pending_count"`
	BorrowedCount int64 `json:"borrowed_count"`
	ReturnedCount int64 `json:"returned_count"`
	RejectedCount int64 `json:"rejected_count"`
	OverdueCount  int64 `json:"overdue_count"`
	TodayBorrows  int64 `json:"today_borrows"`
	TodayReturns  int64 `json:"today_returns"`
}

func selectSummary(db *gorm.DB, now time.Time) (*Overview, error) {
	var rows []struct {
		Status model.BorrowStatus
		N      int64
	}
	err := db.Model(&model.BorrowRecord{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	s := &Overview{}
	for _, r := range rows {
		s.TotalBorrows += r.N
		switch r.Status {
		case model.BorrowPending:
			s.PendingCount = r.N
		case model.BorrowBorrowed:
			s.BorrowedCount = r.N
		case model.BorrowReturned:
			s.ReturnedCount = r.N
		case model.BorrowRejected:
			s.RejectedCount = r.N
		}
	}

	if err := db.Model(&model.BorrowRecord{}).Scopes(model.OverdueScope(now)).Count(&s.OverdueCount).Error; err != nil {
		return nil, err
	}
	start := tool.DayStart(now)
	end := start.AddDate(0, 0, 1)
	if err := db.Model(&model.BorrowRecord{}).
		Where("borrow_date >= ? AND borrow_date < ?", start, end).Count(&s.TodayBorrows).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.BorrowRecord{}).
		Where("actual_return_date >= ? AND actual_return_date < ?", start, end).Count(&s.TodayReturns).Error; err != nil {
		return nil, err
	}
	return s, nil
}

type TrendPoint struct {
	Date        string `json:"date"`
	BorrowCount int64  `json:"borrow_count"`
	ReturnCount int64  `json:"return_count"`
}

// selectTrends 从 now 往前 days 天（含当天），每天一个点
func selectTrends(db *gorm.DB, now time.Time, days int) ([]TrendPoint, error) {
	end := tool.DayStart(now).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	var borrowed, returned []time.Time
	if err := db.Model(&model.BorrowRecord{}).
		Where("borrow_date >= ? AND borrow_date < ?", start, end).
		Pluck("borrow_date", &borrowed).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.BorrowRecord{}).
		Where("actual_return_date >= ? AND actual_return_date < ?", start, end).
		Pluck("actual_return_date", &returned).Error; err != nil {
		return nil, err
	}

	// 按本地日期分桶，不依赖数据库的日期函数
	loc := now.Location()
	bucket := func(times []time.Time) map[string]int64 {
		m := make(map[string]int64, len(times))
		for _, t := range times {
			m[t.In(loc).Format(time.DateOnly)]++
		}
		return m
	}
	borrowByDay, returnByDay := bucket(borrowed), bucket(returned)

	points := make([]TrendPoint, 0, days)
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		points = append(points, TrendPoint{
			Date:        day.Format("01-02"),
			BorrowCount: borrowByDay[key],
			ReturnCount: returnByDay[key],
		})
	}
	return points, nil
}

// RankItem 排行榜条目，excel 标签用于导出
type RankItem struct {
	Rank        int    `json:"rank" excel:"排名"`
	ID          uint   `json:"id" excel:"ID"`
	Name        string `json:"name" excel:"名称"`
	BorrowCount int64  `json:"borrow_count" excel:"借用次数"`
}

func ranked(items []RankItem) []RankItem {
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

func selectEquipmentRanking(db *gorm.DB, limit int) ([]RankItem, error) {
	items := []RankItem{}
	err := db.Table("borrow_record AS br").
		Select("e.id AS id, e.name AS name, COUNT(br.id) AS borrow_count").
		Joins("JOIN equipment AS e ON e.id = br.equipment_id").
		Where("br.deleted_at IS NULL").
		Group("e.id, e.name").
		Order("borrow_count DESC, e.id ASC").
		Limit(limit).
		Scan(&items).Error
	return ranked(items), err
}

// selectUserRanking 没有填写姓名的用户显示用户名
func selectUserRanking(db *gorm.DB, limit int) ([]RankItem, error) {
	items := []RankItem{}
	err := db.Table("borrow_record AS br").
		Select("u.id AS id, COALESCE(NULLIF(u.name, ''), u.username) AS name, COUNT(br.id) AS borrow_count").
		Joins("JOIN user AS u ON u.id = br.borrower_id").
		Where("br.deleted_at IS NULL").
		Group("u.id, u.name, u.username").
		Order("borrow_count DESC, u.id ASC").
		Limit(limit).
		Scan(&items).Error
	return ranked(items), err
}
