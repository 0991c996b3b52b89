package borrow

import (
	"bytes"
	"fmt"
	"time"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/logger"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/module/stats/tool"
	"equipment-lending-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var log = logger.New("Stats-Borrow")

// DB 测试时替换
var DB = func() *gorm.DB { return database.DB }

// Summary 借用记录各状态数量以及今日借出、归还数
func Summary(c *gin.Context) {
	s, err := selectSummary(DB().WithContext(c.Request.Context()), time.Now())
	if err != nil {
		log.Error("查询借用统计失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, s)
}

// Trends ?period=week|month|quarter|year
func Trends(c *gin.Context) {
	period := c.DefaultQuery("period", "week")
	points, err := selectTrends(DB().WithContext(c.Request.Context()), time.Now(), tool.PeriodDays(period))
	if err != nil {
		log.Error("查询借用趋势失败", "error", err, "period", period)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, points)
}

func EquipmentRanking(c *gin.Context) {
	items, err := selectEquipmentRanking(DB().WithContext(c.Request.Context()), tool.GetLimit(c))
	if err != nil {
		log.Error("查询装备借用排行失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, items)
}

func UserRanking(c *gin.Context) {
	items, err := selectUserRanking(DB().WithContext(c.Request.Context()), tool.GetLimit(c))
	if err != nil {
		log.Error("查询用户借用排行失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, items)
}

// RankingExport 装备和用户排行各一个工作表
func RankingExport(c *gin.Context) {
	db := DB().WithContext(c.Request.Context())
	limit := tool.GetLimit(c, 100, 1000)
	equipment, err := selectEquipmentRanking(db, limit)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	users, err := selectUserRanking(db, limit)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := tools.ExportToExcel(f, "装备排行", equipment); err != nil {
		log.Error("导出 excel 错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	if err := tools.ExportToExcel(f, "用户排行", users); err != nil {
		log.Error("导出 excel 错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	tools.SendBytes(c, buf.Bytes(), fmt.Sprintf("borrow_ranking_%s.xlsx", time.Now().Format("20060102")), tools.ExcelContentType)
}
