package equipment

import (
	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/logger"
	"equipment-lending-system/internal/global/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var log = logger.New("Stats-Equipment")

// DB 测试时替换
var DB = func() *gorm.DB { return database.DB }

// Summary 装备总数、可用、借出、维修中、报废的件数
func Summary(c *gin.Context) {
	s, err := selectSummary(DB().WithContext(c.Request.Context()))
	if err != nil {
		log.Error("查询装备统计失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, s)
}

func CategoryDistribution(c *gin.Context) {
	items, err := selectCategoryDistribution(DB().WithContext(c.Request.Context()))
	if err != nil {
		log.Error("查询分类分布失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, items)
}

func StatusDistribution(c *gin.Context) {
	items, err := selectStatusDistribution(DB().WithContext(c.Request.Context()))
	if err != nil {
		log.Error("查询状态分布失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, items)
}
