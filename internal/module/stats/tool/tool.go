package tool

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetLimit 读取 limit 查询参数，可变参数依次是 defaultLimit, maxLimit
func GetLimit(c *gin.Context, defaults ...int) int {
	defaultLimit, maxLimit := 10, 100
	if len(defaults) > 0 && defaults[0] > 0 {
		defaultLimit = defaults[0]
	}
	if len(defaults) > 1 && defaults[1] > 0 {
		maxLimit = defaults[1]
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}

// PeriodDays 趋势统计的天数，无法识别时按一周
func PeriodDays(period string) int {
	switch period {
	case "month":
		return 30
	case "quarter":
		return 90
	case "year":
		return 365
	default:
		return 7
	}
}

// DayStart t 所在日期的零点
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
