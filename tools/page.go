package tools

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// GetPage 读取 page、page_size 查询参数，可变参数依次是 defaultPageSize, maxPageSize
func GetPage(c *gin.Context, defaults ...int) Page {
	defaultPageSize, maxPageSize := 10, 100
	if len(defaults) > 0 && defaults[0] > 0 {
		defaultPageSize = defaults[0]
	}
	if len(defaults) > 1 && defaults[1] > 0 {
		maxPageSize = defaults[1]
	}

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		size = defaultPageSize
	} else if size > maxPageSize {
		size = maxPageSize
	}
	return Page{Page: page, PageSize: size}
}

// PageResult 分页查询的返回结构
type PageResult[T any] struct {
	List       []T   `json:"list"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
}

func NewPageResult[T any](list []T, total int64, p Page) PageResult[T] {
	if list == nil {
		list = []T{}
	}
	return PageResult[T]{
		List:       list,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: (total + int64(p.PageSize) - 1) / int64(p.PageSize),
	}
}
