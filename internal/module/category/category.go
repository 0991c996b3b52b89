package category

import (
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/tools"

	"github.com/gin-gonic/gin"
)

func pathID(c *gin.Context) (uint, bool) {
	id, ok := tools.ParamUint(c, "id")
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("无效的分类ID"))
	}
	return id, ok
}

func ListCategories(c *gin.Context) {
	items, err := svc.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, items)
}

func GetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	category, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, category)
}

func CreateCategory(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("绑定创建分类请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	category, err := svc.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("分类创建成功", "category_id", category.ID, "name", category.Name)
	response.Success(c, category)
}

func UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("绑定更新分类请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	category, err := svc.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, category)
}

func DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("分类已删除", "category_id", id)
	response.Success(c)
}
