package equipment

import (
	"strconv"

	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/tools"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status string `json:"status" binding:"required,equipment_status"`
}

type bulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

func pathID(c *gin.Context, key string) (uint, bool) {
	id, ok := tools.ParamUint(c, key)
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("无效的ID"))
	}
	return id, ok
}

func bindFilter(c *gin.Context) (Filter, bool) {
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return f, false
	}
	return f, true
}

// SearchEquipment 关键字匹配名称或序列号，可按分类和状态过滤
func SearchEquipment(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	result, err := svc.Search(c.Request.Context(), f, tools.GetPage(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, result)
}

func GetEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	eq, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, eq)
}

func EquipmentByCategory(c *gin.Context) {
	id, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	list, err := svc.ByCategory(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

func AvailableEquipment(c *gin.Context) {
	list, err := svc.Available(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

func LowStockEquipment(c *gin.Context) {
	list, err := svc.LowStock(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, list)
}

// CheckSerial 编辑时传 exclude_id 排除自身
func CheckSerial(c *gin.Context) {
	serial := c.Query("serial_number")
	if serial == "" {
		response.Fail(c, response.ErrInvalidRequest.WithTips("序列号不能为空"))
		return
	}
	exists, err := svc.SerialExists(c.Request.Context(), serial, uint(max(0, tools.QueryInt(c, "exclude_id", 0))))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"exists": exists})
}

func CreateEquipment(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("绑定创建装备请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	eq, err := svc.Create(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("装备创建成功", "equipment_id", eq.ID, "serial_number", eq.SerialNumber)
	response.Success(c, eq)
}

func UpdateEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Warn("绑定更新装备请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	eq, err := svc.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("装备更新成功", "equipment_id", id)
	response.Success(c, eq)
}

func UpdateEquipmentStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("状态无效").WithOrigin(err))
		return
	}
	eq, err := svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, eq)
}

func DeleteEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("装备已删除", "equipment_id", id)
	response.Success(c)
}

func BulkDeleteEquipment(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("未提供要删除的装备ID列表"))
		return
	}
	result := svc.BulkDelete(c.Request.Context(), req.IDs)
	log.Info("批量删除装备", "deleted", result.Deleted, "total", result.Total)
	response.Success(c, result)
}

// ExportEquipment ?format=csv|excel，过滤条件同搜索
func ExportEquipment(c *gin.Context) {
	format, ok := ParseFormat(c.Query("format"))
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("不支持的导出格式"))
		return
	}
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	data, name, err := svc.Export(c.Request.Context(), f, format)
	if err != nil {
		log.Error("导出装备失败", "error", err)
		response.Fail(c, err)
		return
	}
	tools.SendBytes(c, data, name, contentType(format))
}

// ImportEquipment multipart 字段 file，开关 update_existing、skip_errors
func ImportEquipment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("请上传文件"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	defer file.Close()

	opts := ImportOptions{
		UpdateExisting: formBool(c, "update_existing"),
		SkipErrors:     formBool(c, "skip_errors"),
	}
	result, err := svc.Import(c.Request.Context(), file, fileHeader.Filename, opts)
	if err != nil {
		log.Error("导入装备失败", "filename", fileHeader.Filename, "error", err)
		response.Fail(c, err)
		return
	}
	log.Info("装备导入完成",
		"filename", fileHeader.Filename,
		"imported", result.Imported,
		"updated", result.Updated,
		"errors", len(result.Errors),
		"aborted", result.Aborted)
	response.Success(c, result)
}

func ImportTemplate(c *gin.Context) {
	format, ok := ParseFormat(c.Query("format"))
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("不支持的模板格式"))
		return
	}
	data, name, err := svc.Template(c.Request.Context(), format)
	if err != nil {
		response.Fail(c, err)
		return
	}
	tools.SendBytes(c, data, name, contentType(format))
}

func contentType(format Format) string {
	if format == FormatCSV {
		return tools.CSVContentType
	}
	return tools.ExcelContentType
}

// formBool 表单或查询参数中的布尔开关，缺省为 false
func formBool(c *gin.Context, key string) bool {
	v, ok := c.GetPostForm(key)
	if !ok {
		v = c.Query(key)
	}
	b, _ := strconv.ParseBool(v)
	return b
}
