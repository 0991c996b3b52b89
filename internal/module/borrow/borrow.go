package borrow

import (
	"equipment-lending-system/internal/global/jwt"
	"equipment-lending-system/internal/global/response"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/tools"

	"github.com/gin-gonic/gin"
)

type batchRequest struct {
	IDs     []uint `json:"ids" binding:"required,min=1"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type reminderRequest struct {
	Message string `json:"message"`
}

func currentUser(c *gin.Context) (*jwt.Claims, bool) {
	claims, ok := jwt.GetUserPayload(c)
	if !ok {
		response.Fail(c, response.ErrUnauthorized)
	}
	return claims, ok
}

func pathID(c *gin.Context, key string) (uint, bool) {
	id, ok := tools.ParamUint(c, key)
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("无效的ID"))
	}
	return id, ok
}

// CreateBorrow 提交借用申请
func CreateBorrow(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定借用申请失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	record, err := svc.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		log.Warn("创建借用申请失败", "user_id", claims.UserID, "equipment_id", req.EquipmentID, "error", err)
		response.Fail(c, err)
		return
	}
	log.Info("借用申请已提交", "borrow_id", record.ID, "user_id", claims.UserID, "equipment_id", req.EquipmentID)
	response.Success(c, record)
}

func GetBorrow(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	record, err := svc.Get(c.Request.Context(), id, claims.UserID, claims.IsAdmin())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, record)
}

// ListBorrows 管理员分页查看全部借用记录，可按状态过滤
func ListBorrows(c *gin.Context) {
	filter := Filter{Status: model.BorrowStatus(c.Query("status"))}
	if id := tools.QueryInt(c, "equipment_id", 0); id > 0 {
		filter.EquipmentID = uint(id)
	}
	if id := tools.QueryInt(c, "borrower_id", 0); id > 0 {
		filter.BorrowerID = uint(id)
	}
	result, err := svc.List(c.Request.Context(), filter, tools.GetPage(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, result)
}

func MyBorrows(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	records, err := svc.ByBorrower(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, records)
}

func MyActiveBorrows(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	records, err := svc.ActiveByBorrower(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, records)
}

func EquipmentActiveBorrows(c *gin.Context) {
	id, ok := pathID(c, "equipmentId")
	if !ok {
		return
	}
	records, err := svc.ActiveByEquipment(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, records)
}

func MyStatistics(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := svc.MyStats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, stats)
}

func PendingBorrows(c *gin.Context) {
	records, err := svc.ByStatus(c.Request.Context(), model.BorrowPending)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, records)
}

func OverdueBorrows(c *gin.Context) {
	records, err := svc.Overdue(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, records)
}

// ExpiringBorrows 即将到期的借用，默认 3 天内
func ExpiringBorrows(c *gin.Context) {
	records, err := svc.Expiring(c.Request.Context(), tools.QueryInt(c, "days", 3))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, records)
}

func ApproveBorrow(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	record, err := svc.Approve(c.Request.Context(), id, claims.UserID)
	if err != nil {
		log.Warn("审批借用申请失败", "borrow_id", id, "error", err)
		response.Fail(c, err)
		return
	}
	log.Info("借用申请已批准", "borrow_id", id, "approver_id", claims.UserID)
	response.Success(c, record)
}

func RejectBorrow(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	// 拒绝理由可以不填
	var req rejectRequest
	_ = c.ShouldBindJSON(&req)

	record, err := svc.Reject(c.Request.Context(), id, claims.UserID, req.Reason)
	if err != nil {
		log.Warn("拒绝借用申请失败", "borrow_id", id, "error", err)
		response.Fail(c, err)
		return
	}
	log.Info("借用申请已拒绝", "borrow_id", id, "approver_id", claims.UserID)
	response.Success(c, record)
}

func ReturnBorrow(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	record, err := svc.Return(c.Request.Context(), id, claims.UserID, claims.IsAdmin())
	if err != nil {
		log.Warn("归还装备失败", "borrow_id", id, "error", err)
		response.Fail(c, err)
		return
	}
	log.Info("装备已归还", "borrow_id", id, "operator_id", claims.UserID)
	response.Success(c, record)
}

func DeleteBorrow(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("借用记录已删除", "borrow_id", id)
	response.Success(c)
}

func BatchApprove(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("未提供要批准的借用ID列表"))
		return
	}
	result := svc.BatchApprove(c.Request.Context(), req.IDs, claims.UserID)
	log.Info("批量审批完成", "success", result.SuccessCount, "total", result.TotalCount)
	response.Success(c, result)
}

func BatchReject(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("未提供要拒绝的借用ID列表"))
		return
	}
	result := svc.BatchReject(c.Request.Context(), req.IDs, claims.UserID, req.Reason)
	log.Info("批量拒绝完成", "success", result.SuccessCount, "total", result.TotalCount)
	response.Success(c, result)
}

func SendReminder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reminderRequest
	_ = c.ShouldBindJSON(&req)

	record, err := svc.SendReminder(c.Request.Context(), id, req.Message)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, record)
}

func BatchSendReminders(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithTips("未提供要发送提醒的借用ID列表"))
		return
	}
	response.Success(c, svc.BatchSendReminders(c.Request.Context(), req.IDs, req.Message))
}
