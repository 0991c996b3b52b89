package model

import "strings"

type RoleName string

const (
	RoleUser  RoleName = "ROLE_USER"
	RoleAdmin RoleName = "ROLE_ADMIN"
)

// Level 权限等级，鉴权中间件按等级比较
func (r RoleName) Level() int {
	if r == RoleAdmin {
		return 1
	}
	return 0
}

type Role struct {
	ID   uint     `gorm:"primaryKey" json:"id"`
	Name RoleName `gorm:"type:varchar(20);uniqueIndex;not null" json:"name"`
}

// ParseRole 把 "admin"、"ROLE_ADMIN"、"user" 等输入映射为角色，
// 无法识别时返回 RoleUser 和 false，由调用方记录警告
func ParseRole(token string) (RoleName, bool) {
	normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(token)), "role_")
	switch normalized {
	case "admin":
		return RoleAdmin, true
	case "user":
		return RoleUser, true
	default:
		return RoleUser, false
	}
}
