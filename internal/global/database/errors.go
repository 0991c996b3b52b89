package database

import (
	"errors"

	"equipment-lending-system/internal/global/response"

	"gorm.io/gorm"
)

// Wrap 把存储层错误转换为业务错误：业务错误原样返回，记录不存在转为 notFound，
// 唯一索引冲突转为 ErrAlreadyExists，其余视为数据库错误
func Wrap(err error, notFound *response.Error) error {
	if err == nil {
		return nil
	}
	var e *response.Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case IsDuplicate(err):
		return response.ErrAlreadyExists.WithOrigin(err)
	default:
		return response.ErrDatabase.WithOrigin(err)
	}
}
