package validation

import (
	"regexp"
	"sync"

	"equipment-lending-system/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^1\d{10}$`)
	once         sync.Once
	registerErr  error
)

// Register 把自定义规则注册到 gin 的校验器上，可重复调用
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerErr = registerRules(v)
	})
	return registerErr
}

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("equipment_status", isEquipmentStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("phone_cn", isMobilePhone); err != nil {
		return err
	}
	return nil
}

// isEquipmentStatus 只允许 可用、维修中、报废
func isEquipmentStatus(fl validator.FieldLevel) bool {
	return model.ValidEquipmentStatus(fl.Field().String())
}

// isMobilePhone 11 位手机号
func isMobilePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}
