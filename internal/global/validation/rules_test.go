package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Status string `validate:"omitempty,equipment_status"`
	Phone  string `validate:"omitempty,phone_cn"`
}

func TestRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerRules(v))

	require.NoError(t, v.Struct(sample{Status: "维修中", Phone: "13800138000"}))
	require.NoError(t, v.Struct(sample{}))
	require.Error(t, v.Struct(sample{Status: "损坏"}))
	require.Error(t, v.Struct(sample{Phone: "12345"}))

	require.NoError(t, Register())
	require.NoError(t, Register())
}
