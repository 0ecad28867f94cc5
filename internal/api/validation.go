package api

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxUnitNameLength = 32

// registerValidators 在 gin 的驗證引擎上註冊自訂標籤
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("unitname", validateUnitName)
}

// validateUnitName 單位可為空；非空時限制長度且不得含換行或 tab
func validateUnitName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return utf8.RuneCountInString(s) <= maxUnitNameLength && !strings.ContainsAny(s, "\r\n\t")
}
