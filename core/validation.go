package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

// FieldError 单个字段校验失败
// 只记录字段名与规则，不携带字段值，避免密钥出现在错误信息里。
type FieldError struct {
	Field string
	Rule  string
	Param string
}

// Error 实现 error 接口
func (e *FieldError) Error() string {
	switch e.Rule {
	case "required", "notblank":
		return e.Field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field, e.Param)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", e.Field, e.Param)
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field, e.Rule)
	}
}

// ValidateStruct 按 validate 标签校验结构体
// 字段名取自 json 或 conf 标签；每个失败字段单独生成一个 *FieldError，通过 errors.Join 合并返回。
func ValidateStruct(v any) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	structType := reflect.Indirect(reflect.ValueOf(v)).Type()
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		param := fe.Param()
		if strings.HasPrefix(fe.Tag(), "required_with") {
			param = displayName(structType, param)
		}
		errs = append(errs, &FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: param})
	}
	return errors.Join(errs...)
}

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(tagName)
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func tagName(f reflect.StructField) string {
	for _, tag := range []string{"conf", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// displayName 把 required_without 等规则参数里的 Go 字段名换成标签名
func displayName(structType reflect.Type, goName string) string {
	if structType.Kind() != reflect.Struct {
		return goName
	}
	if f, ok := structType.FieldByName(goName); ok {
		if name := tagName(f); name != "" {
			return name
		}
	}
	return goName
}
