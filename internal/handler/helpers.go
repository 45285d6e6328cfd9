package handler

import (
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"linkboard-go/internal/apperrors"
)

// bindJSON 绑定请求体。校验失败时优先取字段 msg 标签作为消息 ID。
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			// 通过反射获取字段的 msg 标签值
			for _, e := range validationErrs {
				field, ok := reflect.TypeOf(req).Elem().FieldByName(e.Field())
				if !ok {
					continue
				}
				if customMsg := field.Tag.Get("msg"); customMsg != "" {
					_ = c.Error(apperrors.InvalidRequestError(customMsg, e.Error()).WithDetails(e.Error()))
					return false
				}
			}
		}
		_ = c.Error(apperrors.InvalidRequestErrorDefault().WithDetails(err.Error()))
		return false
	}
	return true
}
