// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mertk/coursehub/internal/app/models/dto"
)

// parseIDParam reads a positive numeric path parameter. On failure it writes
// the 400 response itself and returns ok=false.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid "+name+" parameter").
			WithDetails(name + " must be a positive integer")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
