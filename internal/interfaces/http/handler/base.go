// Package handler implements the REST endpoints on top of the application
// services.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pharmapos/backend/internal/domain/shared"
	"github.com/pharmapos/backend/internal/infrastructure/logger"
	"github.com/pharmapos/backend/internal/interfaces/http/dto"
	"github.com/pharmapos/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler writes the response envelope
type BaseHandler struct{}

// Success sends 200 with data
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends 200 with a page of data
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewListResponse(data, total, page, pageSize))
}

// Created sends 201 with data
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends 204
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error envelope with an explicit status and code
func (h *BaseHandler) Error(c *gin.Context, status int, code, message, field string) {
	c.JSON(status, dto.NewErrorResponse(code, message, field, c.GetString(logger.RequestIDKey)))
}

// HandleError maps err to its status. Server errors are logged with the
// cause and answered with a generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	status, info := dto.ErrorFrom(err)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("code", info.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	h.Error(c, status, info.Code, info.Message, info.Field)
}

// BindJSON decodes the body into obj and reports whether it succeeded. On
// failure the response has been written.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	h.bindError(c, err)
	return false
}

// BindQuery decodes the query string into obj, like BindJSON.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	err := c.ShouldBindQuery(obj)
	if err == nil {
		return true
	}
	h.bindError(c, err)
	return false
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	var (
		ves       validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case middleware.IsBodyTooLarge(err):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "request body exceeds maximum allowed size", "")
	case errors.As(err, &ves) && len(ves) > 0:
		fe := ves[0]
		h.Error(c, http.StatusBadRequest, shared.CodeValidation, "failed on the '"+fe.Tag()+"' rule", fe.Field())
	case errors.As(err, &typeErr):
		h.Error(c, http.StatusBadRequest, shared.CodeValidation, "must be a "+typeErr.Type.String(), typeErr.Field)
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "request body is not valid JSON", "")
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error(), "")
	}
}

// pathUUID parses the named path parameter, answering 400 when malformed.
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, shared.CodeValidation, "must be a UUID", name)
		return uuid.Nil, false
	}
	return id, true
}
