package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"inlineai.app/relay/internal/http/dto"
	"inlineai.app/relay/internal/service"
)

const serviceName = "ai-change-request"

type ChangeRequestHandler struct {
	changeRequestService service.ChangeRequestService
}

func NewChangeRequestHandler(changeRequestService service.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{changeRequestService: changeRequestService}
}

func (h *ChangeRequestHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChangeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid change request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   dto.InvalidRequestMessage,
			Details: []dto.FieldErrorJSON{bindErrorDetail(err)},
		})
		return
	}

	result, err := h.changeRequestService.Submit(ctx, req.ToInput())
	if err != nil {
		if ve, ok := service.IsValidationError(err); ok {
			slog.InfoContext(ctx, "change request rejected", "error", err)
			c.JSON(http.StatusBadRequest, dto.ToValidationErrorResponse(ve))
			return
		}
		slog.ErrorContext(ctx, "change request failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ToChangeRequestResponse(result))
}

func (h *ChangeRequestHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToHealthResponse(serviceName, h.changeRequestService.Health()))
}

func bindErrorDetail(err error) dto.FieldErrorJSON {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return dto.FieldErrorJSON{Field: typeErr.Field, Message: "must be a " + typeErr.Type.String()}
	}
	return dto.FieldErrorJSON{Field: "body", Message: "must be a valid JSON object"}
}
