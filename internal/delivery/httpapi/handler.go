package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paramstock/alerter/internal/domain"
	"github.com/paramstock/alerter/internal/usecase"
	"go.uber.org/zap"
)

type Handler struct {
	alerts *usecase.AlertUsecase
	logger *zap.Logger
}

func NewHandler(alerts *usecase.AlertUsecase, logger *zap.Logger) *Handler {
	return &Handler{alerts: alerts, logger: logger}
}

func (h *Handler) InitRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/api/add_alert", h.AddAlert)
	r.GET("/api/get_alerts/:phone_number", h.GetAlerts)
	r.POST("/api/delete_alert/:alert_id", h.DeleteAlert)

	return r
}

type addAlertRequest struct {
	PhoneNumber     string      `json:"phone_number"`
	Ticker          string      `json:"ticker"`
	TargetPrice     json.Number `json:"target_price"`
	Condition       string      `json:"condition"`
	DeleteOnTrigger bool        `json:"delete_on_trigger"`
}

type alertResponse struct {
	ID              string `json:"id"`
	Ticker          string `json:"ticker"`
	TargetPrice     string `json:"target_price"`
	Condition       string `json:"condition"`
	DeleteOnTrigger bool   `json:"delete_on_trigger"`
	Status          string `json:"status"`
}

func (h *Handler) AddAlert(ctx *gin.Context) {
	var req addAlertRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	alert, err := h.alerts.AddAlert(
		ctx.Request.Context(),
		req.PhoneNumber,
		req.Ticker,
		req.TargetPrice.String(),
		req.Condition,
		req.DeleteOnTrigger,
	)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Alert for " + alert.Ticker + " created successfully!",
		"alert":   toAlertResponse(*alert),
	})
}

func (h *Handler) GetAlerts(ctx *gin.Context) {
	alerts, err := h.alerts.ListAlerts(ctx.Request.Context(), ctx.Param("phone_number"))
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	responses := make([]alertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, toAlertResponse(alert))
	}
	ctx.JSON(http.StatusOK, responses)
}

func (h *Handler) DeleteAlert(ctx *gin.Context) {
	if err := h.alerts.DeleteAlert(ctx.Request.Context(), ctx.Param("alert_id")); err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Alert deleted!"})
}

func (h *Handler) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidOwner),
		errors.Is(err, usecase.ErrInvalidTicker),
		errors.Is(err, usecase.ErrInvalidTargetPrice),
		errors.Is(err, usecase.ErrInvalidCondition),
		errors.Is(err, domain.ErrInvalidArgument):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrAlertNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
	default:
		h.logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toAlertResponse(alert domain.Alert) alertResponse {
	return alertResponse{
		ID:              alert.ID,
		Ticker:          alert.Ticker,
		TargetPrice:     alert.TargetPrice.String(),
		Condition:       string(alert.Comparison),
		DeleteOnTrigger: alert.DeleteOnTrigger,
		Status:          string(alert.Status),
	}
}
