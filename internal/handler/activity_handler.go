package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/internal/service"
	"github.com/careconnect/booking-service/pkg/response"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

// ActivityHandler handles activity HTTP requests
type ActivityHandler struct {
	activityService service.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// CreateActivity handles POST /activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.activity.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("activity_type", req.ActivityType),
		attribute.Int("capacity", req.Capacity),
	)

	result, err := h.activityService.CreateActivity(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("activity_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetActivity handles GET /activities/:id
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.activity.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	activityID := c.Param("id")
	span.SetAttributes(attribute.String("activity_id", activityID))

	result, err := h.activityService.GetActivity(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CancelActivity handles POST /activities/:id/cancel
func (h *ActivityHandler) CancelActivity(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.activity.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	activityID := c.Param("id")

	var req dto.CancelActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	span.SetAttributes(attribute.String("activity_id", activityID))

	result, err := h.activityService.CancelActivity(ctx, activityID, req.Reason)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// UpdateCapacity handles PATCH /activities/:id/capacity
func (h *ActivityHandler) UpdateCapacity(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.activity.capacity")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	activityID := c.Param("id")

	var req dto.UpdateCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.Int("capacity", req.Capacity),
	)

	result, err := h.activityService.UpdateCapacity(ctx, activityID, req.Capacity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
