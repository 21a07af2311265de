package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/internal/service"
	"github.com/careconnect/booking-service/pkg/response"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

const defaultMatchLimit = 10

// VolunteerHandler handles volunteer matching and assignment HTTP requests
type VolunteerHandler struct {
	volunteerService service.VolunteerService
}

// NewVolunteerHandler creates a new volunteer handler
func NewVolunteerHandler(volunteerService service.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{volunteerService: volunteerService}
}

// FindMatches handles GET /activities/:id/matches
func (h *VolunteerHandler) FindMatches(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.volunteer.matches")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	activityID := c.Param("id")

	limit := defaultMatchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			span.SetStatus(codes.Error, "invalid limit")
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", "")
			return
		}
		limit = parsed
	}

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.Int("limit", limit),
	)

	result, err := h.volunteerService.FindMatches(ctx, activityID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("match_count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CreateAssignment handles POST /assignments
func (h *VolunteerHandler) CreateAssignment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.volunteer.assign")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("activity_id", req.ActivityID),
		attribute.String("volunteer_id", req.VolunteerID),
		attribute.String("role", req.Role),
	)

	result, err := h.volunteerService.CreateAssignment(ctx, req.ActivityID, req.VolunteerID, domain.AssignmentRole(req.Role))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("assignment_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// RespondAssignment handles POST /assignments/:id/respond
func (h *VolunteerHandler) RespondAssignment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.volunteer.respond")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	assignmentID := c.Param("id")

	var req dto.RespondAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	accept := req.Response == "accept"

	span.SetAttributes(
		attribute.String("assignment_id", assignmentID),
		attribute.Bool("accept", accept),
	)

	result, err := h.volunteerService.RespondAssignment(ctx, assignmentID, actor, accept)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CheckInAssignment handles POST /assignments/:id/check-in
func (h *VolunteerHandler) CheckInAssignment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.volunteer.checkin")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	assignmentID := c.Param("id")
	span.SetAttributes(attribute.String("assignment_id", assignmentID))

	result, err := h.volunteerService.CheckInAssignment(ctx, assignmentID, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CheckOutAssignment handles POST /assignments/:id/check-out
func (h *VolunteerHandler) CheckOutAssignment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.volunteer.checkout")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	assignmentID := c.Param("id")

	var req dto.CheckOutAssignmentRequest
	// Feedback is optional, an empty body is fine
	_ = c.ShouldBindJSON(&req)

	span.SetAttributes(attribute.String("assignment_id", assignmentID))

	result, err := h.volunteerService.CheckOutAssignment(ctx, assignmentID, actor, req.Feedback)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CompleteAssignment handles POST /assignments/:id/complete
func (h *VolunteerHandler) CompleteAssignment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.volunteer.complete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	assignmentID := c.Param("id")

	var req dto.CompleteAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("assignment_id", assignmentID),
		attribute.Int("staff_rating", req.StaffRating),
	)

	result, err := h.volunteerService.CompleteAssignment(ctx, assignmentID, req.StaffRating, req.Hours)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
