package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/internal/service"
	"github.com/careconnect/booking-service/pkg/response"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBooking handles POST /bookings
// A full activity waitlists the participant instead of failing; the
// response status tells the two outcomes apart.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	participantID := req.ParticipantID
	if participantID == "" {
		participantID = actor.ID
	}

	span.SetAttributes(
		attribute.String("activity_id", req.ActivityID),
		attribute.String("participant_id", participantID),
		attribute.String("actor_role", string(actor.Role)),
	)

	result, err := h.bookingService.CreateBooking(ctx, req.ActivityID, participantID, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_status", result.Status))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.GetBooking(ctx, bookingID, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetParticipantBookings handles GET /participants/:id/bookings
func (h *BookingHandler) GetParticipantBookings(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	participantID := c.Param("id")
	if participantID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		handleError(c, domain.ErrForbidden)
		return
	}

	span.SetAttributes(attribute.String("participant_id", participantID))

	result, err := h.bookingService.GetParticipantBookings(ctx, participantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CancelBooking handles POST /bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	bookingID := c.Param("id")
	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("actor_role", string(actor.Role)),
	)

	result, err := h.bookingService.CancelBooking(ctx, bookingID, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Bool("waitlist_notified", result.WaitlistNotified))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// CheckIn handles POST /bookings/:id/check-in
func (h *BookingHandler) CheckIn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.checkin")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	bookingID := c.Param("id")
	span.SetAttributes(attribute.String("booking_id", bookingID))

	result, err := h.bookingService.CheckIn(ctx, bookingID, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SubmitFeedback handles POST /bookings/:id/feedback
func (h *BookingHandler) SubmitFeedback(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.feedback")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	bookingID := c.Param("id")

	var req dto.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.Int("rating", req.Rating),
	)

	result, err := h.bookingService.SubmitFeedback(ctx, bookingID, actor, req.Rating, req.Text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
