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

// WaitlistHandler handles waitlist offer HTTP requests
type WaitlistHandler struct {
	waitlistService service.WaitlistService
}

// NewWaitlistHandler creates a new waitlist handler
func NewWaitlistHandler(waitlistService service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService}
}

// AcceptOffer handles POST /waitlist/:id/accept
func (h *WaitlistHandler) AcceptOffer(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.waitlist.accept")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	waitlistID := c.Param("id")
	span.SetAttributes(
		attribute.String("waitlist_id", waitlistID),
		attribute.String("actor_role", string(actor.Role)),
	)

	result, err := h.waitlistService.AcceptOffer(ctx, waitlistID, actor)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.BookingID))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// DeclineOffer handles POST /waitlist/:id/decline
func (h *WaitlistHandler) DeclineOffer(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.waitlist.decline")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := actorFrom(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", "")
		return
	}

	waitlistID := c.Param("id")
	span.SetAttributes(
		attribute.String("waitlist_id", waitlistID),
		attribute.String("actor_role", string(actor.Role)),
	)

	if err := h.waitlistService.DeclineOffer(ctx, waitlistID, actor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, &dto.DeclineOfferResponse{
		WaitlistID: waitlistID,
		Status:     string(domain.WaitlistStatusDeclined),
	})
}

// GetParticipantWaitlist handles GET /participants/:id/waitlist
func (h *WaitlistHandler) GetParticipantWaitlist(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.waitlist.list")
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

	result, err := h.waitlistService.GetParticipantWaitlist(ctx, participantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
