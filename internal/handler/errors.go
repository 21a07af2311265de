package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/internal/service"
	"github.com/careconnect/booking-service/pkg/middleware"
	"github.com/careconnect/booking-service/pkg/response"
)

// actorFrom builds the domain actor from the identity the auth
// middleware stored in the gin context.
func actorFrom(c *gin.Context) (domain.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domain.Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return domain.Actor{ID: userID, Role: domain.ActorRole(role)}, true
}

// handleError maps service errors onto the API error envelope.
func handleError(c *gin.Context, err error) {
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		payload := &dto.ConflictCheckResponse{HasConflict: true}
		if conflictErr.Result != nil {
			payload.ConflictingActivity = dto.ActivityFromDomain(conflictErr.Result.ConflictingActivity)
			payload.Alternatives = dto.ActivitiesFromDomain(conflictErr.Result.Alternatives)
		}
		response.ErrorWithData(c, http.StatusConflict, "BOOKING_CONFLICT", err.Error(), payload)
		return
	}

	switch {
	case errors.Is(err, domain.ErrActivityNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrWaitlistNotFound),
		errors.Is(err, domain.ErrVolunteerNotFound),
		errors.Is(err, domain.ErrAssignmentNotFound),
		errors.Is(err, domain.ErrParticipantNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error(), "")

	case errors.Is(err, domain.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error(), "")

	case errors.Is(err, domain.ErrActivityCancelled):
		response.Error(c, http.StatusConflict, "ACTIVITY_CANCELLED", err.Error(), "")
	case errors.Is(err, domain.ErrPastActivity):
		response.Error(c, http.StatusConflict, "PAST_ACTIVITY", err.Error(), "")
	case errors.Is(err, domain.ErrActivityFull):
		response.Error(c, http.StatusConflict, "ACTIVITY_FULL", err.Error(), "")
	case errors.Is(err, domain.ErrActivityNotEnded):
		response.Error(c, http.StatusConflict, "ACTIVITY_NOT_ENDED", err.Error(), "")
	case errors.Is(err, domain.ErrRoomOccupied):
		response.Error(c, http.StatusConflict, "ROOM_OCCUPIED", err.Error(), "")

	case errors.Is(err, domain.ErrAlreadyRegistered):
		response.Error(c, http.StatusConflict, "ALREADY_REGISTERED", err.Error(), "")
	case errors.Is(err, domain.ErrAlreadyCancelled):
		response.Error(c, http.StatusConflict, "ALREADY_CANCELLED", err.Error(), "")
	case errors.Is(err, domain.ErrCancellationClosed):
		response.Error(c, http.StatusConflict, "CANCELLATION_DEADLINE", err.Error(), "")
	case errors.Is(err, domain.ErrCheckInClosed):
		response.Error(c, http.StatusConflict, "CHECKIN_CLOSED", err.Error(), "")
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		response.Error(c, http.StatusConflict, "ALREADY_CHECKED_IN", err.Error(), "")
	case errors.Is(err, domain.ErrNotCheckedIn):
		response.Error(c, http.StatusConflict, "NOT_CHECKED_IN", err.Error(), "")
	case errors.Is(err, domain.ErrFeedbackExists):
		response.Error(c, http.StatusConflict, "FEEDBACK_EXISTS", err.Error(), "")
	case errors.Is(err, domain.ErrFeedbackTooEarly):
		response.Error(c, http.StatusConflict, "FEEDBACK_TOO_EARLY", err.Error(), "")

	case errors.Is(err, domain.ErrOfferExpired):
		response.Error(c, http.StatusGone, "OFFER_EXPIRED", err.Error(), "")
	case errors.Is(err, domain.ErrOfferNotActive):
		response.Error(c, http.StatusConflict, "OFFER_NOT_ACTIVE", err.Error(), "")
	case errors.Is(err, domain.ErrAlreadyWaitlisted):
		response.Error(c, http.StatusConflict, "ALREADY_WAITLISTED", err.Error(), "")

	case errors.Is(err, domain.ErrVolunteersFull):
		response.Error(c, http.StatusConflict, "VOLUNTEERS_FULL", err.Error(), "")
	case errors.Is(err, domain.ErrAssignmentConflict):
		response.Error(c, http.StatusConflict, "ASSIGNMENT_CONFLICT", err.Error(), "")
	case errors.Is(err, domain.ErrAlreadyResponded):
		response.Error(c, http.StatusConflict, "ALREADY_RESPONDED", err.Error(), "")
	case errors.Is(err, domain.ErrAlreadyCompleted):
		response.Error(c, http.StatusConflict, "ALREADY_COMPLETED", err.Error(), "")

	case errors.Is(err, domain.ErrInvalidBookingState),
		errors.Is(err, domain.ErrInvalidWaitlistState),
		errors.Is(err, domain.ErrInvalidAssignmentState):
		response.Error(c, http.StatusConflict, "INVALID_STATUS", err.Error(), "")

	case errors.Is(err, domain.ErrInvalidTimeWindow):
		response.Error(c, http.StatusBadRequest, "INVALID_TIME_WINDOW", err.Error(), "")
	case errors.Is(err, domain.ErrInvalidCapacity):
		response.Error(c, http.StatusBadRequest, "INVALID_CAPACITY", err.Error(), "")
	case errors.Is(err, domain.ErrInvalidRating):
		response.Error(c, http.StatusBadRequest, "INVALID_RATING", err.Error(), "")
	case errors.Is(err, domain.ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, "INVALID_ROLE", err.Error(), "")
	case errors.Is(err, domain.ErrInvalidActivityID),
		errors.Is(err, domain.ErrInvalidParticipantID),
		errors.Is(err, domain.ErrInvalidVolunteerID):
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), "")

	default:
		response.InternalError(c, err)
	}
}
