package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/internal/service"
)

func setupBookingRouter(h *BookingHandler, userID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(identityMiddleware(userID, role))

	bookings := router.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/check-in", h.CheckIn)
		bookings.POST("/:id/feedback", h.SubmitFeedback)
	}
	router.GET("/participants/:id/bookings", h.GetParticipantBookings)

	return router
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		request        *dto.CreateBookingRequest
		mockFunc       func(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "confirmed booking",
			userID:  "part-1",
			request: &dto.CreateBookingRequest{ActivityID: "act-1"},
			mockFunc: func(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error) {
				if participantID != "part-1" {
					t.Errorf("expected participant part-1, got %s", participantID)
				}
				return &dto.CreateBookingResponse{
					Status:  string(domain.BookingStatusConfirmed),
					Booking: &dto.BookingResponse{ID: "book-1", ActivityID: activityID},
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:    "full activity reports waitlisted",
			userID:  "part-1",
			request: &dto.CreateBookingRequest{ActivityID: "act-1"},
			mockFunc: func(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error) {
				return &dto.CreateBookingResponse{Status: "waitlisted", Position: 3, Rank: 3}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unauthorized without identity",
			userID:         "",
			request:        &dto.CreateBookingRequest{ActivityID: "act-1"},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:    "past activity",
			userID:  "part-1",
			request: &dto.CreateBookingRequest{ActivityID: "act-1"},
			mockFunc: func(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error) {
				return nil, domain.ErrPastActivity
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "PAST_ACTIVITY",
		},
		{
			name:    "already registered",
			userID:  "part-1",
			request: &dto.CreateBookingRequest{ActivityID: "act-1"},
			mockFunc: func(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error) {
				return nil, domain.ErrAlreadyRegistered
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_REGISTERED",
		},
		{
			name:    "booking for someone else",
			userID:  "part-1",
			request: &dto.CreateBookingRequest{ActivityID: "act-1", ParticipantID: "part-2"},
			mockFunc: func(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error) {
				return nil, domain.ErrForbidden
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{CreateBookingFunc: tt.mockFunc}
			router := setupBookingRouter(NewBookingHandler(mockService), tt.userID, "participant")

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				env := decodeEnvelope(t, w.Body.Bytes())
				if env.Error == nil || env.Error.Code != tt.expectedCode {
					t.Errorf("expected error code %s, got %+v", tt.expectedCode, env.Error)
				}
			}
		})
	}
}

func TestBookingHandler_CreateBooking_ConflictPayload(t *testing.T) {
	conflicting := &domain.Activity{ID: "act-2", Title: "Morning Yoga"}
	alternative := &domain.Activity{ID: "alt-1", Title: "Evening Yoga"}

	mockService := &MockBookingService{
		CreateBookingFunc: func(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error) {
			return nil, &service.ConflictError{Result: &service.ConflictResult{
				HasConflict:         true,
				ConflictingActivity: conflicting,
				Alternatives:        []*domain.Activity{alternative},
			}}
		},
	}
	router := setupBookingRouter(NewBookingHandler(mockService), "part-1", "participant")

	body, _ := json.Marshal(&dto.CreateBookingRequest{ActivityID: "act-1"})
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}

	env := decodeEnvelope(t, w.Body.Bytes())
	if env.Error == nil || env.Error.Code != "BOOKING_CONFLICT" {
		t.Fatalf("expected BOOKING_CONFLICT, got %+v", env.Error)
	}

	var payload dto.ConflictCheckResponse
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode conflict payload: %v", err)
	}
	if payload.ConflictingActivity == nil || payload.ConflictingActivity.ID != "act-2" {
		t.Errorf("expected conflicting activity act-2, got %+v", payload.ConflictingActivity)
	}
	if len(payload.Alternatives) != 1 || payload.Alternatives[0].ID != "alt-1" {
		t.Errorf("expected alternative alt-1, got %+v", payload.Alternatives)
	}
}

func TestBookingHandler_CancelBooking(t *testing.T) {
	tests := []struct {
		name           string
		mockFunc       func(ctx context.Context, bookingID string, actor domain.Actor) (*dto.CancelBookingResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "successful cancellation",
			mockFunc: func(ctx context.Context, bookingID string, actor domain.Actor) (*dto.CancelBookingResponse, error) {
				return &dto.CancelBookingResponse{BookingID: bookingID, Status: "cancelled", WaitlistNotified: true}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "inside the notice window",
			mockFunc: func(ctx context.Context, bookingID string, actor domain.Actor) (*dto.CancelBookingResponse, error) {
				return nil, domain.ErrCancellationClosed
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CANCELLATION_DEADLINE",
		},
		{
			name: "booking not found",
			mockFunc: func(ctx context.Context, bookingID string, actor domain.Actor) (*dto.CancelBookingResponse, error) {
				return nil, domain.ErrBookingNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingService{CancelBookingFunc: tt.mockFunc}
			router := setupBookingRouter(NewBookingHandler(mockService), "part-1", "participant")

			req := httptest.NewRequest(http.MethodPost, "/bookings/book-1/cancel", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedCode != "" {
				env := decodeEnvelope(t, w.Body.Bytes())
				if env.Error == nil || env.Error.Code != tt.expectedCode {
					t.Errorf("expected error code %s, got %+v", tt.expectedCode, env.Error)
				}
			}
		})
	}
}

func TestBookingHandler_SubmitFeedback(t *testing.T) {
	mockService := &MockBookingService{
		SubmitFeedbackFunc: func(ctx context.Context, bookingID string, actor domain.Actor, rating int, text string) (*dto.BookingResponse, error) {
			rated := rating
			return &dto.BookingResponse{ID: bookingID, FeedbackRating: &rated, FeedbackText: text}, nil
		},
	}
	router := setupBookingRouter(NewBookingHandler(mockService), "part-1", "participant")

	body, _ := json.Marshal(&dto.SubmitFeedbackRequest{Rating: 5, Text: "great session"})
	req := httptest.NewRequest(http.MethodPost, "/bookings/book-1/feedback", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	// Out-of-range ratings are rejected at binding time
	body, _ = json.Marshal(map[string]interface{}{"rating": 6})
	req = httptest.NewRequest(http.MethodPost, "/bookings/book-1/feedback", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for out-of-range rating, got %d", w.Code)
	}
}

func TestBookingHandler_GetParticipantBookings(t *testing.T) {
	mockService := &MockBookingService{
		GetParticipantBookingsFunc: func(ctx context.Context, participantID string) ([]*dto.BookingResponse, error) {
			return []*dto.BookingResponse{{ID: "book-1", ParticipantID: participantID}}, nil
		},
	}

	t.Run("own bookings", func(t *testing.T) {
		router := setupBookingRouter(NewBookingHandler(mockService), "part-1", "participant")
		req := httptest.NewRequest(http.MethodGet, "/participants/part-1/bookings", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
	})

	t.Run("someone else's bookings are forbidden", func(t *testing.T) {
		router := setupBookingRouter(NewBookingHandler(mockService), "part-1", "participant")
		req := httptest.NewRequest(http.MethodGet, "/participants/part-2/bookings", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", w.Code)
		}
	})

	t.Run("staff may list any participant", func(t *testing.T) {
		router := setupBookingRouter(NewBookingHandler(mockService), "staff-1", "staff")
		req := httptest.NewRequest(http.MethodGet, "/participants/part-2/bookings", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
	})
}
