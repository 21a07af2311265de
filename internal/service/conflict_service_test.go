package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

func mkActivity(id, activityType string, start, end time.Time) *domain.Activity {
	return &domain.Activity{
		ID:           id,
		Title:        "Activity " + id,
		ActivityType: activityType,
		StartTime:    start,
		EndTime:      end,
		Capacity:     10,
	}
}

func TestConflictService_CheckConflict(t *testing.T) {
	base := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	storeErr := errors.New("connection refused")

	tests := []struct {
		name         string
		start        time.Time
		end          time.Time
		exclude      string
		setupMocks   func(*MockBookingRepository, *MockActivityRepository)
		wantErr      error
		wantConflict bool
		wantConfID   string
		wantAlts     []string
	}{
		{
			name:  "no confirmed bookings",
			start: base,
			end:   base.Add(time.Hour),
			setupMocks: func(br *MockBookingRepository, ar *MockActivityRepository) {
				br.ListConfirmedActivitiesFunc = func(ctx context.Context, participantID string) ([]*domain.Activity, error) {
					return []*domain.Activity{}, nil
				}
			},
			wantConflict: false,
		},
		{
			name:  "touching windows do not conflict",
			start: base.Add(time.Hour),
			end:   base.Add(2 * time.Hour),
			setupMocks: func(br *MockBookingRepository, ar *MockActivityRepository) {
				br.ListConfirmedActivitiesFunc = func(ctx context.Context, participantID string) ([]*domain.Activity, error) {
					return []*domain.Activity{
						mkActivity("act-1", "yoga", base, base.Add(time.Hour)),
					}, nil
				}
			},
			wantConflict: false,
		},
		{
			name:  "overlapping window conflicts",
			start: base.Add(30 * time.Minute),
			end:   base.Add(90 * time.Minute),
			setupMocks: func(br *MockBookingRepository, ar *MockActivityRepository) {
				br.ListConfirmedActivitiesFunc = func(ctx context.Context, participantID string) ([]*domain.Activity, error) {
					return []*domain.Activity{
						mkActivity("act-1", "yoga", base, base.Add(time.Hour)),
					}, nil
				}
			},
			wantConflict: true,
			wantConfID:   "act-1",
		},
		{
			name:    "excluded activity is skipped",
			start:   base,
			end:     base.Add(time.Hour),
			exclude: "act-1",
			setupMocks: func(br *MockBookingRepository, ar *MockActivityRepository) {
				br.ListConfirmedActivitiesFunc = func(ctx context.Context, participantID string) ([]*domain.Activity, error) {
					return []*domain.Activity{
						mkActivity("act-1", "yoga", base, base.Add(time.Hour)),
					}, nil
				}
			},
			wantConflict: false,
		},
		{
			name:  "alternatives same type and conflict free",
			start: base,
			end:   base.Add(time.Hour),
			setupMocks: func(br *MockBookingRepository, ar *MockActivityRepository) {
				br.ListConfirmedActivitiesFunc = func(ctx context.Context, participantID string) ([]*domain.Activity, error) {
					return []*domain.Activity{
						mkActivity("act-1", "yoga", base, base.Add(time.Hour)),
						mkActivity("act-2", "art", base.Add(4*time.Hour), base.Add(5*time.Hour)),
					}, nil
				}
				ar.ListAlternativesFunc = func(ctx context.Context, activityType, excludeID string, from time.Time, limit int) ([]*domain.Activity, error) {
					if activityType != "yoga" {
						t.Errorf("ListAlternatives activityType = %s, want yoga", activityType)
					}
					return []*domain.Activity{
						// Overlaps act-2, must be filtered out
						mkActivity("alt-1", "yoga", base.Add(4*time.Hour), base.Add(5*time.Hour)),
						mkActivity("alt-2", "yoga", base.Add(24*time.Hour), base.Add(25*time.Hour)),
						mkActivity("alt-3", "yoga", base.Add(48*time.Hour), base.Add(49*time.Hour)),
					}, nil
				}
			},
			wantConflict: true,
			wantConfID:   "act-1",
			wantAlts:     []string{"alt-2", "alt-3"},
		},
		{
			name:  "alternatives capped at three",
			start: base,
			end:   base.Add(time.Hour),
			setupMocks: func(br *MockBookingRepository, ar *MockActivityRepository) {
				br.ListConfirmedActivitiesFunc = func(ctx context.Context, participantID string) ([]*domain.Activity, error) {
					return []*domain.Activity{
						mkActivity("act-1", "yoga", base, base.Add(time.Hour)),
					}, nil
				}
				ar.ListAlternativesFunc = func(ctx context.Context, activityType, excludeID string, from time.Time, limit int) ([]*domain.Activity, error) {
					return []*domain.Activity{
						mkActivity("alt-1", "yoga", base.Add(24*time.Hour), base.Add(25*time.Hour)),
						mkActivity("alt-2", "yoga", base.Add(48*time.Hour), base.Add(49*time.Hour)),
						mkActivity("alt-3", "yoga", base.Add(72*time.Hour), base.Add(73*time.Hour)),
						mkActivity("alt-4", "yoga", base.Add(96*time.Hour), base.Add(97*time.Hour)),
					}, nil
				}
			},
			wantConflict: true,
			wantConfID:   "act-1",
			wantAlts:     []string{"alt-1", "alt-2", "alt-3"},
		},
		{
			name:  "no cross type backfill",
			start: base,
			end:   base.Add(time.Hour),
			setupMocks: func(br *MockBookingRepository, ar *MockActivityRepository) {
				br.ListConfirmedActivitiesFunc = func(ctx context.Context, participantID string) ([]*domain.Activity, error) {
					return []*domain.Activity{
						mkActivity("act-1", "yoga", base, base.Add(time.Hour)),
					}, nil
				}
				ar.ListAlternativesFunc = func(ctx context.Context, activityType, excludeID string, from time.Time, limit int) ([]*domain.Activity, error) {
					return []*domain.Activity{}, nil
				}
			},
			wantConflict: true,
			wantConfID:   "act-1",
			wantAlts:     []string{},
		},
		{
			name:    "invalid window",
			start:   base.Add(time.Hour),
			end:     base,
			wantErr: domain.ErrInvalidTimeWindow,
		},
		{
			name:  "store error fails closed",
			start: base,
			end:   base.Add(time.Hour),
			setupMocks: func(br *MockBookingRepository, ar *MockActivityRepository) {
				br.ListConfirmedActivitiesFunc = func(ctx context.Context, participantID string) ([]*domain.Activity, error) {
					return nil, storeErr
				}
			},
			wantErr: storeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookingRepo := &MockBookingRepository{}
			activityRepo := &MockActivityRepository{}
			if tt.setupMocks != nil {
				tt.setupMocks(bookingRepo, activityRepo)
			}

			svc := NewConflictService(bookingRepo, activityRepo)
			result, err := svc.CheckConflict(context.Background(), "part-001", tt.start, tt.end, tt.exclude)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CheckConflict() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("CheckConflict() unexpected error = %v", err)
				return
			}

			if result.HasConflict != tt.wantConflict {
				t.Errorf("CheckConflict() HasConflict = %v, want %v", result.HasConflict, tt.wantConflict)
			}
			if tt.wantConfID != "" {
				if result.ConflictingActivity == nil || result.ConflictingActivity.ID != tt.wantConfID {
					t.Errorf("CheckConflict() conflicting activity = %v, want %s", result.ConflictingActivity, tt.wantConfID)
				}
			}
			if tt.wantAlts != nil {
				if len(result.Alternatives) != len(tt.wantAlts) {
					t.Fatalf("CheckConflict() alternatives = %d, want %d", len(result.Alternatives), len(tt.wantAlts))
				}
				for i, want := range tt.wantAlts {
					if result.Alternatives[i].ID != want {
						t.Errorf("CheckConflict() alternatives[%d] = %s, want %s", i, result.Alternatives[i].ID, want)
					}
				}
			}
		})
	}
}

func TestConflictError_Unwrap(t *testing.T) {
	err := error(&ConflictError{Result: &ConflictResult{
		HasConflict:         true,
		ConflictingActivity: &domain.Activity{ID: "act-1"},
	}})

	if !errors.Is(err, domain.ErrBookingConflict) {
		t.Error("ConflictError should match domain.ErrBookingConflict")
	}

	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatal("errors.As should extract *ConflictError")
	}
	if conflictErr.Result.ConflictingActivity.ID != "act-1" {
		t.Errorf("conflicting activity = %s, want act-1", conflictErr.Result.ConflictingActivity.ID)
	}
}
