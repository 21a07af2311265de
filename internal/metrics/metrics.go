package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/careconnect/booking-service/pkg/telemetry"
)

var (
	// Admission counters
	BookingsConfirmed  *telemetry.Counter
	BookingsWaitlisted *telemetry.Counter
	BookingsCancelled  *telemetry.Counter
	BookingsRejected   *telemetry.Counter
	ConflictsDetected  *telemetry.Counter

	// Waitlist counters
	OffersIssued   *telemetry.Counter
	OffersAccepted *telemetry.Counter
	OffersDeclined *telemetry.Counter
	OffersExpired  *telemetry.Counter

	// Volunteer counters
	AssignmentsCreated   *telemetry.Counter
	AssignmentsCompleted *telemetry.Counter

	// Histograms
	MatchDuration     *telemetry.Histogram
	AdmissionDuration *telemetry.Histogram

	// Gauges
	ActiveOffers *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all booking metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	BookingsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_confirmations_total",
		Description: "Total number of bookings confirmed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsWaitlisted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_waitlisted_total",
		Description: "Total number of admissions that fell through to the waitlist",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_cancellations_total",
		Description: "Total number of cancelled bookings",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_rejections_total",
		Description: "Total number of admissions rejected by a business rule",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ConflictsDetected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "booking_conflicts_total",
		Description: "Total number of schedule conflicts detected",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OffersIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "waitlist_offers_issued_total",
		Description: "Total number of waitlist offers issued",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OffersAccepted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "waitlist_offers_accepted_total",
		Description: "Total number of waitlist offers accepted",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OffersDeclined, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "waitlist_offers_declined_total",
		Description: "Total number of waitlist offers declined",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OffersExpired, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "waitlist_offers_expired_total",
		Description: "Total number of waitlist offers expired by the sweep",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	AssignmentsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "volunteer_assignments_created_total",
		Description: "Total number of volunteer assignments created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	AssignmentsCompleted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "volunteer_assignments_completed_total",
		Description: "Total number of volunteer assignments completed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	MatchDuration, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "volunteer_match_duration_seconds",
		Description: "Duration of volunteer matching runs",
		Unit:        "s",
	})
	if err != nil {
		return err
	}

	AdmissionDuration, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "booking_admission_duration_seconds",
		Description: "Duration of booking admission requests",
		Unit:        "s",
	})
	if err != nil {
		return err
	}

	ActiveOffers, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "waitlist_active_offers",
		Description: "Number of waitlist offers currently outstanding",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordConfirmation records a confirmed admission
func RecordConfirmation(ctx context.Context, activityID string) {
	if BookingsConfirmed != nil {
		BookingsConfirmed.Inc(ctx, attribute.String("activity_id", activityID))
	}
}

// RecordWaitlisted records an admission that fell through to the waitlist
func RecordWaitlisted(ctx context.Context, activityID string) {
	if BookingsWaitlisted != nil {
		BookingsWaitlisted.Inc(ctx, attribute.String("activity_id", activityID))
	}
}

// RecordCancellation records a cancelled booking
func RecordCancellation(ctx context.Context, activityID string) {
	if BookingsCancelled != nil {
		BookingsCancelled.Inc(ctx, attribute.String("activity_id", activityID))
	}
}

// RecordRejection records an admission rejected by a business rule
func RecordRejection(ctx context.Context, reason string) {
	if BookingsRejected != nil {
		BookingsRejected.Inc(ctx, attribute.String("reason", reason))
	}
}

// RecordConflict records a detected schedule conflict
func RecordConflict(ctx context.Context, participantID string) {
	if ConflictsDetected != nil {
		ConflictsDetected.Inc(ctx, attribute.String("participant_id", participantID))
	}
}

// RecordOfferIssued records a waitlist offer being issued
func RecordOfferIssued(ctx context.Context, activityID string) {
	if OffersIssued != nil {
		OffersIssued.Inc(ctx, attribute.String("activity_id", activityID))
	}
	if ActiveOffers != nil {
		ActiveOffers.Inc(ctx)
	}
}

// RecordOfferAccepted records an accepted offer
func RecordOfferAccepted(ctx context.Context, activityID string) {
	if OffersAccepted != nil {
		OffersAccepted.Inc(ctx, attribute.String("activity_id", activityID))
	}
	if ActiveOffers != nil {
		ActiveOffers.Dec(ctx)
	}
}

// RecordOfferDeclined records a declined offer
func RecordOfferDeclined(ctx context.Context, activityID string) {
	if OffersDeclined != nil {
		OffersDeclined.Inc(ctx, attribute.String("activity_id", activityID))
	}
	if ActiveOffers != nil {
		ActiveOffers.Dec(ctx)
	}
}

// RecordOffersExpired records a batch of offers expired by the sweep
func RecordOffersExpired(ctx context.Context, count int64) {
	if OffersExpired != nil {
		OffersExpired.Add(ctx, count)
	}
	if ActiveOffers != nil {
		ActiveOffers.Add(ctx, -count)
	}
}

// RecordAssignmentCreated records a volunteer invitation
func RecordAssignmentCreated(ctx context.Context, activityID, role string) {
	if AssignmentsCreated != nil {
		AssignmentsCreated.Inc(ctx,
			attribute.String("activity_id", activityID),
			attribute.String("role", role),
		)
	}
}

// RecordAssignmentCompleted records a completed assignment
func RecordAssignmentCompleted(ctx context.Context, activityID string) {
	if AssignmentsCompleted != nil {
		AssignmentsCompleted.Inc(ctx, attribute.String("activity_id", activityID))
	}
}

// RecordMatchDuration records how long a matching run took
func RecordMatchDuration(ctx context.Context, seconds float64, candidates int) {
	if MatchDuration != nil {
		MatchDuration.Record(ctx, seconds, attribute.Int("candidates", candidates))
	}
}

// RecordAdmissionDuration records how long an admission took
func RecordAdmissionDuration(ctx context.Context, seconds float64, outcome string) {
	if AdmissionDuration != nil {
		AdmissionDuration.Record(ctx, seconds, attribute.String("outcome", outcome))
	}
}
