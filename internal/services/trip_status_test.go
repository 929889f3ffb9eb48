package services

import (
	"testing"
	"time"

	"campusbus/internal/domain/models"
)

const grace = 15 * time.Minute

func tripAt(date, dep, arr string, status models.TripStatus) models.Trip {
	return models.Trip{
		ID:            1,
		TripDate:      date,
		DepartureTime: dep,
		ArrivalTime:   arr,
		Status:        status,
	}
}

func localTime(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestDeriveStatusBeforeDeparture(t *testing.T) {
	trip := tripAt("2025-01-01", "08:00", "10:00", models.TripScheduled)
	got := DeriveStatus(trip, localTime(2025, 1, 1, 7, 0), grace)
	if got != models.TripScheduled {
		t.Fatalf("expected scheduled, got %s", got)
	}
}

func TestDeriveStatusInProgress(t *testing.T) {
	// Scenario: departure 08:00, arrival 10:00, now 09:00.
	trip := tripAt("2025-01-01", "08:00", "10:00", models.TripScheduled)
	now := localTime(2025, 1, 1, 9, 0)

	// An hour past departure is well beyond the grace window, so the trip is
	// presumed under way.
	if got := DeriveStatus(trip, now, grace); got != models.TripInProgress {
		t.Fatalf("expected in-progress, got %s", got)
	}

	// Ten minutes past a missed departure, still inside the grace window with
	// no start recorded, the trip shows as delayed.
	if got := DeriveStatus(trip, localTime(2025, 1, 1, 8, 10), grace); got != models.TripDelayed {
		t.Fatalf("expected delayed within grace, got %s", got)
	}

	// With the delay trigger disabled the same instant derives in-progress.
	if got := DeriveStatus(trip, localTime(2025, 1, 1, 8, 10), 0); got != models.TripInProgress {
		t.Fatalf("expected in-progress with trigger disabled, got %s", got)
	}
}

func TestDeriveStatusCompletedPastArrival(t *testing.T) {
	trip := tripAt("2025-01-01", "08:00", "10:00", models.TripScheduled)
	if got := DeriveStatus(trip, localTime(2025, 1, 2, 0, 0), grace); got != models.TripCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
}

func TestDeriveStatusCancelledWinsOverTime(t *testing.T) {
	trip := tripAt("2025-01-01", "08:00", "10:00", models.TripCancelled)
	for _, now := range []time.Time{
		localTime(2025, 1, 1, 7, 0),
		localTime(2025, 1, 1, 9, 0),
		localTime(2025, 1, 5, 0, 0),
	} {
		if got := DeriveStatus(trip, now, grace); got != models.TripCancelled {
			t.Fatalf("cancelled must never be overridden, got %s at %s", got, now)
		}
	}
}

func TestDeriveStatusCompletedIsTerminal(t *testing.T) {
	trip := tripAt("2025-01-01", "08:00", "10:00", models.TripCompleted)
	if got := DeriveStatus(trip, localTime(2025, 1, 1, 9, 0), grace); got != models.TripCompleted {
		t.Fatalf("completed must not regress, got %s", got)
	}
}

func TestDeriveStatusOvernightTrip(t *testing.T) {
	// Arrival clock before departure clock means the trip crosses midnight.
	trip := tripAt("2025-01-01", "23:00", "01:00", models.TripScheduled)

	if got := DeriveStatus(trip, localTime(2025, 1, 1, 23, 10), 0); got != models.TripInProgress {
		t.Fatalf("expected in-progress before midnight, got %s", got)
	}
	if got := DeriveStatus(trip, localTime(2025, 1, 2, 0, 30), 0); got != models.TripInProgress {
		t.Fatalf("expected in-progress after midnight, got %s", got)
	}
	if got := DeriveStatus(trip, localTime(2025, 1, 2, 1, 30), 0); got != models.TripCompleted {
		t.Fatalf("expected completed after overnight arrival, got %s", got)
	}
}

func TestDeriveStatusUnparseableFallsBack(t *testing.T) {
	trip := tripAt("not-a-date", "08:00", "10:00", models.TripDelayed)
	if got := DeriveStatus(trip, localTime(2025, 1, 1, 9, 0), grace); got != models.TripDelayed {
		t.Fatalf("expected stored status verbatim, got %s", got)
	}

	trip = tripAt("2025-01-01", "", "10:00", models.TripInProgress)
	if got := DeriveStatus(trip, localTime(2025, 1, 1, 9, 0), grace); got != models.TripInProgress {
		t.Fatalf("expected stored status verbatim, got %s", got)
	}
}

func TestDeriveStatusIsPure(t *testing.T) {
	trip := tripAt("2025-01-01", "08:00", "10:00", models.TripScheduled)
	now := localTime(2025, 1, 1, 9, 0)
	first := DeriveStatus(trip, now, grace)
	for i := 0; i < 5; i++ {
		if got := DeriveStatus(trip, now, grace); got != first {
			t.Fatalf("derivation not stable: %s then %s", first, got)
		}
	}
}

func TestReconcileCompletedFlipsOverdueTrips(t *testing.T) {
	now := localTime(2025, 1, 2, 0, 0)
	trips := []models.Trip{
		tripAt("2025-01-01", "08:00", "10:00", models.TripScheduled),
		tripAt("2025-01-01", "08:00", "10:00", models.TripCancelled),
		tripAt("2025-01-05", "08:00", "10:00", models.TripScheduled),
	}

	out, changed := ReconcileCompleted(trips, now, grace)
	if !changed {
		t.Fatal("expected changed=true")
	}
	if out[0].Status != models.TripCompleted {
		t.Fatalf("overdue trip not completed, got %s", out[0].Status)
	}
	if !out[0].UpdatedAt.Equal(now) {
		t.Fatalf("updated_at not stamped, got %s", out[0].UpdatedAt)
	}
	if out[1].Status != models.TripCancelled {
		t.Fatalf("cancelled trip must stay cancelled, got %s", out[1].Status)
	}
	if out[2].Status != models.TripScheduled {
		t.Fatalf("future trip must stay scheduled, got %s", out[2].Status)
	}
}

func TestReconcileCompletedIdempotent(t *testing.T) {
	now := localTime(2025, 1, 2, 0, 0)
	trips := []models.Trip{
		tripAt("2025-01-01", "08:00", "10:00", models.TripScheduled),
		tripAt("2025-01-01", "12:00", "14:00", models.TripInProgress),
	}

	first, changed := ReconcileCompleted(trips, now, grace)
	if !changed {
		t.Fatal("first sweep should change something")
	}

	second, changed := ReconcileCompleted(first, now, grace)
	if changed {
		t.Fatal("second sweep with same now must yield changed=false")
	}
	for i := range first {
		if second[i] != first[i] {
			t.Fatalf("second sweep mutated row %d: %+v vs %+v", i, second[i], first[i])
		}
	}
}
