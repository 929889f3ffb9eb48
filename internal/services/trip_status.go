package services

import (
	"time"

	"campusbus/internal/domain/models"
	"campusbus/internal/utils"
)

// DeriveStatus computes the effective status a trip should display at the
// given instant. It is pure: no storage access, same inputs, same output.
//
// Rules, in order:
//   - completed and cancelled are terminal; the stored status wins outright.
//   - unparseable date/time fields fall back to the stored status verbatim.
//   - an arrival clock earlier than departure means the trip spans midnight,
//     so the arrival instant shifts one day forward.
//   - before departure the trip is scheduled; past arrival it is completed.
//   - between the two it is in-progress, except during the first delayGrace
//     after departure while the stored status is still "scheduled": no start
//     was recorded by the time the bus was due out, so the trip derives as
//     delayed. Beyond the grace window it is presumed under way. A zero grace
//     disables the trigger.
func DeriveStatus(t models.Trip, now time.Time, delayGrace time.Duration) models.TripStatus {
	if t.Status.IsTerminal() {
		return t.Status
	}

	departure, err := utils.CombineDateTime(t.TripDate, t.DepartureTime)
	if err != nil {
		return t.Status
	}
	arrival, err := utils.CombineDateTime(t.TripDate, t.ArrivalTime)
	if err != nil {
		return t.Status
	}
	if arrival.Before(departure) {
		arrival = arrival.Add(24 * time.Hour)
	}

	switch {
	case now.Before(departure):
		return models.TripScheduled
	case now.Before(arrival):
		if t.Status == models.TripScheduled && delayGrace > 0 && now.Before(departure.Add(delayGrace)) {
			return models.TripDelayed
		}
		return models.TripInProgress
	default:
		return models.TripCompleted
	}
}

// ReconcileCompleted sweeps the collection and flips the stored status to
// completed wherever the derived status already is, skipping terminal rows.
// It returns the (possibly) mutated collection and whether anything changed;
// callers persist only when changed is true. Running it twice with the same
// now yields changed=false the second time.
func ReconcileCompleted(trips []models.Trip, now time.Time, delayGrace time.Duration) ([]models.Trip, bool) {
	changed := false
	for i := range trips {
		if trips[i].Status.IsTerminal() {
			continue
		}
		if DeriveStatus(trips[i], now, delayGrace) == models.TripCompleted {
			trips[i].Status = models.TripCompleted
			trips[i].UpdatedAt = now
			changed = true
		}
	}
	return trips, changed
}
