package models

import "time"

type TripStatus string

const (
	TripScheduled  TripStatus = "scheduled"
	TripInProgress TripStatus = "in-progress"
	TripDelayed    TripStatus = "delayed"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// IsTerminal reports whether no transition may leave the status.
func (s TripStatus) IsTerminal() bool {
	return s == TripCompleted || s == TripCancelled
}

func ValidTripStatus(s string) bool {
	switch TripStatus(s) {
	case TripScheduled, TripInProgress, TripDelayed, TripCompleted, TripCancelled:
		return true
	}
	return false
}

// Trip is the one entity whose lifecycle this service owns. Status holds the
// persisted status; the effective status shown to callers is derived from the
// clock on every read.
type Trip struct {
	ID            int64      `json:"id"`
	TripDate      string     `json:"tripDate"`      // YYYY-MM-DD
	DepartureTime string     `json:"departureTime"` // HH:MM
	ArrivalTime   string     `json:"arrivalTime"`   // HH:MM
	RouteID       int64      `json:"routeId"`
	BusID         int64      `json:"busId"`
	DriverID      int64      `json:"driverId"`
	SupervisorID  int64      `json:"supervisorId"`
	Status        TripStatus `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TripFilter narrows trip listings. Status matches the derived status, not the
// stored one. Zero values mean "no filter".
type TripFilter struct {
	DriverID int64
	Status   string
	Date     string
	RouteID  int64
	BusID    int64
}
