package models

import "time"

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	TripID    int64     `json:"tripId,omitempty"`
	BusID     int64     `json:"busId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Broadcast target kinds. Resolution to concrete user ids happens once, at
// broadcast time; later role changes do not reflow already-sent notifications.
const (
	TargetAll  = "all"
	TargetRole = "role"
	TargetIDs  = "ids"
)

type BroadcastTarget struct {
	Kind string  `json:"kind"`
	Role string  `json:"role,omitempty"`
	IDs  []int64 `json:"ids,omitempty"`
}
