package queue

// NotificationCreatedEvent is published once per persisted notification row so
// downstream delivery channels (mail, push) can pick it up later.
type NotificationCreatedEvent struct {
	NotificationID int64  `json:"notification_id"`
	UserID         int64  `json:"user_id"`
	Title          string `json:"title"`
	Type           string `json:"type"`
	TripID         int64  `json:"trip_id,omitempty"`
	CreatedAt      string `json:"created_at"`
}
