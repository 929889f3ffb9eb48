package models

type Route struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Stop is a scheduled pick-up/drop-off point on a route, referenced by bookings.
type Stop struct {
	ID      int64  `json:"id"`
	RouteID int64  `json:"routeId"`
	Name    string `json:"name"`
	Seq     int    `json:"seq"`
}

type Bus struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	PlateNumber string `json:"plateNumber"`
	Capacity    int    `json:"capacity"`
}
