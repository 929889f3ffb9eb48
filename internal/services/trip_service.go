package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"
)

// TripService coordinates the trip lifecycle: the lazy completion sweep on
// reads, derived-status views, creation with notification fan-out, and
// explicit cancellation.
type TripService struct {
	TripRepo       repositories.TripRepository
	BookingRepo    repositories.BookingRepository
	AttendanceRepo repositories.AttendanceRepository
	RouteRepo      repositories.RouteRepository
	BusRepo        repositories.BusRepository
	UserRepo       repositories.UserRepository
	Notifier       NotificationService
	DelayGrace     time.Duration
	RequestID      string
}

// TripView is the enriched trip returned on read paths. Status carries the
// derived status; StoredStatus the persisted one. Enrichment fields stay empty
// when a lookup fails; a missing bus name never fails a listing.
type TripView struct {
	ID            int64             `json:"id"`
	TripDate      string            `json:"tripDate"`
	DepartureTime string            `json:"departureTime"`
	ArrivalTime   string            `json:"arrivalTime"`
	RouteID       int64             `json:"routeId"`
	BusID         int64             `json:"busId"`
	DriverID      int64             `json:"driverId"`
	SupervisorID  int64             `json:"supervisorId"`
	Status        models.TripStatus `json:"status"`
	StoredStatus  models.TripStatus `json:"storedStatus"`

	RouteName        string `json:"routeName,omitempty"`
	RouteOrigin      string `json:"routeOrigin,omitempty"`
	RouteDestination string `json:"routeDestination,omitempty"`
	BusCode          string `json:"busCode,omitempty"`
	BusPlate         string `json:"busPlate,omitempty"`
	DriverName       string `json:"driverName,omitempty"`
	SupervisorName   string `json:"supervisorName,omitempty"`

	BookingCount      int `json:"bookingCount"`
	ConfirmedBookings int `json:"confirmedBookings"`
	PresentCount      int `json:"presentCount"`
	AbsentCount       int `json:"absentCount"`
	LateCount         int `json:"lateCount"`
}

type CreateTripInput struct {
	TripDate      string `json:"tripDate"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	RouteID       int64  `json:"routeId"`
	BusID         int64  `json:"busId"`
	DriverID      int64  `json:"driverId"`
	SupervisorID  int64  `json:"supervisorId"`
}

// List runs the lazy completion sweep, then returns derived, enriched views
// matching the filter. The sweep persists per changed row through a guarded
// update, so a racing sweep cannot overwrite a cancellation.
func (s TripService) List(filter models.TripFilter, now time.Time) ([]TripView, error) {
	trips, err := s.TripRepo.ListAll()
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to load trips", Err: err}
	}

	before := make([]models.TripStatus, len(trips))
	for i := range trips {
		before[i] = trips[i].Status
	}

	trips, changed := ReconcileCompleted(trips, now, s.DelayGrace)
	if changed {
		for i := range trips {
			if trips[i].Status == before[i] {
				continue
			}
			if _, err := s.TripRepo.CompleteIfActive(trips[i].ID, now); err != nil {
				utils.LogEvent(s.RequestID, "trip", "autocomplete_error", fmt.Sprintf("trip_id=%d err=%v", trips[i].ID, err))
			}
		}
		utils.LogEvent(s.RequestID, "trip", "autocomplete", fmt.Sprintf("reconciled=%d", countChanged(before, trips)))
	}

	views := []TripView{}
	for _, t := range trips {
		v := s.buildView(t, now)
		if !matchesFilter(v, filter) {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func (s TripService) Get(id int64, now time.Time) (TripView, error) {
	t, err := s.TripRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TripView{}, domain.NotFoundError{Resource: "trip", Err: err}
		}
		return TripView{}, domain.InternalError{Msg: "failed to load trip", Err: err}
	}
	return s.buildView(t, now), nil
}

// Create validates and persists a new trip, then fans out the creation
// notifications. Notification failures are logged and swallowed; the trip
// stands regardless.
func (s TripService) Create(in CreateTripInput, now time.Time) (models.Trip, error) {
	if _, err := utils.ParseDate(in.TripDate); err != nil {
		return models.Trip{}, domain.ValidationError{Field: "tripDate", Msg: "must be YYYY-MM-DD"}
	}
	if _, err := utils.CombineDateTime(in.TripDate, in.DepartureTime); err != nil {
		return models.Trip{}, domain.ValidationError{Field: "departureTime", Msg: "must be HH:MM"}
	}
	if _, err := utils.CombineDateTime(in.TripDate, in.ArrivalTime); err != nil {
		return models.Trip{}, domain.ValidationError{Field: "arrivalTime", Msg: "must be HH:MM"}
	}
	if in.RouteID <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "routeId", Msg: "required"}
	}
	if in.BusID <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "busId", Msg: "required"}
	}
	if in.DriverID <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "driverId", Msg: "required"}
	}

	trip := models.Trip{
		TripDate:      strings.TrimSpace(in.TripDate),
		DepartureTime: strings.TrimSpace(in.DepartureTime),
		ArrivalTime:   strings.TrimSpace(in.ArrivalTime),
		RouteID:       in.RouteID,
		BusID:         in.BusID,
		DriverID:      in.DriverID,
		SupervisorID:  in.SupervisorID,
		Status:        models.TripScheduled,
	}

	id, err := s.TripRepo.Create(trip)
	if err != nil {
		return models.Trip{}, domain.InternalError{Msg: "failed to create trip", Err: err}
	}
	trip.ID = id
	trip.CreatedAt = now
	trip.UpdatedAt = now

	utils.LogEvent(s.RequestID, "trip", "created", fmt.Sprintf("trip_id=%d driver_id=%d supervisor_id=%d", id, trip.DriverID, trip.SupervisorID))

	s.Notifier.NotifyTripCreated(trip, now)

	return trip, nil
}

// Cancel marks a trip cancelled through a guarded update. Cancelling a trip
// that already reached a terminal status is a conflict, not a silent no-op:
// the caller asked for a transition the state machine forbids.
func (s TripService) Cancel(id int64, now time.Time) (models.Trip, error) {
	if _, err := s.TripRepo.GetByID(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "trip", Err: err}
		}
		return models.Trip{}, domain.InternalError{Msg: "failed to load trip", Err: err}
	}

	changed, err := s.TripRepo.CancelIfActive(id, now)
	if err != nil {
		return models.Trip{}, domain.InternalError{Msg: "failed to cancel trip", Err: err}
	}
	if !changed {
		return models.Trip{}, domain.ConflictError{Resource: "trip", Msg: "already completed or cancelled"}
	}

	utils.LogEvent(s.RequestID, "trip", "cancelled", fmt.Sprintf("trip_id=%d", id))
	return s.TripRepo.GetByID(id)
}

func (s TripService) buildView(t models.Trip, now time.Time) TripView {
	v := TripView{
		ID:            t.ID,
		TripDate:      t.TripDate,
		DepartureTime: t.DepartureTime,
		ArrivalTime:   t.ArrivalTime,
		RouteID:       t.RouteID,
		BusID:         t.BusID,
		DriverID:      t.DriverID,
		SupervisorID:  t.SupervisorID,
		Status:        DeriveStatus(t, now, s.DelayGrace),
		StoredStatus:  t.Status,
	}

	if route, err := s.RouteRepo.GetByID(t.RouteID); err == nil {
		v.RouteName = route.Name
		v.RouteOrigin = route.Origin
		v.RouteDestination = route.Destination
	}
	if bus, err := s.BusRepo.GetByID(t.BusID); err == nil {
		v.BusCode = bus.Code
		v.BusPlate = bus.PlateNumber
	}
	if driver, err := s.UserRepo.GetByID(t.DriverID); err == nil {
		v.DriverName = driver.Name
	}
	if t.SupervisorID > 0 {
		if sup, err := s.UserRepo.GetByID(t.SupervisorID); err == nil {
			v.SupervisorName = sup.Name
		}
	}

	if bookings, err := s.BookingRepo.ListByTrip(t.ID); err == nil {
		v.BookingCount = len(bookings)
		for _, b := range bookings {
			if b.Status == models.BookingConfirmed {
				v.ConfirmedBookings++
			}
		}
	}

	if records, err := s.AttendanceRepo.ListByTrip(t.ID); err == nil {
		for _, a := range LatestAttendance(records) {
			switch a.Status {
			case models.AttendancePresent:
				v.PresentCount++
			case models.AttendanceAbsent:
				v.AbsentCount++
			case models.AttendanceLate:
				v.LateCount++
			}
		}
	}

	return v
}

func matchesFilter(v TripView, f models.TripFilter) bool {
	if f.DriverID > 0 && v.DriverID != f.DriverID {
		return false
	}
	if f.RouteID > 0 && v.RouteID != f.RouteID {
		return false
	}
	if f.BusID > 0 && v.BusID != f.BusID {
		return false
	}
	if f.Date != "" && v.TripDate != f.Date {
		return false
	}
	if f.Status != "" && string(v.Status) != f.Status {
		return false
	}
	return true
}

func countChanged(before []models.TripStatus, after []models.Trip) int {
	n := 0
	for i := range after {
		if after[i].Status != before[i] {
			n++
		}
	}
	return n
}
