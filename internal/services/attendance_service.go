package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"
)

// AttendanceService owns the append-only attendance log and the absence
// cascade: recording an absence cancels the student's booking and notifies
// them, exactly once.
type AttendanceService struct {
	AttendanceRepo repositories.AttendanceRepository
	BookingRepo    repositories.BookingRepository
	Notifier       NotificationService
	RequestID      string
}

// Record appends an attendance record. Inserts are never rejected as
// duplicates; the latest timestamp wins for display, so retrying is safe.
// An absent record additionally resolves the student's booking on that trip
// and runs the cancellation cascade; with no booking the record simply stands.
func (s AttendanceService) Record(studentID, tripID int64, status models.AttendanceStatus, at time.Time) (models.Attendance, error) {
	if studentID <= 0 {
		return models.Attendance{}, domain.ValidationError{Field: "studentId", Msg: "required"}
	}
	if tripID <= 0 {
		return models.Attendance{}, domain.ValidationError{Field: "tripId", Msg: "required"}
	}
	if !models.ValidAttendanceStatus(string(status)) {
		return models.Attendance{}, domain.ValidationError{Field: "status", Msg: "must be present, absent or late"}
	}
	if at.IsZero() {
		at = time.Now()
	}

	rec := models.Attendance{StudentID: studentID, TripID: tripID, Status: status, RecordedAt: at}
	id, err := s.AttendanceRepo.Insert(rec)
	if err != nil {
		return models.Attendance{}, domain.InternalError{Msg: "failed to record attendance", Err: err}
	}
	rec.ID = id

	utils.LogEvent(s.RequestID, "attendance", "recorded", fmt.Sprintf("student_id=%d trip_id=%d status=%s", studentID, tripID, status))

	if status == models.AttendanceAbsent {
		booking, err := s.BookingRepo.GetByTripStudent(tripID, studentID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return rec, domain.InternalError{Msg: "failed to resolve booking", Err: err}
			}
			// No booking to cancel; the absence record stands on its own.
			return rec, nil
		}
		if err := s.cancelBooking(booking, at); err != nil {
			return rec, err
		}
	}

	return rec, nil
}

// MarkAbsent appends an absent record for the booking's student and trip, then
// cancels the booking and notifies the student. The cancellation is a guarded
// update, so calling this again on an already-cancelled booking appends a new
// log row but produces no second cancellation and no second notification.
func (s AttendanceService) MarkAbsent(bookingID int64, now time.Time) error {
	booking, err := s.loadBooking(bookingID)
	if err != nil {
		return err
	}

	rec := models.Attendance{StudentID: booking.StudentID, TripID: booking.TripID, Status: models.AttendanceAbsent, RecordedAt: now}
	if _, err := s.AttendanceRepo.Insert(rec); err != nil {
		return domain.InternalError{Msg: "failed to record absence", Err: err}
	}

	return s.cancelBooking(booking, now)
}

// MarkPresent appends a present record only; nothing cascades.
func (s AttendanceService) MarkPresent(bookingID int64, now time.Time) error {
	booking, err := s.loadBooking(bookingID)
	if err != nil {
		return err
	}

	rec := models.Attendance{StudentID: booking.StudentID, TripID: booking.TripID, Status: models.AttendancePresent, RecordedAt: now}
	if _, err := s.AttendanceRepo.Insert(rec); err != nil {
		return domain.InternalError{Msg: "failed to record attendance", Err: err}
	}

	utils.LogEvent(s.RequestID, "attendance", "marked_present", fmt.Sprintf("booking_id=%d", bookingID))
	return nil
}

// ListByTrip returns the authoritative (latest per student) attendance rows
// for a trip, ordered by student id.
func (s AttendanceService) ListByTrip(tripID int64) ([]models.Attendance, error) {
	records, err := s.AttendanceRepo.ListByTrip(tripID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to load attendance", Err: err}
	}
	latest := LatestAttendance(records)

	out := []models.Attendance{}
	for _, rec := range records {
		if latest[rec.StudentID].ID == rec.ID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s AttendanceService) loadBooking(bookingID int64) (models.Booking, error) {
	booking, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, domain.InternalError{Msg: "failed to load booking", Err: err}
	}
	return booking, nil
}

func (s AttendanceService) cancelBooking(booking models.Booking, now time.Time) error {
	changed, err := s.BookingRepo.CancelIfActive(booking.ID, now)
	if err != nil {
		return domain.InternalError{Msg: "failed to cancel booking", Err: err}
	}
	if !changed {
		// Already cancelled: idempotent success, no second notification.
		utils.LogEvent(s.RequestID, "attendance", "cancel_noop", fmt.Sprintf("booking_id=%d", booking.ID))
		return nil
	}

	utils.LogEvent(s.RequestID, "attendance", "booking_cancelled", fmt.Sprintf("booking_id=%d student_id=%d trip_id=%d", booking.ID, booking.StudentID, booking.TripID))
	s.Notifier.NotifyBookingCancelled(booking, now)
	return nil
}

// LatestAttendance reduces an append-only log to the authoritative record per
// student: the one with the greatest timestamp, later insert winning a tie.
func LatestAttendance(records []models.Attendance) map[int64]models.Attendance {
	latest := map[int64]models.Attendance{}
	for _, rec := range records {
		cur, ok := latest[rec.StudentID]
		if !ok || !rec.RecordedAt.Before(cur.RecordedAt) {
			latest[rec.StudentID] = rec
		}
	}
	return latest
}
