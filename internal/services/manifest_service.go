package services

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ManifestService renders the printable passenger manifest for a trip.
type ManifestService struct {
	TripRepo       repositories.TripRepository
	BookingRepo    repositories.BookingRepository
	AttendanceRepo repositories.AttendanceRepository
	RouteRepo      repositories.RouteRepository
	BusRepo        repositories.BusRepository
	UserRepo       repositories.UserRepository
	DelayGrace     time.Duration
	RequestID      string
}

type manifestData struct {
	Trip       models.Trip
	Status     models.TripStatus
	RouteDesc  string
	BusCode    string
	DriverName string
	Rows       []manifestRow
}

type manifestRow struct {
	StudentName   string
	BookingStatus models.BookingStatus
	Attendance    models.AttendanceStatus
}

func (s ManifestService) GenerateTripManifest(tripID int64, now time.Time) ([]byte, string, error) {
	trip, err := s.TripRepo.GetByID(tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.NotFoundError{Resource: "trip", Err: err}
		}
		return nil, "", domain.InternalError{Msg: "failed to load trip", Err: err}
	}

	data := manifestData{
		Trip:   trip,
		Status: DeriveStatus(trip, now, s.DelayGrace),
	}

	// Display enrichment only; a missing route or bus never blocks the PDF.
	if route, err := s.RouteRepo.GetByID(trip.RouteID); err == nil {
		data.RouteDesc = fmt.Sprintf("%s (%s - %s)", route.Name, utils.Safe(route.Origin, "?"), utils.Safe(route.Destination, "?"))
	}
	if bus, err := s.BusRepo.GetByID(trip.BusID); err == nil {
		data.BusCode = bus.Code
	}
	if driver, err := s.UserRepo.GetByID(trip.DriverID); err == nil {
		data.DriverName = driver.Name
	}

	bookings, err := s.BookingRepo.ListByTrip(tripID)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to load bookings", Err: err}
	}

	var latest map[int64]models.Attendance
	if records, err := s.AttendanceRepo.ListByTrip(tripID); err == nil {
		latest = LatestAttendance(records)
	}

	for _, b := range bookings {
		row := manifestRow{BookingStatus: b.Status}
		if student, err := s.UserRepo.GetByID(b.StudentID); err == nil {
			row.StudentName = student.Name
		} else {
			row.StudentName = fmt.Sprintf("student #%d", b.StudentID)
		}
		if rec, ok := latest[b.StudentID]; ok {
			row.Attendance = rec.Status
		}
		data.Rows = append(data.Rows, row)
	}

	utils.LogEvent(s.RequestID, "manifest", "generate", fmt.Sprintf("trip_id=%d passengers=%d", tripID, len(data.Rows)))
	return buildManifestPDF(data)
}

func buildManifestPDF(d manifestData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Manifest", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRIP MANIFEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Trip      : #%d", d.Trip.ID),
		fmt.Sprintf("Date/Time : %s %s-%s", d.Trip.TripDate, d.Trip.DepartureTime, d.Trip.ArrivalTime),
		fmt.Sprintf("Route     : %s", utils.Safe(d.RouteDesc, "-")),
		fmt.Sprintf("Bus       : %s", utils.Safe(d.BusCode, "-")),
		fmt.Sprintf("Driver    : %s", utils.Safe(d.DriverName, "-")),
		fmt.Sprintf("Status    : %s", d.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(90, 8, "Passenger")
	pdf.Cell(45, 8, "Booking")
	pdf.Cell(45, 8, "Attendance")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	if len(d.Rows) == 0 {
		pdf.Cell(0, 7, "No bookings for this trip.")
		pdf.Ln(7)
	}
	for _, row := range d.Rows {
		pdf.Cell(90, 7, utils.Safe(row.StudentName, "-"))
		pdf.Cell(45, 7, string(row.BookingStatus))
		pdf.Cell(45, 7, utils.Safe(string(row.Attendance), "-"))
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("MANIFEST_%d_%s.pdf", d.Trip.ID, d.Trip.TripDate)
	return buf.Bytes(), filename, nil
}
