package models

import "time"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

func ValidAttendanceStatus(s string) bool {
	switch AttendanceStatus(s) {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// Attendance rows form an append-only log; nothing ever updates one. For a
// given (student, trip) the row with the greatest RecordedAt is authoritative
// for display.
type Attendance struct {
	ID         int64            `json:"id"`
	StudentID  int64            `json:"studentId"`
	TripID     int64            `json:"tripId"`
	Status     AttendanceStatus `json:"status"`
	RecordedAt time.Time        `json:"recordedAt"`
}
