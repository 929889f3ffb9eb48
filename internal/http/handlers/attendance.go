package handlers

import (
	"net/http"
	"time"

	"campusbus/internal/domain/models"
	"campusbus/internal/utils"

	"github.com/gin-gonic/gin"
)

type recordAttendanceRequest struct {
	StudentID int64  `json:"studentId"`
	TripID    int64  `json:"tripId"`
	Status    string `json:"status"`
	// Timestamp is optional "YYYY-MM-DD HH:MM"; empty means now.
	Timestamp string `json:"timestamp"`
}

// POST /api/attendance
//
// Appends to the attendance log. Absent records cascade into the student's
// booking; the handler only reports the appended record.
func PostAttendance(c *gin.Context) {
	var req recordAttendanceRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	at := time.Now()
	if req.Timestamp != "" {
		parsed, err := time.ParseInLocation("2006-01-02 15:04", req.Timestamp, time.Local)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "timestamp must be YYYY-MM-DD HH:MM", err)
			return
		}
		at = parsed
	}

	rec, err := attendanceService(c).Record(req.StudentID, req.TripID, models.AttendanceStatus(req.Status), at)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "attendance recorded",
		"attendance": rec,
		"recordedAt": utils.FormatDateTime(rec.RecordedAt),
	})
}
