package handlers

import (
	"net/http"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/repositories"

	"github.com/gin-gonic/gin"
)

// PUT /api/bookings/:id/absent
//
// Marks the booking's student absent. Cancels the booking and notifies the
// student exactly once; repeating the call succeeds without a second
// notification.
func MarkBookingAbsent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := attendanceService(c).MarkAbsent(id, time.Now()); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student marked absent"})
}

// PUT /api/bookings/:id/present
func MarkBookingPresent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := attendanceService(c).MarkPresent(id, time.Now()); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "student marked present"})
}

// GET /api/bookings?tripId
func GetBookings(c *gin.Context) {
	tripID := queryInt64(c, "tripId")
	if tripID <= 0 {
		RespondError(c, http.StatusBadRequest, "tripId query param required", nil)
		return
	}

	bookings, err := repositories.BookingRepository{}.ListByTrip(tripID)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "failed to load bookings", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}
