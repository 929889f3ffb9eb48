package handlers

import (
	"net/http"
	"strings"
	"time"

	"campusbus/internal/domain/models"
	"campusbus/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/trips?driverId&status&date&routeId&busId
//
// Listing is also where the completion sweep runs: overdue trips flip to
// completed before the response is built, so clients never see a stale
// "scheduled" row for a trip whose arrival passed.
func GetTrips(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	if status != "" && !models.ValidTripStatus(status) {
		RespondError(c, http.StatusBadRequest, "unknown status filter", nil)
		return
	}

	filter := models.TripFilter{
		DriverID: queryInt64(c, "driverId"),
		RouteID:  queryInt64(c, "routeId"),
		BusID:    queryInt64(c, "busId"),
		Date:     strings.TrimSpace(c.Query("date")),
		Status:   status,
	}

	views, err := tripService(c).List(filter, time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": views, "count": len(views)})
}

// POST /api/trips
func CreateTrip(c *gin.Context) {
	var in services.CreateTripInput
	if !BindJSONOrError(c, &in) {
		return
	}

	trip, err := tripService(c).Create(in, time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "trip created", "trip": trip})
}

// GET /api/trips/:id
func GetTripByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := tripService(c).Get(id, time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": view})
}

// PUT /api/trips/:id/cancel
func CancelTrip(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	trip, err := tripService(c).Cancel(id, time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip cancelled", "trip": trip})
}

// GET /api/trips/:id/manifest
func GetTripManifest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	pdf, filename, err := manifestService(c).GenerateTripManifest(id, time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GET /api/trips/:id/attendance
func GetTripAttendance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	records, err := attendanceService(c).ListByTrip(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": records, "count": len(records)})
}
