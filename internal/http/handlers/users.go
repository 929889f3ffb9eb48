package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"campusbus/internal/domain"
	"campusbus/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/users?role
func GetUsers(c *gin.Context) {
	users, err := repositories.UserRepository{}.List(strings.TrimSpace(c.Query("role")))
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "failed to load users", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// GET /api/users/:id
func GetUserByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := repositories.UserRepository{}.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondDomainError(c, domain.NotFoundError{Resource: "user", Err: err})
			return
		}
		RespondDomainError(c, domain.InternalError{Msg: "failed to load user", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GET /api/routes
func GetRoutes(c *gin.Context) {
	routes, err := repositories.RouteRepository{}.List()
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "failed to load routes", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "count": len(routes)})
}

// GET /api/buses
func GetBuses(c *gin.Context) {
	buses, err := repositories.BusRepository{}.List()
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "failed to load buses", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buses": buses, "count": len(buses)})
}
