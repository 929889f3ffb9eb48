package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusbus/internal/domain"

	"github.com/gin-gonic/gin"
)

func captureResponse(t *testing.T, fn func(c *gin.Context)) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	fn(c)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return w.Code, body
}

func TestErrorPayloadShapeIsUniform(t *testing.T) {
	bindStatus, bindBody := captureResponse(t, func(c *gin.Context) {
		RespondError(c, http.StatusBadRequest, "invalid payload", errors.New("unexpected EOF"))
	})
	if bindStatus != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bindStatus)
	}

	domainStatus, domainBody := captureResponse(t, func(c *gin.Context) {
		RespondDomainError(c, domain.NotFoundError{Resource: "trip"})
	})
	if domainStatus != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", domainStatus)
	}

	// Both responders must emit the same keys so clients parse one shape.
	for _, key := range []string{"error", "code", "message"} {
		if _, ok := bindBody[key]; !ok {
			t.Fatalf("bind error payload missing %q: %v", key, bindBody)
		}
		if _, ok := domainBody[key]; !ok {
			t.Fatalf("domain error payload missing %q: %v", key, domainBody)
		}
	}
}

func TestDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ValidationError{Field: "status", Msg: "required"}, http.StatusBadRequest},
		{domain.NotFoundError{Resource: "booking"}, http.StatusNotFound},
		{domain.ConflictError{Resource: "trip", Msg: "already cancelled"}, http.StatusConflict},
		{domain.InternalError{Msg: "boom"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := captureResponse(t, func(c *gin.Context) {
			RespondDomainError(c, tc.err)
		})
		if status != tc.status {
			t.Fatalf("%T mapped to %d, want %d", tc.err, status, tc.status)
		}
	}
}
