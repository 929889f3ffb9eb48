package services

import (
	"testing"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newNotificationService(t *testing.T) (NotificationService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	svc := NotificationService{
		NotificationRepo: repositories.NotificationRepository{DB: db},
		UserRepo:         repositories.UserRepository{DB: db},
		RouteRepo:        repositories.RouteRepository{DB: db},
		BusRepo:          repositories.BusRepository{DB: db},
	}
	return svc, mock, func() { _ = db.Close() }
}

func TestNotifyTripCreatedFansOutToDriverAndSupervisor(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()

	now := time.Date(2025, 1, 1, 7, 0, 0, 0, time.Local)
	trip := models.Trip{
		ID:            42,
		TripDate:      "2025-01-01",
		DepartureTime: "08:00",
		ArrivalTime:   "10:00",
		RouteID:       2,
		BusID:         4,
		DriverID:      5,
		SupervisorID:  9,
		Status:        models.TripScheduled,
	}

	mock.ExpectQuery("FROM routes WHERE id=").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "origin", "destination"}).
			AddRow(2, "Campus Loop", "Main Gate", "North Dorms"))
	mock.ExpectQuery("FROM buses WHERE id=").WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "plate_number", "capacity"}).
			AddRow(4, "BUS-04", "B 1234 XY", 40))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(int64(5), "New trip assignment", sqlmock.AnyArg(), "trip", false, int64(42), int64(4), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(int64(9), "New trip assignment", sqlmock.AnyArg(), "trip", false, int64(42), int64(4), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))

	svc.NotifyTripCreated(trip, now)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNotifyTripCreatedSurvivesEnrichmentFailure(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()

	trip := models.Trip{ID: 43, TripDate: "2025-01-01", DepartureTime: "08:00", ArrivalTime: "10:00", RouteID: 77, BusID: 88, DriverID: 5}

	// Unknown route and bus: the summary degrades to placeholders, the driver
	// notification is still created, and nothing errors.
	mock.ExpectQuery("FROM routes WHERE id=").WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "origin", "destination"}))
	mock.ExpectQuery("FROM buses WHERE id=").WithArgs(int64(88)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "plate_number", "capacity"}))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(3, 1))

	svc.NotifyTripCreated(trip, time.Now())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBroadcastToRoleCreatesRowPerDriver(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)

	mock.ExpectQuery("SELECT id FROM users WHERE status='active' AND role=").WithArgs("driver").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5).AddRow(6).AddRow(7))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO notifications").
			WillReturnResult(sqlmock.NewResult(int64(10+i), 1))
	}

	created, err := svc.Broadcast("Schedule change", "All routes shift by 10 minutes.", "broadcast",
		models.BroadcastTarget{Kind: models.TargetRole, Role: "driver"}, now)
	if err != nil {
		t.Fatalf("broadcast error: %v", err)
	}
	if created != 3 {
		t.Fatalf("expected 3 notification rows, got %d", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBroadcastToExplicitIDsFiltersUnknownUsers(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()

	mock.ExpectQuery("SELECT id FROM users WHERE status='active' AND id IN").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(20, 1))

	created, err := svc.Broadcast("Hello", "Targeted message.", "info",
		models.BroadcastTarget{Kind: models.TargetIDs, IDs: []int64{5, 9999}}, time.Now())
	if err != nil {
		t.Fatalf("broadcast error: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 row for the one existing user, got %d", created)
	}
}

func TestBroadcastValidation(t *testing.T) {
	svc, _, closeDB := newNotificationService(t)
	defer closeDB()

	if _, err := svc.Broadcast("", "msg", "info", models.BroadcastTarget{Kind: models.TargetAll}, time.Now()); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for empty title, got %v", err)
	}
	if _, err := svc.Broadcast("title", "msg", "info", models.BroadcastTarget{Kind: "nearby"}, time.Now()); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown target kind, got %v", err)
	}
	if _, err := svc.Broadcast("title", "msg", "info", models.BroadcastTarget{Kind: models.TargetRole}, time.Now()); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing role, got %v", err)
	}
}

func TestMarkAllReadInvalidatesNothingWithoutCache(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()

	mock.ExpectExec("UPDATE notifications SET is_read=1 WHERE user_id=").WithArgs(int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := svc.MarkAllRead(21)
	if err != nil {
		t.Fatalf("mark all read error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 rows marked, got %d", n)
	}
}

func notificationRows(id, userID int64, read bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "message", "type", "is_read", "trip_id", "bus_id", "created_at"}).
		AddRow(id, userID, "Schedule change", "All routes shift.", "broadcast", read, 0, 0, time.Now())
}

func withCache(t *testing.T, svc *NotificationService) *miniredis.Miniredis {
	t.Helper()
	srv := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = cache.Close() })
	svc.Cache = cache
	return srv
}

func TestSetReadIsIdempotentAndInvalidatesCache(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()
	srv := withCache(t, &svc)

	if err := srv.Set("notifications:unread:21", "3"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	// The row is already read: the update touches nothing, which is still
	// success, and the owner's cached unread count is dropped regardless.
	mock.ExpectQuery("FROM notifications WHERE id=").WithArgs(int64(9)).
		WillReturnRows(notificationRows(9, 21, true))
	mock.ExpectExec("UPDATE notifications SET is_read=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.SetRead(9, true); err != nil {
		t.Fatalf("repeat mark-read must succeed: %v", err)
	}
	if srv.Exists("notifications:unread:21") {
		t.Fatal("unread cache must be invalidated on mark-read")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetReadMissingNotification(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()

	mock.ExpectQuery("FROM notifications WHERE id=").WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "message", "type", "is_read", "trip_id", "bus_id", "created_at"}))

	if err := svc.SetRead(404, true); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteNotificationInvalidatesCache(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()
	srv := withCache(t, &svc)

	if err := srv.Set("notifications:unread:21", "3"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	mock.ExpectQuery("FROM notifications WHERE id=").WithArgs(int64(9)).
		WillReturnRows(notificationRows(9, 21, false))
	mock.ExpectExec("DELETE FROM notifications").WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.Delete(9); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if srv.Exists("notifications:unread:21") {
		t.Fatal("unread cache must be invalidated on delete")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnreadCountFallsBackToSQL(t *testing.T) {
	svc, mock, closeDB := newNotificationService(t)
	defer closeDB()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM notifications WHERE user_id=").WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := svc.UnreadCount(21)
	if err != nil {
		t.Fatalf("unread count error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 unread, got %d", n)
	}
}
