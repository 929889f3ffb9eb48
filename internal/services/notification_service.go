package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusbus/internal/domain"
	"campusbus/internal/domain/models"
	"campusbus/internal/queue"
	"campusbus/internal/repositories"
	"campusbus/internal/utils"

	"github.com/redis/go-redis/v9"
)

const unreadCacheTTL = 30 * time.Second

// NotificationService persists per-recipient notification rows and resolves
// broadcast targets. Delivery beyond the row itself (the queue event) is
// best-effort: failures are logged and never surfaced to the triggering
// operation.
type NotificationService struct {
	NotificationRepo repositories.NotificationRepository
	UserRepo         repositories.UserRepository
	RouteRepo        repositories.RouteRepository
	BusRepo          repositories.BusRepository

	// Cache backs the unread counter; nil falls back to SQL on every call.
	Cache *redis.Client
	// Publish emits a queue event per created row; nil disables publishing.
	Publish func(context.Context, queue.NotificationCreatedEvent) error

	RequestID string
}

// Broadcast resolves the target to concrete recipients once, at call time,
// and persists one unread row per recipient so each keeps independent read
// state. Returns how many rows were created.
func (s NotificationService) Broadcast(title, message, ntype string, target models.BroadcastTarget, now time.Time) (int, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, domain.ValidationError{Field: "title", Msg: "required"}
	}
	if strings.TrimSpace(message) == "" {
		return 0, domain.ValidationError{Field: "message", Msg: "required"}
	}
	if strings.TrimSpace(ntype) == "" {
		ntype = "broadcast"
	}

	recipients, err := s.resolveTarget(target)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, userID := range recipients {
		n := models.Notification{
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      ntype,
			Read:      false,
			CreatedAt: now,
		}
		if err := s.create(n); err != nil {
			utils.LogEvent(s.RequestID, "notification", "broadcast_row_error", fmt.Sprintf("user_id=%d err=%v", userID, err))
			continue
		}
		created++
	}

	utils.LogEvent(s.RequestID, "notification", "broadcast", fmt.Sprintf("target=%s recipients=%d created=%d", target.Kind, len(recipients), created))
	return created, nil
}

// NotifyTripCreated sends the trip summary to the assigned driver and
// supervisor. Enrichment lookups that fail leave their placeholder empty;
// nothing here may abort trip creation, so every error is swallowed after
// logging.
func (s NotificationService) NotifyTripCreated(trip models.Trip, now time.Time) {
	var routeDesc, busDesc string
	if route, err := s.RouteRepo.GetByID(trip.RouteID); err == nil {
		if route.Origin != "" || route.Destination != "" {
			routeDesc = route.Origin + " - " + route.Destination
		} else {
			routeDesc = route.Name
		}
	}
	if bus, err := s.BusRepo.GetByID(trip.BusID); err == nil {
		busDesc = bus.Code
	}

	message := fmt.Sprintf("You are assigned to trip #%d: bus %s, route %s, %s %s-%s.",
		trip.ID, utils.Safe(busDesc, "?"), utils.Safe(routeDesc, "?"),
		trip.TripDate, trip.DepartureTime, trip.ArrivalTime)

	for _, userID := range []int64{trip.DriverID, trip.SupervisorID} {
		if userID <= 0 {
			continue
		}
		n := models.Notification{
			UserID:    userID,
			Title:     "New trip assignment",
			Message:   message,
			Type:      "trip",
			TripID:    trip.ID,
			BusID:     trip.BusID,
			CreatedAt: now,
		}
		if err := s.create(n); err != nil {
			utils.LogEvent(s.RequestID, "notification", "trip_created_error", fmt.Sprintf("user_id=%d trip_id=%d err=%v", userID, trip.ID, err))
		}
	}
}

// NotifyBookingCancelled tells the student their booking was cancelled after
// being marked absent. Called only when the cancellation actually changed the
// booking, so at most one notification per cancellation.
func (s NotificationService) NotifyBookingCancelled(booking models.Booking, now time.Time) {
	n := models.Notification{
		UserID:    booking.StudentID,
		Title:     "Booking cancelled",
		Message:   fmt.Sprintf("Your booking #%d was cancelled because you were marked absent for trip #%d.", booking.ID, booking.TripID),
		Type:      "booking",
		TripID:    booking.TripID,
		CreatedAt: now,
	}
	if err := s.create(n); err != nil {
		utils.LogEvent(s.RequestID, "notification", "booking_cancelled_error", fmt.Sprintf("booking_id=%d err=%v", booking.ID, err))
	}
}

func (s NotificationService) ListByUser(userID int64) ([]models.Notification, error) {
	out, err := s.NotificationRepo.ListByUser(userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to load notifications", Err: err}
	}
	return out, nil
}

// UnreadCount returns the user's unread total, served from the cache when one
// is wired. Cache errors degrade to the SQL count.
func (s NotificationService) UnreadCount(userID int64) (int64, error) {
	ctx := context.Background()
	key := unreadCacheKey(userID)

	if s.Cache != nil {
		if n, err := s.Cache.Get(ctx, key).Int64(); err == nil {
			return n, nil
		}
	}

	n, err := s.NotificationRepo.CountUnread(userID)
	if err != nil {
		return 0, domain.InternalError{Msg: "failed to count notifications", Err: err}
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, n, unreadCacheTTL).Err(); err != nil {
			utils.LogEvent(s.RequestID, "notification", "cache_set_error", err.Error())
		}
	}
	return n, nil
}

func (s NotificationService) MarkAllRead(userID int64) (int64, error) {
	n, err := s.NotificationRepo.MarkAllRead(userID)
	if err != nil {
		return 0, domain.InternalError{Msg: "failed to mark notifications read", Err: err}
	}
	s.invalidateUnread(userID)
	utils.LogEvent(s.RequestID, "notification", "mark_all_read", fmt.Sprintf("user_id=%d rows=%d", userID, n))
	return n, nil
}

// SetRead flips one notification's read flag. Idempotent: writing the value
// the row already holds is success, not an error. The row is loaded first so
// the owner's cached unread count can be dropped.
func (s NotificationService) SetRead(id int64, read bool) error {
	n, err := s.getByID(id)
	if err != nil {
		return err
	}
	if err := s.NotificationRepo.SetRead(id, read); err != nil {
		return domain.InternalError{Msg: "failed to update notification", Err: err}
	}
	s.invalidateUnread(n.UserID)
	return nil
}

func (s NotificationService) Delete(id int64) error {
	n, err := s.getByID(id)
	if err != nil {
		return err
	}
	if err := s.NotificationRepo.Delete(id); err != nil {
		return domain.InternalError{Msg: "failed to delete notification", Err: err}
	}
	s.invalidateUnread(n.UserID)
	return nil
}

func (s NotificationService) getByID(id int64) (models.Notification, error) {
	n, err := s.NotificationRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Notification{}, domain.NotFoundError{Resource: "notification", Err: err}
		}
		return models.Notification{}, domain.InternalError{Msg: "failed to load notification", Err: err}
	}
	return n, nil
}

func (s NotificationService) resolveTarget(target models.BroadcastTarget) ([]int64, error) {
	switch target.Kind {
	case models.TargetAll:
		ids, err := s.UserRepo.ListIDs()
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to resolve recipients", Err: err}
		}
		return ids, nil
	case models.TargetRole:
		if strings.TrimSpace(target.Role) == "" {
			return nil, domain.ValidationError{Field: "target.role", Msg: "required"}
		}
		ids, err := s.UserRepo.ListIDsByRole(target.Role)
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to resolve recipients", Err: err}
		}
		return ids, nil
	case models.TargetIDs:
		if len(target.IDs) == 0 {
			return nil, domain.ValidationError{Field: "target.ids", Msg: "required"}
		}
		ids, err := s.UserRepo.FilterExistingIDs(target.IDs)
		if err != nil {
			return nil, domain.InternalError{Msg: "failed to resolve recipients", Err: err}
		}
		return ids, nil
	default:
		return nil, domain.ValidationError{Field: "target.kind", Msg: "must be all, role or ids"}
	}
}

// create persists one row, emits the queue event, and drops the recipient's
// cached unread counter.
func (s NotificationService) create(n models.Notification) error {
	id, err := s.NotificationRepo.Insert(n)
	if err != nil {
		return err
	}

	if s.Publish != nil {
		ev := queue.NotificationCreatedEvent{
			NotificationID: id,
			UserID:         n.UserID,
			Title:          n.Title,
			Type:           n.Type,
			TripID:         n.TripID,
			CreatedAt:      utils.FormatDateTime(n.CreatedAt),
		}
		// Best-effort: the publisher logs its own failures.
		_ = s.Publish(context.Background(), ev)
	}

	s.invalidateUnread(n.UserID)
	return nil
}

func (s NotificationService) invalidateUnread(userID int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(context.Background(), unreadCacheKey(userID)).Err(); err != nil {
		utils.LogEvent(s.RequestID, "notification", "cache_del_error", err.Error())
	}
}

func unreadCacheKey(userID int64) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}
