package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/zapshare/booking-service/internal/metrics"
	"github.com/zapshare/booking-service/internal/models"
	"github.com/zapshare/booking-service/internal/repository"
)

// EventPublisher fans persisted notifications out to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Notifier creates the durable notification record for one lifecycle event.
type Notifier interface {
	Notify(ctx context.Context, booking *models.Booking, recipientID string, kind models.NotificationType) (*models.Notification, error)
}

// NotificationEvent is the broker payload published after a notification is stored.
type NotificationEvent struct {
	NotificationID string                  `json:"notification_id"`
	BookingID      string                  `json:"booking_id"`
	UserID         string                  `json:"user_id"`
	Type           models.NotificationType `json:"type"`
	ChargerID      string                  `json:"charger_id"`
	TimeStart      time.Time               `json:"time_start"`
	TimeEnd        time.Time               `json:"time_end"`
}

type notifier struct {
	repo      repository.NotificationRepository
	publisher EventPublisher
}

// NewNotifier returns a Notifier; publisher may be nil when no broker is configured.
func NewNotifier(repo repository.NotificationRepository, publisher EventPublisher) Notifier {
	return &notifier{repo: repo, publisher: publisher}
}

func RoutingKey(kind models.NotificationType) string {
	return "notification." + strings.ToLower(string(kind))
}

func (n *notifier) Notify(ctx context.Context, booking *models.Booking, recipientID string, kind models.NotificationType) (*models.Notification, error) {
	notification := &models.Notification{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		UserID:    recipientID,
		Type:      kind,
		Read:      false,
	}
	if err := n.repo.Create(ctx, notification); err != nil {
		log.Printf("[Notifier] failed to save %s notification for booking %s: %v", kind, booking.ID, err)
		return nil, storeFailure("save notification", err)
	}
	metrics.RecordNotification(string(kind))

	// Delivery is best effort; the stored record is the source of truth.
	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, RoutingKey(kind), NotificationEvent{
			NotificationID: notification.ID,
			BookingID:      booking.ID,
			UserID:         recipientID,
			Type:           kind,
			ChargerID:      booking.ChargerID,
			TimeStart:      booking.TimeStart,
			TimeEnd:        booking.TimeEnd,
		}); err != nil {
			log.Printf("[Notifier] failed to publish %s for booking %s: %v", kind, booking.ID, err)
		}
	}

	return notification, nil
}
