package consumer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
	"github.com/zapshare/booking-service/internal/models"
)

// DirectoryKeys are the routing keys the directory consumer binds.
var DirectoryKeys = []string{"charger.*", "user.*"}

type ChargerUpserter interface {
	Upsert(ctx context.Context, charger *models.Charger) error
}

type UserUpserter interface {
	Upsert(ctx context.Context, user *models.User) error
}

// DirectoryConsumer keeps the local read-only charger and user copies in
// sync with the services that own them.
type DirectoryConsumer struct {
	chargers   ChargerUpserter
	users      UserUpserter
	retryDelay time.Duration
}

func NewDirectoryConsumer(chargers ChargerUpserter, users UserUpserter) *DirectoryConsumer {
	return &DirectoryConsumer{chargers: chargers, users: users, retryDelay: DefaultRetryDelay}
}

// Start handles msgs until the channel closes or ctx is cancelled.
func (dc *DirectoryConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go run(ctx, "DirectoryConsumer", msgs, dc.handleMessage)
}

func (dc *DirectoryConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	kind, _, _ := strings.Cut(msg.RoutingKey, ".")

	var err error
	switch kind {
	case "charger":
		var charger models.Charger
		if err := json.Unmarshal(msg.Body, &charger); err != nil || charger.ID == "" {
			log.Printf("[DirectoryConsumer] invalid charger payload: %v", err)
			msg.Nack(false, false)
			return
		}
		// Bookings are priced from this rate, so it must never be negative.
		if charger.Cost < 0 {
			log.Printf("[DirectoryConsumer] rejecting charger %s with negative rate %v", charger.ID, charger.Cost)
			msg.Nack(false, false)
			return
		}
		err = dc.chargers.Upsert(ctx, &charger)
		if err == nil {
			log.Printf("[DirectoryConsumer] synced charger %s: %s", charger.ID, charger.ChargerName)
		}
	case "user":
		var user models.User
		if err := json.Unmarshal(msg.Body, &user); err != nil || user.ID == "" {
			log.Printf("[DirectoryConsumer] invalid user payload: %v", err)
			msg.Nack(false, false)
			return
		}
		err = dc.users.Upsert(ctx, &user)
		if err == nil {
			log.Printf("[DirectoryConsumer] synced user %s", user.ID)
		}
	default:
		log.Printf("[DirectoryConsumer] unexpected routing key %q", msg.RoutingKey)
		msg.Nack(false, false)
		return
	}

	if err != nil {
		log.Printf("[DirectoryConsumer] failed to upsert %s: %v", msg.RoutingKey, err)
		requeueAfter(ctx, msg, dc.retryDelay)
		return
	}
	msg.Ack(false)
}
