package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
	"github.com/zapshare/booking-service/internal/models"
	"github.com/zapshare/booking-service/internal/service"
)

const PaymentPaidKey = "payment.paid"

type Payer interface {
	PayBooking(ctx context.Context, bookingID string) (*models.Notification, error)
}

type PaymentEvent struct {
	BookingID string `json:"booking_id"`
}

// PaymentConsumer applies the pay transition when the payment provider
// confirms a booking was paid.
type PaymentConsumer struct {
	payer      Payer
	retryDelay time.Duration
}

func NewPaymentConsumer(payer Payer) *PaymentConsumer {
	return &PaymentConsumer{payer: payer, retryDelay: DefaultRetryDelay}
}

func (pc *PaymentConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go run(ctx, "PaymentConsumer", msgs, pc.handleMessage)
}

func (pc *PaymentConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var event PaymentEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.BookingID == "" {
		log.Printf("[PaymentConsumer] invalid payment payload: %v", err)
		msg.Nack(false, false)
		return
	}

	if _, err := pc.payer.PayBooking(ctx, event.BookingID); err != nil {
		// Only store failures are worth another attempt.
		requeue := errors.Is(err, service.ErrStoreFailure)
		log.Printf("[PaymentConsumer] failed to pay booking %s (requeue=%t): %v", event.BookingID, requeue, err)
		if requeue {
			requeueAfter(ctx, msg, pc.retryDelay)
			return
		}
		msg.Nack(false, false)
		return
	}

	log.Printf("[PaymentConsumer] booking %s paid", event.BookingID)
	msg.Ack(false)
}
