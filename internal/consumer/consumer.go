package consumer

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

func run(ctx context.Context, name string, msgs <-chan amqp.Delivery, handle func(context.Context, amqp.Delivery)) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] context cancelled, stopping consumer", name)
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("[%s] channel closed, stopping consumer", name)
				return
			}
			handle(ctx, msg)
		}
	}
}

// DefaultRetryDelay is how long a consumer holds a message that failed on a
// store error before requeueing it.
const DefaultRetryDelay = 5 * time.Second

// requeueAfter waits delay (or until ctx is done) and then returns msg to the queue.
func requeueAfter(ctx context.Context, msg amqp.Delivery, delay time.Duration) {
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	msg.Nack(false, true)
}
