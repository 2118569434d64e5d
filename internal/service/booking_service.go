package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/zapshare/booking-service/internal/metrics"
	"github.com/zapshare/booking-service/internal/models"
	"github.com/zapshare/booking-service/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/zapshare/booking-service/internal/service")

// PatchableFields lists the booking fields a client may change directly.
var PatchableFields = map[string]struct{}{
	"accepted": {},
}

// BookingService is the booking lifecycle state machine:
//
//	create  -> PENDING
//	accept  -> UNPAID
//	pay     -> PAID
//	sweep   -> COMPLETED
//	decline, cancel -> removed (PENDING or UNPAID only)
//
// accept and pay overwrite the state without checking the current one; the
// host and client are trusted parties and the host screens requests manually.
type BookingService interface {
	CreateBooking(ctx context.Context, chargerID, clientID string, start, end time.Time) (*models.Booking, error)
	AcceptBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	DeclineBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	PayBooking(ctx context.Context, bookingID string) (*models.Notification, error)
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	PatchBooking(ctx context.Context, bookingID string, fields map[string]any) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	chargerRepo repository.ChargerRepository
	notifier    Notifier
}

func NewBookingService(bookingRepo repository.BookingRepository, chargerRepo repository.ChargerRepository, notifier Notifier) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		chargerRepo: chargerRepo,
		notifier:    notifier,
	}
}

func startSpan(ctx context.Context, name, bookingID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	if bookingID != "" {
		span.SetAttributes(attribute.String("booking.id", bookingID))
	}
	return ctx, span
}

func finish(span trace.Span, operation string, err error) {
	metrics.RecordTransition(operation, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, storeFailure("find booking", err)
	}
	return booking, nil
}

func (s *bookingService) findCharger(ctx context.Context, chargerID string) (*models.Charger, error) {
	charger, err := s.chargerRepo.FindByID(ctx, chargerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrChargerNotFound, chargerID)
		}
		return nil, storeFailure("find charger", err)
	}
	return charger, nil
}

func (s *bookingService) updateBooking(ctx context.Context, bookingID string, patch map[string]any) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByIDAndUpdate(ctx, bookingID, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, storeFailure("update booking", err)
	}
	return booking, nil
}

func (s *bookingService) removeBooking(ctx context.Context, bookingID string) error {
	if err := s.bookingRepo.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return storeFailure("delete booking", err)
	}
	return nil
}

func (s *bookingService) CreateBooking(ctx context.Context, chargerID, clientID string, start, end time.Time) (result *models.Booking, err error) {
	ctx, span := startSpan(ctx, "BookingService.CreateBooking", "")
	defer func() { finish(span, "create", err) }()

	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidWindow)
	}

	charger, err := s.findCharger(ctx, chargerID)
	if err != nil {
		return nil, err
	}

	cost, err := CalculateCost(charger.Cost, start, end)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:        uuid.NewString(),
		ChargerID: charger.ID,
		ClientID:  clientID,
		TimeStart: start,
		TimeEnd:   end,
		State:     models.StatePending,
		Cost:      cost,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, storeFailure("save booking", err)
	}
	span.SetAttributes(attribute.String("booking.id", booking.ID))

	// Notify the charger owner that a request has been sent to their charger.
	if _, err := s.notifier.Notify(ctx, booking, charger.OwnerID, models.NotifyNewRequest); err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *bookingService) AcceptBooking(ctx context.Context, bookingID string) (result *models.Booking, err error) {
	ctx, span := startSpan(ctx, "BookingService.AcceptBooking", bookingID)
	defer func() { finish(span, "accept", err) }()

	booking, err := s.updateBooking(ctx, bookingID, map[string]any{"state": models.StateUnpaid})
	if err != nil {
		log.Printf("[BookingService] accept %s: %v", bookingID, err)
		return nil, err
	}

	if _, err := s.notifier.Notify(ctx, booking, booking.ClientID, models.NotifyAccepted); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) DeclineBooking(ctx context.Context, bookingID string) (result *models.Booking, err error) {
	ctx, span := startSpan(ctx, "BookingService.DeclineBooking", bookingID)
	defer func() { finish(span, "decline", err) }()

	// The snapshot addresses the notification after the document is gone.
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		log.Printf("[BookingService] booking %s not found, could not delete: %v", bookingID, err)
		return nil, err
	}
	if booking.State == models.StatePaid || booking.State == models.StateCompleted {
		log.Printf("[BookingService] could not decline booking %s, already paid", bookingID)
		return nil, ErrBookingPaid
	}
	if err := s.removeBooking(ctx, bookingID); err != nil {
		return nil, err
	}

	if _, err := s.notifier.Notify(ctx, booking, booking.ClientID, models.NotifyDeclined); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) PayBooking(ctx context.Context, bookingID string) (result *models.Notification, err error) {
	ctx, span := startSpan(ctx, "BookingService.PayBooking", bookingID)
	defer func() { finish(span, "pay", err) }()

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	charger, err := s.findCharger(ctx, booking.ChargerID)
	if err != nil {
		log.Printf("[BookingService] pay %s: %v", bookingID, err)
		return nil, err
	}

	booking, err = s.updateBooking(ctx, bookingID, map[string]any{"state": models.StatePaid})
	if err != nil {
		return nil, err
	}

	// Notify the charger owner that a payment has been received.
	return s.notifier.Notify(ctx, booking, charger.OwnerID, models.NotifyPaid)
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (result *models.Booking, err error) {
	ctx, span := startSpan(ctx, "BookingService.CancelBooking", bookingID)
	defer func() { finish(span, "cancel", err) }()

	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		log.Printf("[BookingService] booking %s not found, could not cancel: %v", bookingID, err)
		return nil, err
	}
	if booking.State == models.StatePaid || booking.State == models.StateCompleted {
		log.Printf("[BookingService] could not cancel booking %s, already paid", bookingID)
		return nil, ErrBookingPaid
	}

	charger, err := s.findCharger(ctx, booking.ChargerID)
	if err != nil {
		return nil, err
	}
	if err := s.removeBooking(ctx, bookingID); err != nil {
		return nil, err
	}

	if _, err := s.notifier.Notify(ctx, booking, booking.ClientID, models.NotifyCancelled); err != nil {
		return nil, err
	}
	if _, err := s.notifier.Notify(ctx, booking, charger.OwnerID, models.NotifyCancelled); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) PatchBooking(ctx context.Context, bookingID string, fields map[string]any) (result *models.Booking, err error) {
	ctx, span := startSpan(ctx, "BookingService.PatchBooking", bookingID)
	defer func() { finish(span, "patch", err) }()

	patch := make(map[string]any, len(fields))
	for name, value := range fields {
		if _, ok := PatchableFields[name]; !ok {
			return nil, fmt.Errorf("%w: field %q cannot be updated", ErrInvalidPatch, name)
		}
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: field %q must be a boolean", ErrInvalidPatch, name)
		}
		patch[name] = b
	}

	if len(patch) == 0 {
		return s.findBooking(ctx, bookingID)
	}
	return s.updateBooking(ctx, bookingID, patch)
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.findBooking(ctx, bookingID)
}
