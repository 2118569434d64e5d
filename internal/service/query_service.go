package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zapshare/booking-service/internal/dto"
	"github.com/zapshare/booking-service/internal/metrics"
	"github.com/zapshare/booking-service/internal/models"
	"github.com/zapshare/booking-service/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// fanOutLimit bounds the per-charger queries run at once for one owner.
const fanOutLimit = 8

// QueryService builds read-only views by joining bookings, chargers, users
// and reviews in process. Elements whose join cannot be resolved are logged
// and left out instead of failing the whole listing.
type QueryService interface {
	HostBookings(ctx context.Context, ownerID string, state models.BookingState) ([]dto.HostBookingView, error)
	ChargerBookings(ctx context.Context, chargerID string, state models.BookingState) ([]dto.HostBookingView, error)
	ChargerReviews(ctx context.Context, chargerID string) ([]dto.ReviewView, error)
	AllChargerReviews(ctx context.Context, ownerID string) ([]dto.ReviewView, error)
	ClientBookings(ctx context.Context, clientID string, state models.BookingState) ([]dto.ClientBookingView, error)
	Notifications(ctx context.Context, userID string) ([]models.Notification, error)
}

type queryService struct {
	bookingRepo      repository.BookingRepository
	chargerRepo      repository.ChargerRepository
	userRepo         repository.UserRepository
	reviewRepo       repository.ReviewRepository
	notificationRepo repository.NotificationRepository
}

func NewQueryService(
	bookingRepo repository.BookingRepository,
	chargerRepo repository.ChargerRepository,
	userRepo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
	notificationRepo repository.NotificationRepository,
) QueryService {
	return &queryService{
		bookingRepo:      bookingRepo,
		chargerRepo:      chargerRepo,
		userRepo:         userRepo,
		reviewRepo:       reviewRepo,
		notificationRepo: notificationRepo,
	}
}

func checkState(state models.BookingState) error {
	if !state.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, state)
	}
	return nil
}

// fanOut runs fn for every charger concurrently and concatenates the results
// in charger order.
func fanOut[T any](ctx context.Context, chargers []models.Charger, fn func(context.Context, *models.Charger) ([]T, error)) ([]T, error) {
	results := make([][]T, len(chargers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i := range chargers {
		i := i
		g.Go(func() error {
			items, err := fn(gctx, &chargers[i])
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := []T{}
	for _, items := range results {
		merged = append(merged, items...)
	}
	return merged, nil
}

func (s *queryService) ownedChargers(ctx context.Context, ownerID string) ([]models.Charger, error) {
	chargers, err := s.chargerRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		log.Printf("[QueryService] failed to list chargers of owner %s: %v", ownerID, err)
		return nil, storeFailure("find chargers", err)
	}
	return chargers, nil
}

func (s *queryService) HostBookings(ctx context.Context, ownerID string, state models.BookingState) ([]dto.HostBookingView, error) {
	ctx, span := tracer.Start(ctx, "QueryService.HostBookings")
	defer span.End()
	span.SetAttributes(attribute.String("owner.id", ownerID), attribute.String("booking.state", string(state)))

	if err := checkState(state); err != nil {
		return nil, err
	}

	chargers, err := s.ownedChargers(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, chargers, func(ctx context.Context, charger *models.Charger) ([]dto.HostBookingView, error) {
		return s.chargerBookings(ctx, charger, state)
	})
}

func (s *queryService) ChargerBookings(ctx context.Context, chargerID string, state models.BookingState) ([]dto.HostBookingView, error) {
	ctx, span := tracer.Start(ctx, "QueryService.ChargerBookings")
	defer span.End()
	span.SetAttributes(attribute.String("charger.id", chargerID), attribute.String("booking.state", string(state)))

	if err := checkState(state); err != nil {
		return nil, err
	}

	bookings, err := s.findBookings(ctx, repository.BookingFilter{ChargerID: chargerID, State: state})
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return []dto.HostBookingView{}, nil
	}

	charger, err := s.chargerRepo.FindByID(ctx, chargerID)
	if err != nil {
		// Every element would need this charger; all of them are dropped.
		log.Printf("[QueryService] charger %s unavailable, dropping %d bookings: %v", chargerID, len(bookings), err)
		for range bookings {
			metrics.RecordDropped("host_booking")
		}
		return []dto.HostBookingView{}, nil
	}

	return s.hostViews(ctx, charger, bookings), nil
}

func (s *queryService) chargerBookings(ctx context.Context, charger *models.Charger, state models.BookingState) ([]dto.HostBookingView, error) {
	bookings, err := s.findBookings(ctx, repository.BookingFilter{ChargerID: charger.ID, State: state})
	if err != nil {
		return nil, err
	}
	return s.hostViews(ctx, charger, bookings), nil
}

func (s *queryService) findBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.Find(ctx, filter)
	if err != nil {
		log.Printf("[QueryService] failed to find bookings: %v", err)
		return nil, storeFailure("find bookings", err)
	}
	return bookings, nil
}

func (s *queryService) hostViews(ctx context.Context, charger *models.Charger, bookings []models.Booking) []dto.HostBookingView {
	names := newUserNames(s.userRepo)
	views := make([]dto.HostBookingView, 0, len(bookings))

	for i := range bookings {
		booking := &bookings[i]

		client, err := names.lookup(ctx, booking.ClientID)
		if err != nil {
			log.Printf("[QueryService] dropping booking %s: client %s: %v", booking.ID, booking.ClientID, err)
			metrics.RecordDropped("host_booking")
			continue
		}

		view := dto.HostBookingView{
			StartTime:   booking.TimeStart,
			EndTime:     booking.TimeEnd,
			Cost:        booking.Cost,
			Address:     charger.Address,
			City:        charger.City,
			Province:    charger.Province,
			Client:      client.Name,
			ClientID:    client.ID,
			ChargerName: charger.ChargerName,
		}
		switch booking.State {
		case models.StatePending:
			view.BookingID = booking.ID
		case models.StateCompleted:
			feedback := booking.UserFeedback
			view.ReviewStatus = &feedback
			view.BookingID = booking.ID
		}
		views = append(views, view)
	}
	return views
}

func (s *queryService) ChargerReviews(ctx context.Context, chargerID string) ([]dto.ReviewView, error) {
	ctx, span := tracer.Start(ctx, "QueryService.ChargerReviews")
	defer span.End()

	return s.chargerReviews(ctx, chargerID, newUserNames(s.userRepo))
}

func (s *queryService) AllChargerReviews(ctx context.Context, ownerID string) ([]dto.ReviewView, error) {
	ctx, span := tracer.Start(ctx, "QueryService.AllChargerReviews")
	defer span.End()

	chargers, err := s.ownedChargers(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return fanOut(ctx, chargers, func(ctx context.Context, charger *models.Charger) ([]dto.ReviewView, error) {
		return s.chargerReviews(ctx, charger.ID, newUserNames(s.userRepo))
	})
}

func (s *queryService) chargerReviews(ctx context.Context, chargerID string, names *userNames) ([]dto.ReviewView, error) {
	reviews, err := s.reviewRepo.FindByReviewee(ctx, chargerID)
	if err != nil {
		log.Printf("[QueryService] failed to get reviews of charger %s: %v", chargerID, err)
		return nil, storeFailure("find reviews", err)
	}

	views := make([]dto.ReviewView, 0, len(reviews))
	for _, review := range reviews {
		reviewer, err := names.lookup(ctx, review.ReviewerID)
		if err != nil {
			log.Printf("[QueryService] dropping review %s: reviewer %s: %v", review.ID, review.ReviewerID, err)
			metrics.RecordDropped("review")
			continue
		}
		views = append(views, dto.ReviewView{
			ID:        review.ID,
			Reviewer:  reviewer.Name,
			Reviewee:  review.RevieweeID,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
		})
	}
	return views, nil
}

// ClientBookings lists the client's own bookings; an empty state lists all of them.
func (s *queryService) ClientBookings(ctx context.Context, clientID string, state models.BookingState) ([]dto.ClientBookingView, error) {
	ctx, span := tracer.Start(ctx, "QueryService.ClientBookings")
	defer span.End()

	if state != "" {
		if err := checkState(state); err != nil {
			return nil, err
		}
	}

	bookings, err := s.findBookings(ctx, repository.BookingFilter{ClientID: clientID, State: state})
	if err != nil {
		return nil, err
	}

	chargers := make(map[string]*models.Charger)
	views := make([]dto.ClientBookingView, 0, len(bookings))
	for _, booking := range bookings {
		charger, ok := chargers[booking.ChargerID]
		if !ok {
			charger, err = s.chargerRepo.FindByID(ctx, booking.ChargerID)
			if err != nil {
				log.Printf("[QueryService] dropping booking %s: charger %s: %v", booking.ID, booking.ChargerID, err)
				metrics.RecordDropped("client_booking")
				continue
			}
			chargers[booking.ChargerID] = charger
		}

		views = append(views, dto.ClientBookingView{
			BookingID:   booking.ID,
			ChargerID:   charger.ID,
			ChargerName: charger.ChargerName,
			Address:     charger.Address,
			City:        charger.City,
			Province:    charger.Province,
			StartTime:   booking.TimeStart,
			EndTime:     booking.TimeEnd,
			Cost:        booking.Cost,
			State:       booking.State,
			Accepted:    booking.Accepted,
		})
	}
	return views, nil
}

func (s *queryService) Notifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, storeFailure("find notifications", err)
	}
	return notifications, nil
}

// userNames memoizes user lookups for the duration of one listing.
type userNames struct {
	repo  repository.UserRepository
	users map[string]*models.User
}

func newUserNames(repo repository.UserRepository) *userNames {
	return &userNames{repo: repo, users: make(map[string]*models.User)}
}

func (n *userNames) lookup(ctx context.Context, id string) (*models.User, error) {
	if u, ok := n.users[id]; ok {
		return u, nil
	}
	u, err := n.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s not found", id)
		}
		return nil, err
	}
	n.users[id] = u
	return u, nil
}
