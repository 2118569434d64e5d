package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zapshare/booking-service/internal/models"
)

type queryFixture struct {
	bookings      *memBookingRepo
	chargers      *memChargerRepo
	users         *memUserRepo
	reviews       *memReviewRepo
	notifications *memNotificationRepo
	svc           QueryService
}

func newQueryFixture() *queryFixture {
	f := &queryFixture{
		bookings: newMemBookingRepo(),
		chargers: newMemChargerRepo(
			&models.Charger{ID: "charger-1", OwnerID: "owner-1", ChargerName: "Garage", Address: "1 King St", City: "Toronto", Province: "ON", Cost: 10},
			&models.Charger{ID: "charger-2", OwnerID: "owner-1", ChargerName: "Driveway", Address: "9 Bay St", City: "Toronto", Province: "ON", Cost: 8},
			&models.Charger{ID: "charger-3", OwnerID: "owner-2", ChargerName: "Lot", Address: "5 Main St", City: "Ottawa", Province: "ON", Cost: 6},
		),
		users: newMemUserRepo(
			&models.User{ID: "client-1", Name: "Alex"},
			&models.User{ID: "client-2", Name: "Sam"},
		),
		reviews:       &memReviewRepo{},
		notifications: &memNotificationRepo{},
	}
	f.svc = NewQueryService(f.bookings, f.chargers, f.users, f.reviews, f.notifications)
	return f
}

func (f *queryFixture) seed(id, chargerID, clientID string, state models.BookingState) {
	f.bookings.put(&models.Booking{
		ID:        id,
		ChargerID: chargerID,
		ClientID:  clientID,
		TimeStart: windowStart,
		TimeEnd:   windowEnd,
		State:     state,
		Cost:      10,
	})
}

// --- HostBookings ---

func TestHostBookings_UnionAcrossOwnedChargers(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "charger-1", "client-1", models.StateUnpaid)
	f.seed("b-2", "charger-2", "client-2", models.StateUnpaid)
	f.seed("b-3", "charger-3", "client-1", models.StateUnpaid)
	f.seed("b-4", "charger-1", "client-2", models.StatePaid)

	views, err := f.svc.HostBookings(context.Background(), "owner-1", models.StateUnpaid)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Garage", views[0].ChargerName)
	assert.Equal(t, "Alex", views[0].Client)
	assert.Equal(t, "client-1", views[0].ClientID)
	assert.Equal(t, "1 King St", views[0].Address)
	assert.Equal(t, "Driveway", views[1].ChargerName)
	assert.Equal(t, "Sam", views[1].Client)

	for _, v := range views {
		assert.Empty(t, v.BookingID, "UNPAID rows carry no booking id")
		assert.Nil(t, v.ReviewStatus)
	}
}

func TestHostBookings_PendingCarriesBookingID(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "charger-1", "client-1", models.StatePending)

	views, err := f.svc.HostBookings(context.Background(), "owner-1", models.StatePending)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "b-1", views[0].BookingID)
	assert.Nil(t, views[0].ReviewStatus)
}

func TestHostBookings_CompletedCarriesReviewStatus(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "charger-1", "client-1", models.StateCompleted)
	f.bookings.put(&models.Booking{ID: "b-2", ChargerID: "charger-2", ClientID: "client-2", State: models.StateCompleted, UserFeedback: true})

	views, err := f.svc.HostBookings(context.Background(), "owner-1", models.StateCompleted)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "b-1", views[0].BookingID)
	require.NotNil(t, views[0].ReviewStatus)
	assert.False(t, *views[0].ReviewStatus)
	assert.Equal(t, "b-2", views[1].BookingID)
	require.NotNil(t, views[1].ReviewStatus)
	assert.True(t, *views[1].ReviewStatus)
}

func TestHostBookings_DropsUnresolvedClient(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "charger-1", "client-1", models.StatePaid)
	f.seed("b-2", "charger-1", "ghost", models.StatePaid)

	views, err := f.svc.HostBookings(context.Background(), "owner-1", models.StatePaid)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Alex", views[0].Client)
}

func TestHostBookings_NoChargers(t *testing.T) {
	f := newQueryFixture()

	views, err := f.svc.HostBookings(context.Background(), "nobody", models.StatePending)

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestHostBookings_InvalidState(t *testing.T) {
	f := newQueryFixture()

	_, err := f.svc.HostBookings(context.Background(), "owner-1", "ARCHIVED")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.HostBookings(context.Background(), "owner-1", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestHostBookings_StoreFailure(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "charger-1", "client-1", models.StatePaid)
	f.bookings.err = errors.New("db connection failed")

	_, err := f.svc.HostBookings(context.Background(), "owner-1", models.StatePaid)

	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestHostBookings_MemoizesUserLookups(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "charger-1", "client-1", models.StatePaid)
	f.seed("b-2", "charger-1", "client-1", models.StatePaid)
	f.seed("b-3", "charger-1", "client-1", models.StatePaid)

	views, err := f.svc.HostBookings(context.Background(), "owner-1", models.StatePaid)

	require.NoError(t, err)
	assert.Len(t, views, 3)
	assert.Equal(t, 1, f.users.calls)
}

// --- ChargerBookings ---

func TestChargerBookings(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "charger-2", "client-2", models.StatePending)
	f.seed("b-2", "charger-1", "client-1", models.StatePending)

	views, err := f.svc.ChargerBookings(context.Background(), "charger-2", models.StatePending)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "b-1", views[0].BookingID)
	assert.Equal(t, "Driveway", views[0].ChargerName)
}

func TestChargerBookings_MissingChargerDropsAll(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "gone", "client-1", models.StatePending)

	views, err := f.svc.ChargerBookings(context.Background(), "gone", models.StatePending)

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

// --- Reviews ---

func TestChargerReviews_ResolvesReviewerNames(t *testing.T) {
	f := newQueryFixture()
	created := time.Date(2026, 2, 21, 9, 0, 0, 0, time.UTC)
	f.reviews.reviews = []models.Review{
		{ID: "r-1", ReviewerID: "client-1", RevieweeID: "charger-1", Rating: 5, Comment: "fast", CreatedAt: created},
		{ID: "r-2", ReviewerID: "ghost", RevieweeID: "charger-1", Rating: 1},
		{ID: "r-3", ReviewerID: "client-2", RevieweeID: "charger-3", Rating: 4},
	}

	views, err := f.svc.ChargerReviews(context.Background(), "charger-1")

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "r-1", views[0].ID)
	assert.Equal(t, "Alex", views[0].Reviewer)
	assert.Equal(t, "charger-1", views[0].Reviewee)
	assert.Equal(t, 5, views[0].Rating)
	assert.Equal(t, "fast", views[0].Comment)
	assert.Equal(t, created, views[0].CreatedAt)
}

func TestAllChargerReviews(t *testing.T) {
	f := newQueryFixture()
	f.reviews.reviews = []models.Review{
		{ID: "r-1", ReviewerID: "client-1", RevieweeID: "charger-2", Rating: 5},
		{ID: "r-2", ReviewerID: "client-2", RevieweeID: "charger-1", Rating: 3},
		{ID: "r-3", ReviewerID: "client-2", RevieweeID: "charger-3", Rating: 4},
	}

	views, err := f.svc.AllChargerReviews(context.Background(), "owner-1")

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "r-2", views[0].ID, "charger order is preserved")
	assert.Equal(t, "r-1", views[1].ID)
}

// --- ClientBookings ---

func TestClientBookings(t *testing.T) {
	f := newQueryFixture()
	f.seed("b-1", "charger-1", "client-1", models.StatePending)
	f.seed("b-2", "charger-3", "client-1", models.StatePaid)
	f.seed("b-3", "charger-2", "client-2", models.StatePaid)
	f.seed("b-4", "gone", "client-1", models.StatePaid)

	all, err := f.svc.ClientBookings(context.Background(), "client-1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b-1", all[0].BookingID)
	assert.Equal(t, "Garage", all[0].ChargerName)
	assert.Equal(t, models.StatePending, all[0].State)
	assert.Equal(t, "b-2", all[1].BookingID)
	assert.Equal(t, "Ottawa", all[1].City)

	paid, err := f.svc.ClientBookings(context.Background(), "client-1", models.StatePaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "b-2", paid[0].BookingID)

	_, err = f.svc.ClientBookings(context.Background(), "client-1", "BOGUS")
	assert.ErrorIs(t, err, ErrInvalidState)
}

// --- Notifications ---

func TestNotifications_NewestFirst(t *testing.T) {
	f := newQueryFixture()
	older := time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, f.notifications.Create(ctx, &models.Notification{ID: "n-1", UserID: "owner-1", Type: models.NotifyNewRequest, CreatedAt: older}))
	require.NoError(t, f.notifications.Create(ctx, &models.Notification{ID: "n-2", UserID: "owner-1", Type: models.NotifyPaid, CreatedAt: older.Add(time.Hour)}))
	require.NoError(t, f.notifications.Create(ctx, &models.Notification{ID: "n-3", UserID: "client-1", Type: models.NotifyAccepted, CreatedAt: older}))

	notes, err := f.svc.Notifications(ctx, "owner-1")

	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "n-2", notes[0].ID)
	assert.Equal(t, "n-1", notes[1].ID)
}
