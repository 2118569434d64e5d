package service

import (
	"context"
	"sort"
	"sync"

	"github.com/zapshare/booking-service/internal/models"
	"github.com/zapshare/booking-service/internal/repository"
	"gorm.io/gorm"
)

// --- In-memory BookingRepository ---

type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	order    []string
	err      error // returned by every call when set
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[string]*models.Booking)}
}

func (m *memBookingRepo) put(b *models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; !ok {
		m.order = append(m.order, b.ID)
	}
	cp := *b
	m.bookings[b.ID] = &cp
}

func (m *memBookingRepo) get(id string) (*models.Booking, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, false
	}
	cp := *b
	return &cp, true
}

func (m *memBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	if m.err != nil {
		return m.err
	}
	m.put(b)
	return nil
}

func (m *memBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.get(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func filterMatches(b *models.Booking, f repository.BookingFilter) bool {
	if f.ChargerID != "" && b.ChargerID != f.ChargerID {
		return false
	}
	if f.ClientID != "" && b.ClientID != f.ClientID {
		return false
	}
	if f.State != "" && b.State != f.State {
		return false
	}
	if f.StartedBefore != nil && b.TimeStart.After(*f.StartedBefore) {
		return false
	}
	return true
}

func (m *memBookingRepo) Find(ctx context.Context, f repository.BookingFilter) ([]models.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, id := range m.order {
		b, ok := m.bookings[id]
		if ok && filterMatches(b, f) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func applyPatch(b *models.Booking, patch map[string]any) {
	for k, v := range patch {
		switch k {
		case "state":
			b.State = v.(models.BookingState)
		case "accepted":
			b.Accepted = v.(bool)
		}
	}
}

func (m *memBookingRepo) FindByIDAndUpdate(ctx context.Context, id string, patch map[string]any) (*models.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	applyPatch(b, patch)
	cp := *b
	return &cp, nil
}

func (m *memBookingRepo) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *memBookingRepo) UpdateMany(ctx context.Context, f repository.BookingFilter, patch map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bookings {
		if filterMatches(b, f) {
			applyPatch(b, patch)
			n++
		}
	}
	return n, nil
}

func (m *memBookingRepo) DeleteMany(ctx context.Context, f repository.BookingFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, b := range m.bookings {
		if filterMatches(b, f) {
			delete(m.bookings, id)
			n++
		}
	}
	return n, nil
}

// --- In-memory ChargerRepository ---

type memChargerRepo struct {
	chargers map[string]*models.Charger
	order    []string
	err      error
}

func newMemChargerRepo(chargers ...*models.Charger) *memChargerRepo {
	m := &memChargerRepo{chargers: make(map[string]*models.Charger)}
	for _, c := range chargers {
		m.chargers[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	return m
}

func (m *memChargerRepo) FindByID(ctx context.Context, id string) (*models.Charger, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.chargers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *memChargerRepo) FindByOwner(ctx context.Context, ownerID string) ([]models.Charger, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Charger
	for _, id := range m.order {
		if c := m.chargers[id]; c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memChargerRepo) Upsert(ctx context.Context, c *models.Charger) error {
	if _, ok := m.chargers[c.ID]; !ok {
		m.order = append(m.order, c.ID)
	}
	m.chargers[c.ID] = c
	return nil
}

// --- In-memory NotificationRepository ---

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	err           error
}

func (m *memNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memNotificationRepo) FindByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memNotificationRepo) all() []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Notification(nil), m.notifications...)
}

// --- In-memory UserRepository ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	calls int
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	m := &memUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *memUserRepo) Upsert(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// --- In-memory ReviewRepository ---

type memReviewRepo struct {
	reviews []models.Review
}

func (m *memReviewRepo) FindByReviewee(ctx context.Context, chargerID string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range m.reviews {
		if r.RevieweeID == chargerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- Recording EventPublisher ---

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return p.err
}
