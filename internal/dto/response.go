package dto

import (
	"time"

	"github.com/zapshare/booking-service/internal/models"
)

type BookingResponse struct {
	ID           string              `json:"id"`
	ChargerID    string              `json:"charger_id"`
	ClientID     string              `json:"client_id"`
	TimeStart    time.Time           `json:"time_start"`
	TimeEnd      time.Time           `json:"time_end"`
	State        models.BookingState `json:"state"`
	Cost         float64             `json:"cost"`
	Accepted     bool                `json:"accepted"`
	UserFeedback bool                `json:"user_feedback"`
	CreatedAt    time.Time           `json:"created_at"`
}

type NotificationResponse struct {
	ID        string                  `json:"id"`
	BookingID string                  `json:"booking_id"`
	UserID    string                  `json:"user_id"`
	Type      models.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

// HostBookingView is the host dashboard row for one booking. BookingID is set
// for PENDING and COMPLETED bookings, ReviewStatus only for COMPLETED ones.
type HostBookingView struct {
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	Cost         float64   `json:"cost"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Province     string    `json:"province"`
	Client       string    `json:"client"`
	ClientID     string    `json:"clientID"`
	ChargerName  string    `json:"chargername"`
	BookingID    string    `json:"bookingID,omitempty"`
	ReviewStatus *bool     `json:"reviewStatus,omitempty"`
}

type ClientBookingView struct {
	BookingID   string              `json:"bookingID"`
	ChargerID   string              `json:"chargerID"`
	ChargerName string              `json:"chargername"`
	Address     string              `json:"address"`
	City        string              `json:"city"`
	Province    string              `json:"province"`
	StartTime   time.Time           `json:"startTime"`
	EndTime     time.Time           `json:"endTime"`
	Cost        float64             `json:"cost"`
	State       models.BookingState `json:"state"`
	Accepted    bool                `json:"accepted"`
}

// ReviewView carries the reviewer's display name in place of their id.
type ReviewView struct {
	ID        string    `json:"id"`
	Reviewer  string    `json:"reviewer"`
	Reviewee  string    `json:"reviewee"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		ChargerID:    b.ChargerID,
		ClientID:     b.ClientID,
		TimeStart:    b.TimeStart,
		TimeEnd:      b.TimeEnd,
		State:        b.State,
		Cost:         b.Cost,
		Accepted:     b.Accepted,
		UserFeedback: b.UserFeedback,
		CreatedAt:    b.CreatedAt,
	}
}

func ToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		BookingID: n.BookingID,
		UserID:    n.UserID,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
