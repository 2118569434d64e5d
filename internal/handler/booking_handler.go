package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/zapshare/booking-service/internal/dto"
	"github.com/zapshare/booking-service/internal/middleware"
	"github.com/zapshare/booking-service/internal/service"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	bookings := g.Group("/bookings")
	bookings.POST("", h.CreateBooking)
	bookings.GET("/:id", h.GetBooking)
	bookings.PATCH("/:id", h.PatchBooking)
	bookings.DELETE("/:id", h.CancelBooking)
	bookings.POST("/:id/accept", h.AcceptBooking)
	bookings.DELETE("/:id/decline", h.DeclineBooking)
	bookings.POST("/:id/pay", h.PayBooking)
}

// toHTTPError maps service errors onto status codes. Store failures are
// logged here and surface as a generic 500.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrBookingNotFound), errors.Is(err, service.ErrChargerNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrInvalidRate),
		errors.Is(err, service.ErrInvalidPatch),
		errors.Is(err, service.ErrInvalidState):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrBookingPaid):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		log.WithError(err).Error("[Handler] request failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func principal(c echo.Context) (middleware.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok || p.UserID == "" {
		return middleware.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	return p, nil
}

func bookingID(c echo.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	return id, nil
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ChargerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "charger_id is required")
	}
	if req.TimeStart.IsZero() || req.TimeEnd.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "time_start and time_end are required")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), req.ChargerID, p.UserID, req.TimeStart, req.TimeEnd)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) AcceptBooking(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	booking, err := h.svc.AcceptBooking(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) DeclineBooking(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	booking, err := h.svc.DeclineBooking(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) PayBooking(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	notification, err := h.svc.PayBooking(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToNotificationResponse(notification))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	booking, err := h.svc.CancelBooking(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) PatchBooking(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	// Decoded into a map so unknown fields reach the service and are rejected there.
	var fields map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.svc.PatchBooking(c.Request().Context(), id, fields)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return err
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
