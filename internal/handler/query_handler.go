package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/zapshare/booking-service/internal/dto"
	"github.com/zapshare/booking-service/internal/models"
	"github.com/zapshare/booking-service/internal/service"
)

// QueryHandler serves the read-only dashboards. The host and client routes
// are scoped to the authenticated caller.
type QueryHandler struct {
	svc service.QueryService
}

func NewQueryHandler(svc service.QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

func (h *QueryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/host/bookings", h.ListHostBookings)
	g.GET("/host/reviews", h.ListAllChargerReviews)
	g.GET("/chargers/:id/bookings", h.ListChargerBookings)
	g.GET("/chargers/:id/reviews", h.ListChargerReviews)
	g.GET("/client/bookings", h.ListClientBookings)
	g.GET("/notifications", h.ListNotifications)
}

func stateParam(c echo.Context) models.BookingState {
	return models.BookingState(c.QueryParam("state"))
}

func (h *QueryHandler) ListHostBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	views, err := h.svc.HostBookings(c.Request().Context(), p.UserID, stateParam(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, views)
}

func (h *QueryHandler) ListChargerBookings(c echo.Context) error {
	views, err := h.svc.ChargerBookings(c.Request().Context(), c.Param("id"), stateParam(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, views)
}

func (h *QueryHandler) ListChargerReviews(c echo.Context) error {
	views, err := h.svc.ChargerReviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, views)
}

func (h *QueryHandler) ListAllChargerReviews(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	views, err := h.svc.AllChargerReviews(c.Request().Context(), p.UserID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, views)
}

func (h *QueryHandler) ListClientBookings(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	views, err := h.svc.ClientBookings(c.Request().Context(), p.UserID, stateParam(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, views)
}

func (h *QueryHandler) ListNotifications(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	notifications, err := h.svc.Notifications(c.Request().Context(), p.UserID)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		resp[i] = dto.ToNotificationResponse(&notifications[i])
	}

	return c.JSON(http.StatusOK, resp)
}
