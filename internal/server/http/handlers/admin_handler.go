package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/haidarz/remitbot/internal/domain/errors"
	"github.com/haidarz/remitbot/internal/domain/model"
	"github.com/haidarz/remitbot/internal/server/http/dto"
	"github.com/haidarz/remitbot/internal/server/http/middleware"
)

const defaultOrderLimit = 50

// AdminHandler serves the authenticated administrative endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler creates AdminHandler instance.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := h.facade.Login(req.Password)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// Broadcast handles POST /api/admin/broadcast.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	report, err := h.facade.Broadcast(c.Request.Context(), req.Text)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, dto.BroadcastResponse{
		Sent:     report.Sent,
		Failed:   report.Failed,
		Excluded: report.Excluded,
		Skipped:  report.Skipped,
		Total:    report.Total,
	})
}

// Orders handles GET /api/admin/orders.
func (h *AdminHandler) Orders(c *gin.Context) {
	limit := defaultOrderLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Status(http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	orders, err := h.facade.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	rate := h.facade.Rate()
	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o, rate))
	}
	c.JSON(http.StatusOK, response)
}

// Subscribers handles GET /api/admin/subscribers.
func (h *AdminHandler) Subscribers(c *gin.Context) {
	subscribers, err := h.facade.Subscribers(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(subscribers) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.SubscriberResponse, 0, len(subscribers))
	for _, s := range subscribers {
		response = append(response, dto.SubscriberResponse{
			UserID:       s.UserID,
			FirstSeen:    s.FirstSeen,
			LastNotified: s.LastNotified,
		})
	}
	c.JSON(http.StatusOK, response)
}

// SubscriberCount handles GET /api/admin/subscribers/count.
func (h *AdminHandler) SubscriberCount(c *gin.Context) {
	count, err := h.facade.SubscriberCount(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.SubscriberCountResponse{Count: count})
}

// Health handles GET /health.
func (h *AdminHandler) Health(c *gin.Context) {
	if err := h.facade.Health(c.Request.Context()); err != nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	c.Status(http.StatusOK)
}

func toOrderResponse(order model.Order, rate int64) dto.OrderResponse {
	return dto.OrderResponse{
		ID:            order.ID,
		Phone:         order.Phone,
		Network:       order.Network,
		Amount:        order.Amount,
		Fee:           model.Extra(order.Amount, rate),
		Total:         model.Net(order.Amount, rate),
		Paid:          order.Paid,
		Status:        string(order.Status),
		TransactionID: order.TransactionID,
		CreatedAt:     order.CreatedAt,
	}
}
