package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appordering "github.com/shopfront/backend/internal/application/ordering"
)

// OrderHandler handles order placement and listing
type OrderHandler struct {
	BaseHandler
	placement *appordering.PlacementService
	queries   *appordering.QueryService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(placement *appordering.PlacementService, queries *appordering.QueryService) *OrderHandler {
	return &OrderHandler{
		placement: placement,
		queries:   queries,
	}
}

// Place godoc
// @ID           placeOrder
// @Summary      Place an order
// @Description  Atomically takes quantity units from the product's stock. Send an Idempotency-Key header to make retries safe.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string           false "Client generated key"
// @Param        request         body   PlaceOrderRequest true  "Order"
// @Success      201 {object} APIResponse[OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse "Insufficient stock"
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	order, err := h.placement.PlaceOrder(c.Request.Context(), *account, uuid.MustParse(req.ProductID), req.quantity())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toOrderResponse(order))
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Admins see every order, sellers see orders for their products, customers see their own. Newest first.
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[[]OrderViewResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	account, ok := h.account(c)
	if !ok {
		return
	}

	views, err := h.queries.ListOrders(c.Request.Context(), *account)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toOrderViewResponses(views))
}
