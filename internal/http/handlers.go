package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ordersvc/internal/domain"
	"ordersvc/internal/metrics"
	"ordersvc/internal/service"
)

type Server struct {
	engine *gin.Engine
	orders *service.OrderService
}

// NewServer собирает роутер; m допускает nil, тогда метрики не пишутся
func NewServer(orders *service.OrderService, m *metrics.ServerMetrics) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if m != nil {
		r.Use(metrics.Middleware(m))
	}
	s := &Server{engine: r, orders: orders}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.engine.GET("/health", s.health)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	orders := s.engine.Group("/orders")
	{
		orders.GET("", s.listOrders)
		orders.GET(":id", s.getOrder)
		orders.POST("", s.createOrder)
		orders.PUT(":id", s.updateOrder)
		orders.DELETE(":id", s.cancelOrder)
	}
}

// @Summary Health check
// @Tags service
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Success 200 {array} domain.Order
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	list, err := s.orders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} errorBody
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	o, err := s.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

type createOrderItemReq struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type createOrderReq struct {
	UserID string               `json:"user_id" binding:"required"`
	Items  []createOrderItemReq `json:"items" binding:"required,dive"`
}

// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} errorBody
// @Failure 500 {object} errorBody
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Wrap(domain.KindValidation, "invalid request body", err))
		return
	}

	items := make([]service.CreateItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CreateItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := s.orders.Create(c.Request.Context(), req.UserID, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

type updateOrderReq struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param input body updateOrderReq true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} errorBody
// @Failure 404 {object} errorBody
// @Router /orders/{id} [put]
func (s *Server) updateOrder(c *gin.Context) {
	var req updateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Wrap(domain.KindValidation, "invalid request body", err))
		return
	}
	o, err := s.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Cancel order
// @Tags orders
// @Param id path string true "Order ID"
// @Success 204
// @Failure 400 {object} errorBody
// @Failure 404 {object} errorBody
// @Router /orders/{id} [delete]
func (s *Server) cancelOrder(c *gin.Context) {
	if _, err := s.orders.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// errorBody тело ошибки: машинная категория плюс человекочитаемое сообщение
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	c.JSON(statusOf(kind), errorBody{
		Error:   string(kind),
		Message: domain.MessageOf(err),
	})
}

func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
