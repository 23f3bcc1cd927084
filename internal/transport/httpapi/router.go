package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Handler собирает mux-роутер поверх сервисов заказов и позиций.
type Handler struct {
	orders *orderHandlers
	items  *itemHandlers
	logger *log.Entry
}

// NewHandler конструирует HTTP-обработчики. logger опционален.
func NewHandler(orderSvc OrderService, itemSvc OrderItemService, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{
		orders: &orderHandlers{service: orderSvc, logger: logger},
		items:  &itemHandlers{orders: orderSvc, service: itemSvc, logger: logger},
		logger: logger,
	}
}

// Router возвращает роутер со всеми маршрутами API под /api/v1.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.logMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", h.orders.create).Methods(http.MethodPost)
	api.HandleFunc("/orders", h.orders.list).Methods(http.MethodGet)
	api.HandleFunc("/orders/number/{number}", h.orders.getByNumber).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.orders.get).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.orders.update).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{id}", h.orders.delete).Methods(http.MethodDelete)
	api.HandleFunc("/orders/{id}/items", h.items.listByOrder).Methods(http.MethodGet)

	api.HandleFunc("/items", h.items.create).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}", h.items.get).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", h.items.update).Methods(http.MethodPatch)
	api.HandleFunc("/items/{id}", h.items.delete).Methods(http.MethodDelete)

	return router
}
