package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/orderitems"
)

// OrderItemService — операции над позициями, нужные HTTP-слою.
type OrderItemService interface {
	Create(ctx context.Context, input orderitems.CreateItemInput) (orderitems.ItemView, error)
	GetByID(ctx context.Context, id string) (orderitems.ItemView, error)
	ListByOrder(ctx context.Context, orderID string) ([]orderitems.ItemView, error)
	Update(ctx context.Context, id string, patch domain.OrderItemPatch) (domain.OrderItem, error)
	Delete(ctx context.Context, id string) error
}

type itemHandlers struct {
	orders  OrderService
	service OrderItemService
	logger  *log.Entry
}

type createItemRequest struct {
	OrderID     string `json:"order_id"`
	Kind        string `json:"kind"`
	ProductRef  string `json:"product_ref"`
	ServiceRef  string `json:"service_ref"`
	Description string `json:"description"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type patchItemRequest struct {
	Quantity    *int32  `json:"quantity"`
	UnitPrice   *string `json:"unit_price"`
	Description *string `json:"description"`
}

type itemResponse struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	Kind        string `json:"kind"`
	ProductRef  string `json:"product_ref,omitempty"`
	ServiceRef  string `json:"service_ref,omitempty"`
	Description string `json:"description"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
	CreatedAt   string `json:"created_at"`

	CatalogName  string `json:"catalog_name,omitempty"`
	CatalogPrice string `json:"catalog_price,omitempty"`
}

func itemToResponse(item domain.OrderItem) itemResponse {
	return itemResponse{
		ID:          item.ID,
		OrderID:     item.OrderID,
		Kind:        string(item.Kind),
		ProductRef:  item.ProductRef,
		ServiceRef:  item.ServiceRef,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice.StringFixed(2),
		Subtotal:    item.Subtotal.StringFixed(2),
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
	}
}

func itemViewToResponse(view orderitems.ItemView) itemResponse {
	resp := itemToResponse(view.OrderItem)
	resp.CatalogName = view.CatalogName
	if view.CatalogName != "" {
		resp.CatalogPrice = view.CatalogPrice.StringFixed(2)
	}
	return resp
}

// assertParentViewable проверяет доступ к позиции через её родительский заказ.
func (h *itemHandlers) assertParentViewable(r *http.Request, requester domain.Requester, orderID string) error {
	view, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		return err
	}
	return h.orders.AssertViewable(view.Order, requester)
}

func (h *itemHandlers) create(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromHeaders(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req createItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.OrderID == "" {
		writeError(w, h.logger, domain.ErrOrderIDRequired)
		return
	}

	if err := h.assertParentViewable(r, requester, req.OrderID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: unit_price", domain.ErrAmountInvalid))
		return
	}

	item, err := h.service.Create(r.Context(), orderitems.CreateItemInput{
		OrderID:     req.OrderID,
		Kind:        domain.ItemKind(req.Kind),
		ProductRef:  req.ProductRef,
		ServiceRef:  req.ServiceRef,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   unitPrice,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, itemViewToResponse(item))
}

func (h *itemHandlers) get(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromHeaders(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	view, err := h.service.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.assertParentViewable(r, requester, view.OrderID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, itemViewToResponse(view))
}

func (h *itemHandlers) listByOrder(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromHeaders(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	orderID := mux.Vars(r)["id"]
	if err := h.assertParentViewable(r, requester, orderID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	views, err := h.service.ListByOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := make([]itemResponse, 0, len(views))
	for _, view := range views {
		resp = append(resp, itemViewToResponse(view))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *itemHandlers) update(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromHeaders(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id := mux.Vars(r)["id"]

	view, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.assertParentViewable(r, requester, view.OrderID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req patchItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	patch := domain.OrderItemPatch{
		Quantity:    req.Quantity,
		Description: req.Description,
	}
	if req.UnitPrice != nil {
		unitPrice, err := decimal.NewFromString(*req.UnitPrice)
		if err != nil {
			writeError(w, h.logger, fmt.Errorf("%w: unit_price", domain.ErrAmountInvalid))
			return
		}
		patch.UnitPrice = &unitPrice
	}

	item, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, itemToResponse(item))
}

func (h *itemHandlers) delete(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromHeaders(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	id := mux.Vars(r)["id"]

	view, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.assertParentViewable(r, requester, view.OrderID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
