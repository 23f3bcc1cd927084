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
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
)

// OrderService — операции над заказами, нужные HTTP-слою.
type OrderService interface {
	Create(ctx context.Context, input orders.CreateOrderInput) (domain.Order, error)
	GetByID(ctx context.Context, id string) (orders.OrderView, error)
	GetByNumber(ctx context.Context, number string) (orders.OrderView, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]orders.OrderView, error)
	Update(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error)
	Delete(ctx context.Context, id string) error
	AssertViewable(order domain.Order, requester domain.Requester) error
}

type orderHandlers struct {
	service OrderService
	logger  *log.Entry
}

type createOrderRequest struct {
	OwnerID        string `json:"owner_id"`
	Kind           string `json:"kind"`
	Total          string `json:"total"`
	AppointmentRef string `json:"appointment_ref"`
}

type patchOrderRequest struct {
	Kind           *string `json:"kind"`
	Total          *string `json:"total"`
	Status         *string `json:"order_status"`
	PaymentStatus  *string `json:"payment_status"`
	AppointmentRef *string `json:"appointment_ref"`
}

type orderResponse struct {
	ID             string `json:"id"`
	OwnerID        string `json:"owner_id,omitempty"`
	Kind           string `json:"kind"`
	Number         string `json:"number"`
	Total          string `json:"total"`
	Status         string `json:"order_status"`
	PaymentStatus  string `json:"payment_status"`
	AppointmentRef string `json:"appointment_ref,omitempty"`
	CreatedAt      string `json:"created_at"`

	OwnerFirstName string `json:"owner_first_name,omitempty"`
	OwnerLastName  string `json:"owner_last_name,omitempty"`
	OwnerEmail     string `json:"owner_email,omitempty"`
}

func orderToResponse(order domain.Order) orderResponse {
	return orderResponse{
		ID:             order.ID,
		OwnerID:        order.OwnerID,
		Kind:           string(order.Kind),
		Number:         order.Number,
		Total:          order.Total.StringFixed(2),
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		AppointmentRef: order.AppointmentRef,
		CreatedAt:      order.CreatedAt.Format(time.RFC3339),
	}
}

func orderViewToResponse(view orders.OrderView) orderResponse {
	resp := orderToResponse(view.Order)
	resp.OwnerFirstName = view.OwnerFirstName
	resp.OwnerLastName = view.OwnerLastName
	resp.OwnerEmail = view.OwnerEmail
	return resp
}

func (h *orderHandlers) create(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromHeaders(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	// Клиент создаёт заказы только на себя.
	if requester.Role == domain.RoleCustomer {
		req.OwnerID = requester.ID
	}

	total := decimal.Zero
	if req.Total != "" {
		total, err = decimal.NewFromString(req.Total)
		if err != nil {
			writeError(w, h.logger, domain.ErrAmountInvalid)
			return
		}
	}

	order, err := h.service.Create(r.Context(), orders.CreateOrderInput{
		OwnerID:        req.OwnerID,
		Kind:           domain.OrderKind(req.Kind),
		Total:          total,
		AppointmentRef: req.AppointmentRef,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderToResponse(order))
}

// list отдаёт персоналу все заказы, клиенту — только его собственные.
func (h *orderHandlers) list(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromHeaders(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if requester.Role == domain.RoleCustomer {
		ownOrders, err := h.service.ListByOwner(r.Context(), requester.ID)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		resp := make([]orderResponse, 0, len(ownOrders))
		for _, order := range ownOrders {
			resp = append(resp, orderToResponse(order))
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	views, err := h.service.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp := make([]orderResponse, 0, len(views))
	for _, view := range views {
		resp = append(resp, orderViewToResponse(view))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *orderHandlers) get(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.AssertViewable(view.Order, requester); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, orderViewToResponse(view))
}

func (h *orderHandlers) getByNumber(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFromHeaders(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	view, err := h.service.GetByNumber(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.service.AssertViewable(view.Order, requester); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, orderViewToResponse(view))
}

func (h *orderHandlers) update(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.AssertViewable(view.Order, requester); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req patchOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	order, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, orderToResponse(order))
}

func (h *orderHandlers) delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.AssertViewable(view.Order, requester); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toPatch переводит запрос в доменный патч. Неизвестные поля JSON-декодер
// игнорирует, присутствующие валидируются сервисным слоем.
func (r patchOrderRequest) toPatch() (domain.OrderPatch, error) {
	var patch domain.OrderPatch

	if r.Kind != nil {
		kind := domain.OrderKind(*r.Kind)
		patch.Kind = &kind
	}
	if r.Status != nil {
		status := domain.OrderStatus(*r.Status)
		patch.Status = &status
	}
	if r.PaymentStatus != nil {
		status := domain.PaymentStatus(*r.PaymentStatus)
		patch.PaymentStatus = &status
	}
	if r.AppointmentRef != nil {
		patch.AppointmentRef = r.AppointmentRef
	}
	if r.Total != nil {
		total, err := decimal.NewFromString(*r.Total)
		if err != nil {
			return domain.OrderPatch{}, fmt.Errorf("%w: total", domain.ErrAmountInvalid)
		}
		patch.Total = &total
	}

	return patch, nil
}
