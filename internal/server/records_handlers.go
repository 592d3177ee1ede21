package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/policy"
	"github.com/tablehost/restaurantapi/internal/services/records"
)

const opLevelMessage = "Must query with '1' or '2' to find that information."

type recordHandlers struct {
	operators *records.Operators
	customers *records.Customers
	inventory *records.Inventory
	orders    *records.Orders
	logger    *zap.Logger
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeList responds 204 with no body when items is empty.
func writeList[T any](w http.ResponseWriter, items []T) {
	if len(items) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// decodeBody reads exactly one JSON object. An empty body decodes to an empty object.
// Numbers are kept as json.Number for the validator.
func decodeBody(r *http.Request) (map[string]any, error) {
	body := map[string]any{}
	if r.Body == nil {
		return body, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, domain.ErrBadRequest("Request body must be a JSON object.")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.ErrBadRequest("Request body must be a JSON object.")
	}
	return body, nil
}

func pathID(r *http.Request) string {
	return strings.ToLower(chi.URLParam(r, "id"))
}

func (h *recordHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

// Operators

func (h *recordHandlers) listOperators(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("op_lvl")
	level, err := strconv.Atoi(raw)
	if err != nil || (level != 1 && level != 2) {
		h.fail(w, r, domain.ErrBadRequest(opLevelMessage))
		return
	}
	ops, err := h.operators.List(r.Context(), level)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, ops)
}

func (h *recordHandlers) getOperator(w http.ResponseWriter, r *http.Request) {
	op, err := h.operators.Get(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

func (h *recordHandlers) createOperator(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	op, err := h.operators.Create(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, op)
}

func (h *recordHandlers) updateOperator(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	op, err := h.operators.Update(r.Context(), pathID(r), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

func (h *recordHandlers) deleteOperator(w http.ResponseWriter, r *http.Request) {
	if err := h.operators.Delete(r.Context(), pathID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully deleted admin record."})
}

// Customers

func (h *recordHandlers) listCustomers(w http.ResponseWriter, r *http.Request) {
	cxs, err := h.customers.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, cxs)
}

func (h *recordHandlers) getCustomer(w http.ResponseWriter, r *http.Request) {
	cx, err := h.customers.Get(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cx)
}

func (h *recordHandlers) createCustomer(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cx, err := h.customers.Create(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cx)
}

func (h *recordHandlers) updateCustomer(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cx, err := h.customers.Update(r.Context(), pathID(r), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cx)
}

func (h *recordHandlers) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), pathID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully deleted customer record."})
}

// Orders

func (h *recordHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, orders)
}

func (h *recordHandlers) listOrdersByOwner(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByOwner(r.Context(), r.URL.Query().Get(policy.QueryOwnerParam))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, orders)
}

func (h *recordHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *recordHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	order, err := h.orders.Create(r.Context(), r.URL.Query().Get(policy.QueryOwnerParam), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *recordHandlers) updateOrder(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	order, err := h.orders.Update(r.Context(), pathID(r), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *recordHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), pathID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully deleted order record."})
}

// Inventory

func (h *recordHandlers) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeList(w, items)
}

func (h *recordHandlers) getInventory(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventory.Get(r.Context(), pathID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *recordHandlers) createInventory(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.inventory.Create(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *recordHandlers) updateInventory(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	item, err := h.inventory.Update(r.Context(), pathID(r), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *recordHandlers) deleteInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Delete(r.Context(), pathID(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted record successfully."})
}
