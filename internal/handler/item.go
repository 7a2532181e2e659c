package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/model"
	"github.com/dukerupert/mercando/internal/service"
	"github.com/dukerupert/mercando/internal/viewstate"
	"github.com/dukerupert/mercando/internal/websocket"
)

type ItemHandler struct {
	svc    *service.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewItemHandler(svc *service.Service, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, hub: hub, logger: logger}
}

func (h *ItemHandler) notify(r *http.Request, action string, id int64, toast string) {
	if h.hub != nil {
		h.hub.SendTo(auth.UserID(r.Context()), websocket.NewMessage("item", action, id, toast))
	}
}

type itemRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Quantity int      `json:"quantity"`
	Price    *float64 `json:"price"`
	Notes    *string  `json:"notes"`
}

// ownedItem loads the item named by the id path value and checks that the
// list holding it belongs to the caller.
func (h *ItemHandler) ownedItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	it, err := h.svc.Item(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "get item", err)
		return nil, false
	}
	l, err := h.svc.List(r.Context(), it.ListID)
	if err != nil {
		writeServiceError(w, h.logger, "get list", err)
		return nil, false
	}
	if l.OwnerUserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, viewstate.MsgNotFound)
		return nil, false
	}
	return it, true
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.svc.AddItem(r.Context(), service.NewItem{
		ListID:   l.ID,
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		Price:    req.Price,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, h.logger, "add item", err)
		return
	}

	it, err := h.svc.Item(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "get item", err)
		return
	}
	toast := viewstate.ItemAdded(it.Name)
	h.notify(r, "created", id, toast)
	writeJSON(w, http.StatusCreated, map[string]any{"item": it, "message": toast})
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	items, err := h.svc.ItemsInList(r.Context(), l.ID)
	if err != nil {
		writeServiceError(w, h.logger, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	it, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it.Name = req.Name
	if req.Category != "" {
		it.Category = req.Category
	}
	if req.Quantity != 0 {
		it.Quantity = req.Quantity
	}
	it.Price = req.Price
	it.Notes = req.Notes

	if err := h.svc.UpdateItem(r.Context(), it); err != nil {
		writeServiceError(w, h.logger, "update item", err)
		return
	}
	h.notify(r, "updated", it.ID, "")
	writeJSON(w, http.StatusOK, it)
}

func (h *ItemHandler) SetPurchased(w http.ResponseWriter, r *http.Request) {
	it, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	var req struct {
		Purchased bool `json:"purchased"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.MarkItemPurchased(r.Context(), it.ID, req.Purchased); err != nil {
		writeServiceError(w, h.logger, "mark purchased", err)
		return
	}
	it.Purchased = req.Purchased
	writeJSON(w, http.StatusOK, it)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	it, ok := h.ownedItem(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(r.Context(), it); err != nil {
		writeServiceError(w, h.logger, "delete item", err)
		return
	}
	toast := viewstate.ItemDeleted(it.Name)
	h.notify(r, "deleted", it.ID, toast)
	writeMessage(w, http.StatusOK, toast)
}

func (h *ItemHandler) ClearPurchased(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	n, err := h.svc.DeletePurchasedItems(r.Context(), l.ID)
	if err != nil {
		writeServiceError(w, h.logger, "clear purchased", err)
		return
	}
	h.notify(r, "cleared", l.ID, viewstate.ToastPurchasedClear)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": n, "message": viewstate.ToastPurchasedClear})
}
