package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/grocery"
	"github.com/dukerupert/mercando/internal/model"
	"github.com/dukerupert/mercando/internal/service"
	"github.com/dukerupert/mercando/internal/viewstate"
	"github.com/dukerupert/mercando/internal/websocket"
)

type ListHandler struct {
	svc    *service.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewListHandler(svc *service.Service, hub *websocket.Hub, logger *slog.Logger) *ListHandler {
	return &ListHandler{svc: svc, hub: hub, logger: logger}
}

// notify sends a toast event to the user's other connections.
func (h *ListHandler) notify(r *http.Request, action string, id int64, toast string) {
	if h.hub != nil {
		h.hub.SendTo(auth.UserID(r.Context()), websocket.NewMessage("list", action, id, toast))
	}
}

// ownedList loads the list named by the id path value and checks that the
// caller owns it. Lists of other users are reported as not found.
func ownedList(w http.ResponseWriter, r *http.Request, svc *service.Service, logger *slog.Logger) (*model.List, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	l, err := svc.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, logger, "get list", err)
		return nil, false
	}
	if l.OwnerUserID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, viewstate.MsgNotFound)
		return nil, false
	}
	return l, true
}

type listRequest struct {
	Name string `json:"name"`
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.svc.ActiveListsWithItems(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "list lists", err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.svc.CreateList(r.Context(), req.Name, auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "create list", err)
		return
	}

	l, err := h.svc.List(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, "get list", err)
		return
	}
	toast := viewstate.ListCreated(l.Name)
	h.notify(r, "created", id, toast)
	writeJSON(w, http.StatusCreated, map[string]any{"list": l, "message": toast})
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	detail, err := h.svc.ListDetail(r.Context(), l.ID)
	if err != nil {
		writeServiceError(w, h.logger, "get list detail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	var req listRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.RenameList(r.Context(), l.ID, req.Name); err != nil {
		writeServiceError(w, h.logger, "rename list", err)
		return
	}
	h.notify(r, "renamed", l.ID, viewstate.ToastListRenamed)
	writeMessage(w, http.StatusOK, viewstate.ToastListRenamed)
}

type copyRequest struct {
	Name   string `json:"name"`
	Filter string `json:"filter"`
}

func (h *ListHandler) Copy(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	var req copyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	filter, err := model.ParseCopyFilter(req.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, found, err := h.svc.CopyList(r.Context(), l.ID, req.Name, filter)
	if err != nil {
		writeServiceError(w, h.logger, "copy list", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, viewstate.MsgNotFound)
		return
	}

	toast := viewstate.ListCopied(filter)
	h.notify(r, "copied", id, toast)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "message": toast})
}

func (h *ListHandler) Stats(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	purchased, total, err := h.svc.StatsFor(r.Context(), l.ID)
	if err != nil {
		writeServiceError(w, h.logger, "list stats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"purchased":        purchased,
		"total":            total,
		"progress_percent": model.Progress(purchased, total),
	})
}

func (h *ListHandler) Trash(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	if err := h.svc.SoftDelete(r.Context(), l.ID); err != nil {
		writeServiceError(w, h.logger, "trash list", err)
		return
	}
	h.notify(r, "trashed", l.ID, viewstate.ToastListTrashed)
	writeMessage(w, http.StatusOK, viewstate.ToastListTrashed)
}

func (h *ListHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	lists, err := h.svc.TrashedLists(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "list trash", err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) Restore(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	if err := h.svc.Restore(r.Context(), l.ID); err != nil {
		writeServiceError(w, h.logger, "restore list", err)
		return
	}
	h.notify(r, "restored", l.ID, viewstate.ToastListRestored)
	writeMessage(w, http.StatusOK, viewstate.ToastListRestored)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	l, ok := ownedList(w, r, h.svc, h.logger)
	if !ok {
		return
	}
	if err := h.svc.HardDelete(r.Context(), l.ID); err != nil {
		writeServiceError(w, h.logger, "delete list", err)
		return
	}
	h.notify(r, "deleted", l.ID, viewstate.ToastListDeleted)
	writeMessage(w, http.StatusOK, viewstate.ToastListDeleted)
}

func (h *ListHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.EmptyTrash(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "empty trash", err)
		return
	}
	h.notify(r, "trash_emptied", 0, viewstate.ToastTrashEmptied)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n, "message": viewstate.ToastTrashEmptied})
}

type bulkRequest struct {
	IDs []int64 `json:"ids"`
}

// decodeOwnedIDs reads a bulk selection and checks that every list in it
// belongs to the caller.
func (h *ListHandler) decodeOwnedIDs(w http.ResponseWriter, r *http.Request) ([]int64, bool) {
	var req bulkRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return nil, false
	}
	uid := auth.UserID(r.Context())
	for _, id := range req.IDs {
		l, err := h.svc.List(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.logger, "get list", err)
			return nil, false
		}
		if l.OwnerUserID != uid {
			writeError(w, http.StatusNotFound, viewstate.MsgNotFound)
			return nil, false
		}
	}
	return req.IDs, true
}

func (h *ListHandler) TrashMany(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, "trashed", viewstate.ToastListsTrashed, h.svc.SoftDeleteMany)
}

func (h *ListHandler) RestoreMany(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, "restored", viewstate.ToastListsRestored, h.svc.RestoreMany)
}

func (h *ListHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, "deleted", viewstate.ToastListsDeleted, h.svc.HardDeleteMany)
}

func (h *ListHandler) bulk(w http.ResponseWriter, r *http.Request, action, toast string, apply func(ctx context.Context, ids []int64) error) {
	ids, ok := h.decodeOwnedIDs(w, r)
	if !ok {
		return
	}
	if err := apply(r.Context(), ids); err != nil {
		writeServiceError(w, h.logger, "bulk "+action, err)
		return
	}
	h.notify(r, action, 0, toast)
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids, "message": toast})
}

func Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, grocery.Categories)
}
