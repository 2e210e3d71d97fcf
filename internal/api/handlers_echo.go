package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Henok-Aragaw/echo/internal/api/respond"
	"github.com/Henok-Aragaw/echo/internal/api/validate"
	"github.com/Henok-Aragaw/echo/internal/model"
	"github.com/Henok-Aragaw/echo/internal/services"
)

type EchoHandler struct {
	svc *services.EchoService
}

func NewEchoHandler(svc *services.EchoService) *EchoHandler { return &EchoHandler{svc: svc} }

// ListEchoes GET /api/echoes?cursor
func (h *EchoHandler) ListEchoes(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	page, err := h.svc.List(r.Context(), sess.User.UserID, r.URL.Query().Get("cursor"))
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, page)
}

// GenerateToday POST /api/echoes/today
func (h *EchoHandler) GenerateToday(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	out, err := h.svc.GenerateToday(r.Context(), sess.User.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "no moments captured today")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetEchoByDate GET /api/echoes/{date}
func (h *EchoHandler) GetEchoByDate(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	date := mux.Vars(r)["date"]
	if err := validate.Date(date); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.GetByDate(r.Context(), sess.User.UserID, date)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			respond.WriteNotFound(w, "no memory generated for that day yet")
		case errors.Is(err, model.ErrValidation):
			respond.WriteBadRequest(w, err.Error())
		default:
			respond.WriteInternalError(w, err.Error())
		}
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
