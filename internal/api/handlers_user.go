package api

import (
	"net/http"

	"github.com/Henok-Aragaw/echo/internal/api/respond"
	"github.com/Henok-Aragaw/echo/internal/services"
)

type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler { return &UserHandler{svc: svc} }

// GetProfile GET /api/user/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	u, err := h.svc.Profile(r.Context(), sess)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User profile retrieved",
		"user":    u,
	})
}

// DeleteAccount DELETE /api/user/me
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	if err := h.svc.Delete(r.Context(), sess); err != nil {
		respond.WriteInternalError(w, "Failed to delete account")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}
