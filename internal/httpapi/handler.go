// Package httpapi exposes the shop over JSON/HTTP.
package httpapi

import (
	"context"
	"net/http"

	"agrishop-be/internal/checkout"
	"agrishop-be/internal/content"
	"agrishop-be/internal/order"
	"agrishop-be/internal/product"
)

// Authenticator exchanges admin credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type Handler struct {
	Products product.Service
	Orders   order.Service
	Checkout checkout.Coordinator
	Auth     Authenticator

	AboutUs  content.Service[*content.AboutUs]
	Services content.Service[*content.ConsultingService]
	Projects content.Service[*content.Project]
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token})
}
