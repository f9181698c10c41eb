package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/knockout-arena/middleware"
	"github.com/Dosada05/knockout-arena/services"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{authService: authService, jwtSecret: jwtSecret}
}

type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input credentialsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.authService.Register(r.Context(), input.Username, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := middleware.GenerateToken(h.jwtSecret, result.Username, result.Role, tokenTTL)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{
		"token":    token,
		"username": result.Username,
		"role":     result.Role,
		"balance":  result.Balance,
	}, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input credentialsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := middleware.GenerateToken(h.jwtSecret, result.Username, result.Role, tokenTTL)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"token":    token,
		"username": result.Username,
		"role":     result.Role,
		"balance":  result.Balance,
	}, nil)
}
