package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/knockout-arena/middleware"
	"github.com/Dosada05/knockout-arena/services"
)

type WagerHandler struct {
	wagerService services.WagerService
}

func NewWagerHandler(wagerService services.WagerService) *WagerHandler {
	return &WagerHandler{wagerService: wagerService}
}

func (h *WagerHandler) Book(w http.ResponseWriter, r *http.Request) {
	book := h.wagerService.Book(r.Context())
	writeJSON(w, http.StatusOK, jsonResponse{"bets": book}, nil)
}

// Place ставит от имени аутентифицированного игрока; повторная ставка на ту
// же цель замещает предыдущую.
func (h *WagerHandler) Place(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, errors.New("missing authentication claims"))
		return
	}

	var input struct {
		Target string `json:"target"`
		Amount int    `json:"amount"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	balance, err := h.wagerService.Place(r.Context(), claims.Username, input.Target, input.Amount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{
		"message": "bet placed",
		"balance": balance,
	}, nil)
}

func (h *WagerHandler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")
	bettor := chi.URLParam(r, "bettor")

	if err := h.wagerService.AdminCancel(r.Context(), target, bettor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "bet cancelled and refunded"}, nil)
}
