package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/knockout-arena/middleware"
	"github.com/Dosada05/knockout-arena/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	history := h.chatService.History(r.Context())
	writeJSON(w, http.StatusOK, jsonResponse{"messages": history}, nil)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, errors.New("missing authentication claims"))
		return
	}

	var input struct {
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.chatService.Send(r.Context(), claims.Username, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"chat_message": message}, nil)
}

func (h *ChatHandler) Mute(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Target  string `json:"target"`
		Minutes int    `json:"minutes"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.chatService.Mute(r.Context(), input.Target, input.Minutes); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "user muted"}, nil)
}

func (h *ChatHandler) Unmute(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Target string `json:"target"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.chatService.Unmute(r.Context(), input.Target); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "user unmuted"}, nil)
}

func (h *ChatHandler) MuteTable(w http.ResponseWriter, r *http.Request) {
	table := h.chatService.MuteTable(r.Context())
	writeJSON(w, http.StatusOK, jsonResponse{"mutes": table}, nil)
}
