package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/knockout-arena/models"
	"github.com/Dosada05/knockout-arena/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// GetState отдаёт полный снимок сетки; тот же payload уходит в событие
// tournament-state по вебсокету.
func (h *TournamentHandler) GetState(w http.ResponseWriter, r *http.Request) {
	bracket := h.tournamentService.State(r.Context())
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": bracket}, nil)
}

func (h *TournamentHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.tournamentService.Users(r.Context())
	writeJSON(w, http.StatusOK, jsonResponse{"users": users}, nil)
}

func (h *TournamentHandler) DeclareGroupResult(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	var input struct {
		First  string `json:"first"`
		Second string `json:"second"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeclareGroupResult(r.Context(), group, input.First, input.Second); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "group result declared"}, nil)
}

func (h *TournamentHandler) DeclareMatchWinner(w http.ResponseWriter, r *http.Request) {
	stage, matchID, err := matchRef(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Winner string `json:"winner"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeclareMatchWinner(r.Context(), stage, matchID, input.Winner); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "match winner declared"}, nil)
}

func (h *TournamentHandler) DeclareFinalWinner(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Winner string `json:"winner"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeclareFinalWinner(r.Context(), input.Winner); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "final winner declared"}, nil)
}

func (h *TournamentHandler) ResetGroup(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	if err := h.tournamentService.ResetGroup(r.Context(), group); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "group decision reset"}, nil)
}

func (h *TournamentHandler) ResetMatch(w http.ResponseWriter, r *http.Request) {
	stage, matchID, err := matchRef(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.ResetMatch(r.Context(), stage, matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "match decision reset"}, nil)
}

func (h *TournamentHandler) FullReset(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.FullReset(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "tournament reset to starting configuration"}, nil)
}

func (h *TournamentHandler) ReplaceParticipant(w http.ResponseWriter, r *http.Request) {
	var input struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.ReplaceParticipant(r.Context(), input.OldName, input.NewName); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"message": "participant replaced"}, nil)
}

// matchRef разбирает пару {stage}/{matchID} из URL плей-офф команд.
func matchRef(r *http.Request) (models.Stage, int, error) {
	stage := models.Stage(chi.URLParam(r, "stage"))
	if !stage.Valid() || !stage.Knockout() {
		return "", 0, fmt.Errorf("invalid knockout stage %q", chi.URLParam(r, "stage"))
	}
	matchID, err := strconv.Atoi(chi.URLParam(r, "matchID"))
	if err != nil {
		return "", 0, fmt.Errorf("invalid match id %q", chi.URLParam(r, "matchID"))
	}
	return stage, matchID, nil
}
