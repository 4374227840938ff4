package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/services"
)

type SettingsHandler struct {
	tournamentService *services.TournamentService
}

func NewSettingsHandler(ts *services.TournamentService) *SettingsHandler {
	return &SettingsHandler{tournamentService: ts}
}

// ListHandler godoc
// @Summary Tournament presets
// @Tags settings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /settings [get]
func (h *SettingsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	settings := h.tournamentService.ListSettings()
	if err := writeJSON(w, http.StatusOK, jsonResponse{"settings": settings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
