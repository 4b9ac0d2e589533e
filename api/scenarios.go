/*
scenarios.go - Demo scenarios for showcasing the wager engine

PURPOSE:
  Loads a ready-made round into the store so the UI has something to show
  without entering eighteen holes by hand. Each scenario is an embedded
  match file (matchfile/scenarios/*.yaml) with a course, a roster, scores
  and the bets.

AVAILABLE SCENARIOS:
  nassau-four-ball   Two-man teams, $5 Nassau, split result
  skins-and-birdies  Threesome, skins and birdies, no teams
  handicap-match     Singles with full handicaps, 5/5/10 and eagles

LOADING:
  Loading a scenario resets the store first. The scenario's players are
  registered, its course and match saved, and the match settled once so
  the settlement history is not empty.

SEE ALSO:
  - matchfile/scenarios.go: Embedded files
  - handlers.go: Match endpoints used after loading
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/warp/wager-engine/matchfile"
	"github.com/warp/wager-engine/wager"
)

// ListScenarios returns all available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	files, err := matchfile.Scenarios()
	if err != nil {
		h.fail(w, r, "Failed to list scenarios", err)
		return
	}

	dtos := make([]ScenarioDTO, len(files))
	for i, f := range files {
		dtos[i] = toScenarioDTO(f)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	f, err := matchfile.Scenario(current)
	if err != nil {
		h.fail(w, r, "Failed to get scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioDTO(f))
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.loadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario %q", req.ScenarioID), err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, id string) (LoadScenarioResponse, error) {
	f, err := matchfile.Scenario(id)
	if err != nil {
		return LoadScenarioResponse{}, err
	}
	round, err := f.Build()
	if err != nil {
		return LoadScenarioResponse{}, fmt.Errorf("scenario %s: %w", id, err)
	}

	if err := h.Store.Reset(ctx); err != nil {
		return LoadScenarioResponse{}, fmt.Errorf("failed to reset database: %w", err)
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	for _, p := range round.Match.Players {
		player := wager.Player{ID: uuid.NewString(), Name: p.Name, HandicapIndex: p.HandicapIndex}
		if err := h.Store.SavePlayer(ctx, player); err != nil {
			return LoadScenarioResponse{}, err
		}
	}
	if err := h.Store.SaveCourse(ctx, round.Course); err != nil {
		return LoadScenarioResponse{}, err
	}
	if err := h.Store.SaveMatch(ctx, round.Match); err != nil {
		return LoadScenarioResponse{}, err
	}
	if _, _, err := h.settleMatch(ctx, round.Match.ID, SourceMatch); err != nil {
		return LoadScenarioResponse{}, err
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()

	h.Logger.InfoContext(ctx, "scenario loaded", "scenario", id, "match", round.Match.ID)
	return LoadScenarioResponse{Scenario: id, CourseID: round.Course.ID, MatchID: round.Match.ID}, nil
}

func toScenarioDTO(f *matchfile.File) ScenarioDTO {
	return ScenarioDTO{ID: f.ID, Name: f.Name, Description: f.Description, Wager: f.Wager}
}
