/*
handlers.go - HTTP API handlers for the wager engine

PURPOSE:
  Exposes the parser, the calculators and match storage via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic. Handlers hold no game rules of their own.

ENDPOINTS:
  Wagers:
    POST   /api/wagers/parse              Free text -> config (422 ask_again)
    POST   /api/wagers/describe           Config -> canonical description

  Settlement:
    POST   /api/settle                    Settle a round without storing it
    POST   /api/obligations/consolidate   Net raw obligations into a plan

  Courses and players:
    GET    /api/courses                   List courses
    POST   /api/courses                   Create course with holes and tees
    GET    /api/courses/{id}              Get course
    GET    /api/players                   List players
    POST   /api/players                   Register player

  Matches:
    GET    /api/matches                   List matches
    POST   /api/matches                   Create match
    GET    /api/matches/{id}              Get match with running totals
    PUT    /api/matches/{id}/scores       Record one hole score
    POST   /api/matches/{id}/settle       Settle from current scores, store run
    GET    /api/matches/{id}/settlements  Stored runs, oldest first

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, negative stakes, bad scores, duplicate names
  - 404: Match, course, player or scenario not found
  - 422: Wager text with no recognizable bet (code "ask_again")
  - 500: Internal errors

SECURITY NOTE:
  No authentication. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/wager-engine/engine"
	"github.com/warp/wager-engine/games"
	"github.com/warp/wager-engine/matchfile"
	"github.com/warp/wager-engine/parser"
	"github.com/warp/wager-engine/settlement"
	"github.com/warp/wager-engine/wager"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeAskAgain       = "ask_again"
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeInternal       = "internal_error"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   wager.MatchStore
	Logger  *slog.Logger
	Metrics *Metrics

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler. metrics may be nil.
func NewHandler(store wager.MatchStore, logger *slog.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Store: store, Logger: logger, Metrics: metrics}
}

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// WAGER HANDLERS
// =============================================================================

// ParseWager reads a config out of free-form text.
// POST /api/wagers/parse
func (h *Handler) ParseWager(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cfg := parser.Parse(req.Text)
	h.Metrics.ObserveParse(cfg != nil)
	if cfg == nil {
		h.Logger.DebugContext(r.Context(), "no wager recognized", "text", req.Text)
		writeError(w, http.StatusUnprocessableEntity,
			"No bet found in that text, please ask again", wager.ErrUnparseableWager)
		return
	}

	writeJSON(w, http.StatusOK, parser.ToJSON(*cfg))
}

// DescribeWager renders a config as canonical bet text.
// POST /api/wagers/describe
func (h *Handler) DescribeWager(w http.ResponseWriter, r *http.Request) {
	var cj parser.ConfigJSON
	if !decodeBody(w, r, &cj) {
		return
	}

	cfg, err := parser.FromJSON(cj)
	if err != nil {
		h.fail(w, r, "Invalid wager config", err)
		return
	}

	bets := parser.Phrases(cfg)
	if bets == nil {
		bets = []string{}
	}
	writeJSON(w, http.StatusOK, DescribeResponse{Description: parser.Describe(cfg), Bets: bets})
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// Settle settles a round sent in the request body. Nothing is stored.
// POST /api/settle
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cfg, err := resolveConfig(req.Config, req.Wager)
	if err != nil {
		h.fail(w, r, "Invalid wager", err)
		return
	}

	holes := append([]wager.Hole(nil), req.Holes...)
	if len(holes) == 0 {
		for i, par := range req.Pars {
			holes = append(holes, wager.Hole{Number: i + 1, Par: par})
		}
	}
	course := wager.Course{Holes: holes, Tees: req.Tees}
	if err := wager.ValidateHoles(course.Holes); err != nil {
		h.fail(w, r, "Invalid holes", err)
		return
	}
	wager.SortHoles(course.Holes)

	players, err := buildPlayers(req.Players, course)
	if err != nil {
		h.fail(w, r, "Invalid players", err)
		return
	}
	m := wager.Match{Players: players, Handicaps: req.Handicaps}
	if err := m.ValidateRoster(); err != nil {
		h.fail(w, r, "Invalid players", err)
		return
	}

	input := engine.ForMatch(m, course)
	input.Scorelines = req.Scorelines
	out, err := engine.Settle(cfg, input)
	if err != nil {
		h.fail(w, r, "Failed to settle", err)
		return
	}
	h.Metrics.ObserveSettlement(SourceStateless, out)

	writeJSON(w, http.StatusOK, toSettlementDTO(out))
}

// ConsolidateObligations nets a list of raw obligations.
// POST /api/obligations/consolidate
func (h *Handler) ConsolidateObligations(w http.ResponseWriter, r *http.Request) {
	var dtos []ObligationDTO
	if !decodeBody(w, r, &dtos) {
		return
	}

	obligations, err := fromObligationDTOs(dtos)
	if err != nil {
		h.fail(w, r, "Invalid obligations", err)
		return
	}

	writeJSON(w, http.StatusOK, toConsolidatedDTO(settlement.Consolidate(obligations)))
}

// =============================================================================
// COURSE HANDLERS
// =============================================================================

// ListCourses returns all courses.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Store.ListCourses(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list courses", err)
		return
	}

	dtos := make([]CourseDTO, len(courses))
	for i, c := range courses {
		dtos[i] = toCourseDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCourse returns a single course.
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.Store.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get course", err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseDTO(*course))
}

// CreateCourse creates or replaces a course.
func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if err := wager.ValidateHoles(req.Holes); err != nil {
		h.fail(w, r, "Invalid holes", err)
		return
	}

	course := wager.Course{ID: req.ID, Name: req.Name, Holes: req.Holes, Tees: req.Tees}
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	wager.SortHoles(course.Holes)

	if err := h.Store.SaveCourse(r.Context(), course); err != nil {
		h.fail(w, r, "Failed to create course", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCourseDTO(course))
}

// =============================================================================
// PLAYER HANDLERS
// =============================================================================

// ListPlayers returns all registered players.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.Store.ListPlayers(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list players", err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// CreatePlayer registers a player. Names are unique.
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	p := wager.Player{ID: req.ID, Name: req.Name, HandicapIndex: req.HandicapIndex}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := h.Store.SavePlayer(r.Context(), p); err != nil {
		h.fail(w, r, "Failed to create player", err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// =============================================================================
// MATCH HANDLERS
// =============================================================================

// ListMatches returns all matches.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matches, err := h.Store.ListMatches(ctx)
	if err != nil {
		h.fail(w, r, "Failed to list matches", err)
		return
	}

	dtos := make([]MatchDTO, 0, len(matches))
	for _, m := range matches {
		course, err := h.Store.GetCourse(ctx, m.CourseID)
		if err != nil {
			h.fail(w, r, "Failed to get course for match "+m.ID, err)
			return
		}
		dtos = append(dtos, toMatchDTO(m, *course))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateMatch creates a match on a stored course.
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var req CreateMatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()

	course, err := h.Store.GetCourse(ctx, req.CourseID)
	if err != nil {
		h.fail(w, r, "Failed to get course", err)
		return
	}
	cfg, err := resolveConfig(req.Config, req.Wager)
	if err != nil {
		h.fail(w, r, "Invalid wager", err)
		return
	}
	players, err := buildPlayers(req.Players, *course)
	if err != nil {
		h.fail(w, r, "Invalid players", err)
		return
	}

	m := wager.Match{
		ID:        req.ID,
		Name:      req.Name,
		CourseID:  course.ID,
		WagerText: req.Wager,
		Config:    cfg,
		Handicaps: req.Handicaps,
		Players:   players,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := h.Store.SaveMatch(ctx, m); err != nil {
		h.fail(w, r, "Failed to create match", err)
		return
	}

	h.Logger.InfoContext(ctx, "match created", "match", m.ID, "players", len(m.Players), "bets", parser.Describe(cfg))
	writeJSON(w, http.StatusCreated, toMatchDTO(m, *course))
}

// GetMatch returns a match with running totals.
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, course, err := h.loadMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to get match", err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchDTO(*m, *course))
}

// RecordScore records one hole score and returns the updated match.
// PUT /api/matches/{id}/scores
func (h *Handler) RecordScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.Store.SetScore(ctx, id, req.Player, req.Hole, req.Strokes); err != nil {
		h.fail(w, r, "Failed to record score", err)
		return
	}

	m, course, err := h.loadMatch(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to get match", err)
		return
	}
	writeJSON(w, http.StatusOK, toMatchDTO(*m, *course))
}

// SettleMatch settles a match from its current scores and stores the run.
// POST /api/matches/{id}/settle
func (h *Handler) SettleMatch(w http.ResponseWriter, r *http.Request) {
	out, run, err := h.settleMatch(r.Context(), chi.URLParam(r, "id"), SourceMatch)
	if err != nil {
		h.fail(w, r, "Failed to settle match", err)
		return
	}
	writeJSON(w, http.StatusCreated, MatchSettlementDTO{RunID: run.ID, SettlementDTO: toSettlementDTO(out)})
}

// ListSettlements returns a match's stored runs, oldest first.
// GET /api/matches/{id}/settlements
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.SettlementRuns(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to list settlements", err)
		return
	}

	dtos := make([]SettlementRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// settleMatch computes a match's settlement and appends it as a new run.
func (h *Handler) settleMatch(ctx context.Context, id, source string) (engine.Settlement, wager.SettlementRun, error) {
	m, course, err := h.loadMatch(ctx, id)
	if err != nil {
		return engine.Settlement{}, wager.SettlementRun{}, err
	}
	out, err := engine.Settle(m.Config, engine.ForMatch(*m, *course))
	if err != nil {
		return engine.Settlement{}, wager.SettlementRun{}, err
	}

	run := wager.SettlementRun{
		ID:           uuid.NewString(),
		MatchID:      m.ID,
		Obligations:  out.Obligations,
		Consolidated: out.Consolidated,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := h.Store.AppendSettlementRun(ctx, run); err != nil {
		return engine.Settlement{}, wager.SettlementRun{}, fmt.Errorf("failed to store settlement run: %w", err)
	}
	h.Metrics.ObserveSettlement(source, out)

	h.Logger.InfoContext(ctx, "match settled",
		"match", m.ID,
		"source", source,
		"run", run.ID,
		"obligations", len(out.Obligations),
		"transfers", out.Consolidated.Transfers(),
	)
	return out, run, nil
}

func (h *Handler) loadMatch(ctx context.Context, id string) (*wager.Match, *wager.Course, error) {
	m, err := h.Store.GetMatch(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	course, err := h.Store.GetCourse(ctx, m.CourseID)
	if err != nil {
		return nil, nil, fmt.Errorf("match %s: %w", id, err)
	}
	return m, course, nil
}

// =============================================================================
// REQUEST HELPERS
// =============================================================================

// resolveConfig picks the structured config when present, else parses text.
func resolveConfig(cj *parser.ConfigJSON, text string) (wager.WagerConfig, error) {
	if cj != nil {
		return parser.FromJSON(*cj)
	}
	return parser.ParseStrict(text)
}

// buildPlayers turns roster entries into match players. Scores are padded
// to the course length and course handicaps come from each player's tee.
func buildPlayers(reqs []MatchPlayerRequest, course wager.Course) ([]wager.MatchPlayer, error) {
	players := make([]wager.MatchPlayer, len(reqs))
	for i, p := range reqs {
		if len(p.Scores) > len(course.Holes) {
			return nil, &wager.ConfigError{Field: "players", Message: fmt.Sprintf("%s has more scores than holes", p.Name)}
		}
		scores := make([]int, len(course.Holes))
		for h, s := range p.Scores {
			if s < 0 {
				return nil, &wager.ScoreError{Player: p.Name, Hole: h + 1, Strokes: s, Reason: "strokes cannot be negative"}
			}
			scores[h] = s
		}
		players[i] = wager.MatchPlayer{
			PlayerRef:      wager.PlayerRef{Name: p.Name, Team: p.Team},
			Tee:            p.Tee,
			HandicapIndex:  p.HandicapIndex,
			CourseHandicap: games.CourseHandicap(p.HandicapIndex, course.Tee(p.Tee)),
			Scores:         scores,
		}
	}
	return players, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// fail maps a domain error to its HTTP status. Only 5xx responses are
// logged as errors.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wager.ErrUnparseableWager):
		status = http.StatusUnprocessableEntity
	case wager.IsNotFound(err), errors.Is(err, matchfile.ErrUnknownScenario):
		status = http.StatusNotFound
	case wager.IsClientError(err):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), message, "error", err, "path", r.URL.Path)
	} else {
		h.Logger.DebugContext(r.Context(), message, "error", err, "status", status)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status, err)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func errorCode(status int, err error) string {
	switch {
	case errors.Is(err, wager.ErrUnparseableWager):
		return CodeAskAgain
	case status == http.StatusNotFound:
		return CodeNotFound
	case status >= 500:
		return CodeInternal
	default:
		return CodeInvalidRequest
	}
}
