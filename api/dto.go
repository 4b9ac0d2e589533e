/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money is decimal
  inside the engine and a plain JSON number here; conversion happens only
  in this file.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Wagers:
    ParseRequest, DescribeResponse (configs use parser.ConfigJSON)

  Settlement:
    SettleRequest, SettlementDTO, MatchSettlementDTO, ObligationDTO,
    ConsolidatedPaymentDTO, BalanceDTO, SettlementRunDTO

  Records:
    CreateCourseRequest, CreatePlayerRequest, CreateMatchRequest,
    MatchDTO, ScoreRequest

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - parser/config.go: ConfigJSON type
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/wager-engine/engine"
	"github.com/warp/wager-engine/games"
	"github.com/warp/wager-engine/parser"
	"github.com/warp/wager-engine/wager"
)

// =============================================================================
// WAGER TYPES
// =============================================================================

// ParseRequest carries free-form wager text.
type ParseRequest struct {
	Text string `json:"text"`
}

// DescribeResponse is the canonical description of a config.
type DescribeResponse struct {
	Description string   `json:"description"`
	Bets        []string `json:"bets"`
}

// =============================================================================
// SETTLEMENT TYPES
// =============================================================================

// ObligationDTO is one raw debt.
type ObligationDTO struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// PayeeDTO is one payment inside a consolidated plan.
type PayeeDTO struct {
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// ConsolidatedPaymentDTO groups one debtor's payments.
type ConsolidatedPaymentDTO struct {
	From   string     `json:"from"`
	Payees []PayeeDTO `json:"payees"`
}

// BalanceDTO is a player's net position. Positive means owed money.
type BalanceDTO struct {
	Player string  `json:"player"`
	Net    float64 `json:"net"`
}

// SegmentDTO is one Nassau segment. Winner is empty on a tie.
type SegmentDTO struct {
	Winner string  `json:"winner"`
	Amount float64 `json:"amount"`
}

// NassauDTO is the Nassau breakdown.
type NassauDTO struct {
	Front9      SegmentDTO `json:"front9"`
	Back9       SegmentDTO `json:"back9"`
	Total       SegmentDTO `json:"total"`
	TotalPayout float64    `json:"total_payout"`
}

// SkinDTO is one skin won.
type SkinDTO struct {
	Hole   int     `json:"hole"`
	Winner string  `json:"winner"`
	Amount float64 `json:"amount"`
}

// AchievementDTO is one birdie or eagle.
type AchievementDTO struct {
	Hole   int     `json:"hole"`
	Player string  `json:"player"`
	Amount float64 `json:"amount"`
}

// SettlementDTO is a full settlement: per-game breakdown and the final plan.
// A game's field is absent when the game was not played.
type SettlementDTO struct {
	Config       parser.ConfigJSON        `json:"config"`
	Description  string                   `json:"description"`
	Scorelines   []games.TeamScoreline    `json:"scorelines,omitempty"`
	Nassau       *NassauDTO               `json:"nassau,omitempty"`
	Skins        []SkinDTO                `json:"skins,omitempty"`
	Birdies      []AchievementDTO         `json:"birdies,omitempty"`
	Eagles       []AchievementDTO         `json:"eagles,omitempty"`
	Obligations  []ObligationDTO          `json:"obligations"`
	Balances     []BalanceDTO             `json:"balances"`
	Consolidated []ConsolidatedPaymentDTO `json:"consolidated"`
	Transfers    int                      `json:"transfers"`
}

// MatchPlayerRequest is one roster entry with its scores so far.
type MatchPlayerRequest struct {
	Name          string  `json:"name"`
	Team          string  `json:"team"`
	Tee           string  `json:"tee,omitempty"`
	HandicapIndex float64 `json:"handicap_index,omitempty"`
	Scores        []int   `json:"scores"`
}

// SettleRequest settles a round without storing anything.
// Holes may be given in full or as a list of pars.
type SettleRequest struct {
	Wager      string                `json:"wager,omitempty"`
	Config     *parser.ConfigJSON    `json:"config,omitempty"`
	Handicaps  wager.HandicapMode    `json:"handicaps,omitempty"`
	Holes      []wager.Hole          `json:"holes,omitempty"`
	Pars       []int                 `json:"pars,omitempty"`
	Tees       []wager.Tee           `json:"tees,omitempty"`
	Players    []MatchPlayerRequest  `json:"players"`
	Scorelines []games.TeamScoreline `json:"scorelines,omitempty"`
}

// MatchSettlementDTO is a stored match settlement with its run ID.
type MatchSettlementDTO struct {
	RunID string `json:"run_id"`
	SettlementDTO
}

// SettlementRunDTO is one stored settlement.
type SettlementRunDTO struct {
	ID           string                   `json:"id"`
	MatchID      string                   `json:"match_id"`
	Obligations  []ObligationDTO          `json:"obligations"`
	Consolidated []ConsolidatedPaymentDTO `json:"consolidated"`
	CreatedAt    string                   `json:"created_at"`
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// CreateCourseRequest creates or replaces a course.
type CreateCourseRequest struct {
	ID    string       `json:"id,omitempty"`
	Name  string       `json:"name"`
	Holes []wager.Hole `json:"holes"`
	Tees  []wager.Tee  `json:"tees,omitempty"`
}

// CourseDTO is a course with its total par.
type CourseDTO struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Par   int          `json:"par"`
	Holes []wager.Hole `json:"holes"`
	Tees  []wager.Tee  `json:"tees"`
}

// CreatePlayerRequest registers a golfer.
type CreatePlayerRequest struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	HandicapIndex float64 `json:"handicap_index"`
}

// CreateMatchRequest creates a match on a stored course.
// Exactly one of Wager and Config should be set; Config wins.
type CreateMatchRequest struct {
	ID        string               `json:"id,omitempty"`
	Name      string               `json:"name"`
	CourseID  string               `json:"course_id"`
	Wager     string               `json:"wager,omitempty"`
	Config    *parser.ConfigJSON   `json:"config,omitempty"`
	Handicaps wager.HandicapMode   `json:"handicaps,omitempty"`
	Players   []MatchPlayerRequest `json:"players"`
}

// MatchPlayerDTO is a roster entry with running totals.
type MatchPlayerDTO struct {
	Name           string       `json:"name"`
	Team           string       `json:"team"`
	Tee            string       `json:"tee,omitempty"`
	HandicapIndex  float64      `json:"handicap_index"`
	CourseHandicap int          `json:"course_handicap"`
	Scores         []int        `json:"scores"`
	Totals         games.Totals `json:"totals"`
	ToPar          string       `json:"to_par"`
}

// MatchDTO is a stored match.
type MatchDTO struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	CourseID    string             `json:"course_id"`
	WagerText   string             `json:"wager_text,omitempty"`
	Config      parser.ConfigJSON  `json:"config"`
	Description string             `json:"description"`
	Handicaps   wager.HandicapMode `json:"handicaps"`
	Players     []MatchPlayerDTO   `json:"players"`
	CreatedAt   string             `json:"created_at,omitempty"`
}

// ScoreRequest records strokes on one hole. Zero clears the hole.
type ScoreRequest struct {
	Player  string `json:"player"`
	Hole    int    `json:"hole"`
	Strokes int    `json:"strokes"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Wager       string `json:"wager,omitempty"`
}

// LoadScenarioRequest names the scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// LoadScenarioResponse points at the records a scenario created.
type LoadScenarioResponse struct {
	Scenario string `json:"scenario"`
	CourseID string `json:"course_id"`
	MatchID  string `json:"match_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toObligationDTOs(obligations []wager.PaymentObligation) []ObligationDTO {
	dtos := make([]ObligationDTO, len(obligations))
	for i, o := range obligations {
		dtos[i] = ObligationDTO{From: o.From, To: o.To, Amount: o.Amount.InexactFloat64(), Reason: o.Reason}
	}
	return dtos
}

func fromObligationDTOs(dtos []ObligationDTO) ([]wager.PaymentObligation, error) {
	obligations := make([]wager.PaymentObligation, len(dtos))
	for i, d := range dtos {
		if d.From == "" || d.To == "" || d.From == d.To {
			return nil, &wager.ConfigError{Field: "obligations", Message: "from and to must be two different players"}
		}
		if d.Amount <= 0 {
			return nil, &wager.ConfigError{Field: "obligations", Message: "amount must be positive"}
		}
		obligations[i] = wager.PaymentObligation{From: d.From, To: d.To, Amount: decimal.NewFromFloat(d.Amount), Reason: d.Reason}
	}
	return obligations, nil
}

func toConsolidatedDTO(plan wager.ConsolidatedSettlement) []ConsolidatedPaymentDTO {
	dtos := make([]ConsolidatedPaymentDTO, len(plan))
	for i, p := range plan {
		payees := make([]PayeeDTO, len(p.Payees))
		for j, payee := range p.Payees {
			payees[j] = PayeeDTO{To: payee.To, Amount: payee.Amount.InexactFloat64(), Reason: payee.Reason}
		}
		dtos[i] = ConsolidatedPaymentDTO{From: p.From, Payees: payees}
	}
	return dtos
}

func toSettlementDTO(s engine.Settlement) SettlementDTO {
	dto := SettlementDTO{
		Config:       parser.ToJSON(s.Config),
		Description:  parser.Describe(s.Config),
		Scorelines:   s.Scorelines,
		Obligations:  toObligationDTOs(s.Obligations),
		Balances:     make([]BalanceDTO, len(s.Balances)),
		Consolidated: toConsolidatedDTO(s.Consolidated),
		Transfers:    s.Consolidated.Transfers(),
	}
	for i, b := range s.Balances {
		dto.Balances[i] = BalanceDTO{Player: b.Player, Net: b.Net.InexactFloat64()}
	}
	if n := s.Nassau; n != nil {
		segment := func(r games.SegmentResult) SegmentDTO {
			return SegmentDTO{Winner: r.Winner, Amount: r.Amount.InexactFloat64()}
		}
		dto.Nassau = &NassauDTO{
			Front9:      segment(n.Front9),
			Back9:       segment(n.Back9),
			Total:       segment(n.Total),
			TotalPayout: n.TotalPayout.InexactFloat64(),
		}
	}
	if s.Skins != nil {
		dto.Skins = make([]SkinDTO, len(s.Skins.Skins))
		for i, sk := range s.Skins.Skins {
			dto.Skins[i] = SkinDTO{Hole: sk.Hole, Winner: sk.Winner, Amount: sk.Amount.InexactFloat64()}
		}
	}
	dto.Birdies = toAchievementDTOs(s.Birdies)
	dto.Eagles = toAchievementDTOs(s.Eagles)
	return dto
}

func toAchievementDTOs(r *games.BonusResult) []AchievementDTO {
	if r == nil {
		return nil
	}
	dtos := make([]AchievementDTO, len(r.Achievements))
	for i, a := range r.Achievements {
		dtos[i] = AchievementDTO{Hole: a.Hole, Player: a.Player, Amount: a.Amount.InexactFloat64()}
	}
	return dtos
}

func toRunDTO(run wager.SettlementRun) SettlementRunDTO {
	return SettlementRunDTO{
		ID:           run.ID,
		MatchID:      run.MatchID,
		Obligations:  toObligationDTOs(run.Obligations),
		Consolidated: toConsolidatedDTO(run.Consolidated),
		CreatedAt:    run.CreatedAt,
	}
}

func toCourseDTO(c wager.Course) CourseDTO {
	dto := CourseDTO{ID: c.ID, Name: c.Name, Holes: c.Holes, Tees: c.Tees}
	if dto.Holes == nil {
		dto.Holes = []wager.Hole{}
	}
	if dto.Tees == nil {
		dto.Tees = []wager.Tee{}
	}
	for _, h := range c.Holes {
		dto.Par += h.Par
	}
	return dto
}

// toMatchDTO renders a match. course supplies the pars for to-par display.
func toMatchDTO(m wager.Match, course wager.Course) MatchDTO {
	holes := engine.ForMatch(m, course).Holes
	dto := MatchDTO{
		ID:          m.ID,
		Name:        m.Name,
		CourseID:    m.CourseID,
		WagerText:   m.WagerText,
		Config:      parser.ToJSON(m.Config),
		Description: parser.Describe(m.Config),
		Handicaps:   m.Handicaps,
		Players:     make([]MatchPlayerDTO, len(m.Players)),
		CreatedAt:   m.CreatedAt,
	}
	for i, p := range m.Players {
		strokes, par := 0, 0
		for h, s := range p.Scores {
			if s > 0 && h < len(holes) {
				strokes += s
				par += holes[h].Par
			}
		}
		dto.Players[i] = MatchPlayerDTO{
			Name:           p.Name,
			Team:           p.Team,
			Tee:            p.Tee,
			HandicapIndex:  p.HandicapIndex,
			CourseHandicap: p.CourseHandicap,
			Scores:         p.Scores,
			Totals:         games.HoleTotals(p.Scores),
			ToPar:          games.FormatToPar(strokes, par),
		}
	}
	return dto
}
