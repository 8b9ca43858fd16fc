package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/domain/session"
	"github.com/riskibarqy/player-scout/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type messageRequest struct {
	UserID  string `json:"user_id" validate:"required,max=128"`
	Message string `json:"message" validate:"max=2000"`
}

type identityRequest struct {
	Source string `json:"source" validate:"required"`
	ID     string `json:"id" validate:"required,max=64"`
}

type profileRequest struct {
	Identities []identityRequest `json:"identities" validate:"required,min=1,max=10,dive"`
}

func (r profileRequest) toIdentities() ([]player.Identity, error) {
	out := make([]player.Identity, 0, len(r.Identities))
	for _, item := range r.Identities {
		tag, err := player.ParseSourceTag(item.Source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidIdentity, err)
		}
		out = append(out, player.Identity{Source: tag, ID: item.ID})
	}
	return out, nil
}

type candidateDTO struct {
	Index       int               `json:"index"`
	Identity    string            `json:"identity"`
	Source      player.SourceTag  `json:"source"`
	SourceID    string            `json:"source_id"`
	DisplayName string            `json:"display_name"`
	Attributes  player.Attributes `json:"attributes"`
	MatchScore  float64           `json:"match_score"`
	AlsoKnownAs []string          `json:"also_known_as,omitempty"`
}

type replyDTO struct {
	Text           string         `json:"text"`
	State          session.State  `json:"state"`
	Input          string         `json:"input,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Candidates     []candidateDTO `json:"candidates,omitempty"`
	Selected       *candidateDTO  `json:"selected,omitempty"`
	Profile        *profileDTO    `json:"profile,omitempty"`
	SessionExpired bool           `json:"session_expired,omitempty"`
	// Outcome names a non-happy turn, e.g. "noMatchFound" or "invalidSelection".
	Outcome string `json:"outcome,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type fieldDTO struct {
	Value      player.Value     `json:"value"`
	Provenance player.SourceTag `json:"provenance"`
}

type profileDTO struct {
	CanonicalName string                `json:"canonical_name"`
	Identities    []string              `json:"identities"`
	Fields        map[string]fieldDTO   `json:"fields"`
	Conflicts     []player.Conflict     `json:"conflicts"`
	Partial       bool                  `json:"partial"`
	Career        *player.CareerSummary `json:"career,omitempty"`
	GeneratedAt   string                `json:"generated_at"`
	Text          string                `json:"text"`
}

type sessionStatusDTO struct {
	UserID         string         `json:"user_id"`
	Active         bool           `json:"active"`
	ConversationID string         `json:"conversation_id,omitempty"`
	State          session.State  `json:"state"`
	Query          string         `json:"query,omitempty"`
	Candidates     []candidateDTO `json:"candidates,omitempty"`
	Selected       *candidateDTO  `json:"selected,omitempty"`
	IdleSeconds    int64          `json:"idle_seconds"`
	ExpiresIn      int64          `json:"expires_in_seconds"`
}

func candidateToDTO(index int, c player.Candidate) candidateDTO {
	aka := make([]string, 0, len(c.AlsoKnownAs))
	for _, ident := range c.AlsoKnownAs {
		aka = append(aka, ident.String())
	}
	return candidateDTO{
		Index:       index,
		Identity:    c.Identity().String(),
		Source:      c.Source,
		SourceID:    c.SourceID,
		DisplayName: c.DisplayName,
		Attributes:  c.Attributes,
		MatchScore:  c.Score,
		AlsoKnownAs: aka,
	}
}

func candidatesToDTO(items []player.Candidate) []candidateDTO {
	if len(items) == 0 {
		return nil
	}
	out := make([]candidateDTO, 0, len(items))
	for i, c := range items {
		out = append(out, candidateToDTO(i+1, c))
	}
	return out
}

// selectedToDTO keeps the list position of the selected candidate when it is still listed.
func selectedToDTO(selected *player.Candidate, list []player.Candidate) *candidateDTO {
	if selected == nil {
		return nil
	}
	index := 0
	for i, c := range list {
		if c.Identity() == selected.Identity() {
			index = i + 1
			break
		}
	}
	out := candidateToDTO(index, *selected)
	return &out
}

func profileToDTO(p player.PlayerProfile) profileDTO {
	ids := make([]string, 0, len(p.Identities))
	for _, ident := range p.Identities {
		ids = append(ids, ident.String())
	}
	fields := make(map[string]fieldDTO, len(p.Fields))
	for name, f := range p.Fields {
		fields[name] = fieldDTO{Value: f.Value, Provenance: f.Provenance}
	}
	conflicts := p.Conflicts
	if conflicts == nil {
		conflicts = []player.Conflict{}
	}
	return profileDTO{
		CanonicalName: p.CanonicalName,
		Identities:    ids,
		Fields:        fields,
		Conflicts:     conflicts,
		Partial:       p.Partial,
		Career:        p.Career,
		GeneratedAt:   p.GeneratedAt.UTC().Format(time.RFC3339),
		Text:          usecase.RenderProfile(p),
	}
}

func replyToDTO(ctx context.Context, reply usecase.Reply) replyDTO {
	out := replyDTO{
		Text:           reply.Text,
		State:          reply.State,
		Input:          string(reply.Input),
		ConversationID: reply.ConversationID,
		Candidates:     candidatesToDTO(reply.Candidates),
		Selected:       selectedToDTO(reply.Selected, reply.Candidates),
		SessionExpired: reply.SessionExpired,
	}
	if reply.Profile != nil {
		profile := profileToDTO(*reply.Profile)
		out.Profile = &profile
	}
	if reply.Err != nil {
		out.Outcome = mapError(ctx, reply.Err).Reason
		out.Detail = reply.Err.Error()
	}
	return out
}

func sessionStatusToDTO(st usecase.SessionStatus) sessionStatusDTO {
	return sessionStatusDTO{
		UserID:         st.UserID,
		Active:         st.Active,
		ConversationID: st.ConversationID,
		State:          st.State,
		Query:          st.Query,
		Candidates:     candidatesToDTO(st.Candidates),
		Selected:       selectedToDTO(st.Selected, st.Candidates),
		IdleSeconds:    int64(st.IdleFor / time.Second),
		ExpiresIn:      int64(st.ExpiresIn / time.Second),
	}
}
