package sportmonks

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/player-scout/internal/domain/player"
)

type searchEnvelope struct {
	Data []playerPayload `json:"data"`
}

type playerEnvelope struct {
	Data *playerPayload `json:"data"`
}

type playerPayload struct {
	ID               int64                        `json:"id"`
	CommonName       string                       `json:"common_name"`
	Firstname        string                       `json:"firstname"`
	Lastname         string                       `json:"lastname"`
	Name             string                       `json:"name"`
	DisplayName      string                       `json:"display_name"`
	Height           *int                         `json:"height"`
	Weight           *int                         `json:"weight"`
	DateOfBirth      string                       `json:"date_of_birth"`
	Nationality      relation[namedRef]           `json:"nationality"`
	Position         relation[namedRef]           `json:"position"`
	DetailedPosition relation[namedRef]           `json:"detailedposition"`
	Teams            relation[[]teamMembership]   `json:"teams"`
	Statistics       relation[[]seasonStatistics] `json:"statistics"`
}

type namedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type teamMembership struct {
	TeamID int64              `json:"team_id"`
	Start  string             `json:"start"`
	End    string             `json:"end"`
	Team   relation[namedRef] `json:"team"`
}

type seasonStatistics struct {
	TeamID    int64                       `json:"team_id"`
	SeasonID  int64                       `json:"season_id"`
	HasValues bool                        `json:"has_values"`
	Details   relation[[]statisticDetail] `json:"details"`
	Season    relation[seasonRef]         `json:"season"`
}

type seasonRef struct {
	ID     int64              `json:"id"`
	Name   string             `json:"name"`
	League relation[namedRef] `json:"league"`
}

type statisticDetail struct {
	TypeID int64              `json:"type_id"`
	Value  any                `json:"value"`
	Type   relation[statType] `json:"type"`
}

type statType struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	DeveloperName string `json:"developer_name"`
}

// relation accepts both the bare and the {"data": ...} wrapped include shapes.
type relation[T any] struct {
	Data T
	Set  bool
}

func (r *relation[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.Set = false
		return nil
	}

	var wrapped struct {
		Data *T `json:"data"`
	}
	if err := sonic.Unmarshal(trimmed, &wrapped); err == nil && wrapped.Data != nil {
		r.Data = *wrapped.Data
		r.Set = true
		return nil
	}

	var direct T
	if err := sonic.Unmarshal(trimmed, &direct); err != nil {
		return err
	}
	r.Data = direct
	r.Set = true
	return nil
}

func (p playerPayload) displayName() string {
	return firstNonEmpty(p.DisplayName, p.CommonName, p.Name, strings.TrimSpace(p.Firstname+" "+p.Lastname))
}

func (p playerPayload) fullName() string {
	if first, last := strings.TrimSpace(p.Firstname), strings.TrimSpace(p.Lastname); first != "" && last != "" {
		return first + " " + last
	}
	return strings.TrimSpace(p.Name)
}

func (p playerPayload) birthYear() int {
	if len(p.DateOfBirth) < 4 {
		return 0
	}
	year, err := strconv.Atoi(p.DateOfBirth[:4])
	if err != nil {
		return 0
	}
	return year
}

// currentClub prefers an open-ended club membership, then the one that ended last.
// National teams are ignored.
func (p playerPayload) currentClub() string {
	clubs := make([]teamMembership, 0, len(p.Teams.Data))
	for _, m := range p.Teams.Data {
		if !m.Team.Set || strings.TrimSpace(m.Team.Data.Name) == "" || strings.EqualFold(m.Team.Data.Type, "national") {
			continue
		}
		clubs = append(clubs, m)
	}
	if len(clubs) == 0 {
		return ""
	}

	sort.SliceStable(clubs, func(i, j int) bool {
		openI, openJ := clubs[i].End == "", clubs[j].End == ""
		if openI != openJ {
			return openI
		}
		if clubs[i].End != clubs[j].End {
			return clubs[i].End > clubs[j].End
		}
		return clubs[i].Start > clubs[j].Start
	})
	return strings.TrimSpace(clubs[0].Team.Data.Name)
}

func (p playerPayload) teamName(teamID int64) string {
	for _, m := range p.Teams.Data {
		if m.TeamID == teamID && m.Team.Set {
			return strings.TrimSpace(m.Team.Data.Name)
		}
	}
	return ""
}

func mapSearchRecord(item playerPayload) (player.RawRecord, bool) {
	name := item.displayName()
	if item.ID <= 0 || name == "" {
		return player.RawRecord{}, false
	}
	return player.RawRecord{
		ID:   strconv.FormatInt(item.ID, 10),
		Name: name,
		Attributes: player.Attributes{
			Club:        item.currentClub(),
			BirthYear:   item.birthYear(),
			Nationality: strings.TrimSpace(item.Nationality.Data.Name),
		},
	}, true
}

func mapProfile(item playerPayload) player.SourceProfile {
	out := player.SourceProfile{Name: item.displayName()}
	out.SetField(player.FieldFullName, player.StringValue(item.fullName()))
	out.SetField(player.FieldDateOfBirth, player.StringValue(item.DateOfBirth))
	if year := item.birthYear(); year > 0 {
		out.SetField(player.FieldBirthYear, player.IntValue(year))
	}
	out.SetField(player.FieldNationality, player.StringValue(item.Nationality.Data.Name))
	out.SetField(player.FieldPosition, player.StringValue(firstNonEmpty(item.DetailedPosition.Data.Name, item.Position.Data.Name)))
	out.SetField(player.FieldClub, player.StringValue(item.currentClub()))
	if item.Height != nil && *item.Height > 0 {
		out.SetField(player.FieldHeightCM, player.IntValue(*item.Height))
	}
	if item.Weight != nil && *item.Weight > 0 {
		out.SetField(player.FieldWeightKG, player.IntValue(*item.Weight))
	}

	for _, stat := range item.Statistics.Data {
		if line, ok := mapSeasonStats(item, stat); ok {
			out.Seasons = append(out.Seasons, line)
		}
	}
	sort.SliceStable(out.Seasons, func(i, j int) bool {
		return out.Seasons[i].Season > out.Seasons[j].Season
	})
	return out
}

// statSetters maps provider developer names onto season counters.
var statSetters = map[string]func(*player.SeasonStats, int){
	"APPEARANCES":         func(s *player.SeasonStats, v int) { s.Appearances = v },
	"MINUTES_PLAYED":      func(s *player.SeasonStats, v int) { s.Minutes = v },
	"GOALS":               func(s *player.SeasonStats, v int) { s.Goals = v },
	"ASSISTS":             func(s *player.SeasonStats, v int) { s.Assists = v },
	"SHOTS_TOTAL":         func(s *player.SeasonStats, v int) { s.Shots = v },
	"SHOTS_ON_TARGET":     func(s *player.SeasonStats, v int) { s.ShotsOnTarget = v },
	"PASSES":              func(s *player.SeasonStats, v int) { s.Passes = v },
	"ACCURATE_PASSES":     func(s *player.SeasonStats, v int) { s.PassesCompleted = v },
	"DRIBBLE_ATTEMPTS":    func(s *player.SeasonStats, v int) { s.Dribbles = v },
	"SUCCESSFUL_DRIBBLES": func(s *player.SeasonStats, v int) { s.DribblesCompleted = v },
	"TOTAL_CROSSES":       func(s *player.SeasonStats, v int) { s.Crosses = v },
	"AERIALS_WON":         func(s *player.SeasonStats, v int) { s.AerialsWon = v },
	"TACKLES":             func(s *player.SeasonStats, v int) { s.Tackles = v },
	"INTERCEPTIONS":       func(s *player.SeasonStats, v int) { s.Interceptions = v },
	"YELLOWCARDS":         func(s *player.SeasonStats, v int) { s.YellowCards = v },
	"REDCARDS":            func(s *player.SeasonStats, v int) { s.RedCards = v },
}

func mapSeasonStats(item playerPayload, stat seasonStatistics) (player.SeasonStats, bool) {
	if !stat.HasValues && len(stat.Details.Data) == 0 {
		return player.SeasonStats{}, false
	}

	line := player.SeasonStats{
		SeasonID:    strconv.FormatInt(stat.SeasonID, 10),
		Season:      strings.TrimSpace(stat.Season.Data.Name),
		Competition: strings.TrimSpace(stat.Season.Data.League.Data.Name),
		Team:        item.teamName(stat.TeamID),
	}
	if line.Season == "" {
		line.Season = line.SeasonID
	}

	aerialsLost := 0
	for _, detail := range stat.Details.Data {
		name := normalizeStatTypeName(detail.Type.Data.DeveloperName)
		value := statTotal(detail.Value)
		if name == "AERIALS_LOST" {
			aerialsLost = value
			continue
		}
		if set, ok := statSetters[name]; ok {
			set(&line, value)
		}
	}
	if aerialsLost > 0 {
		line.AerialsTotal = line.AerialsWon + aerialsLost
	}
	return line, true
}

func normalizeStatTypeName(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// statTotal reads {"total": n}; some types only carry {"count": n} or a bare number.
func statTotal(value any) int {
	fields, ok := value.(map[string]any)
	if !ok {
		return int(asFloat64(value))
	}
	for _, key := range []string{"total", "count", "all"} {
		if v, ok := fields[key]; ok {
			return int(asFloat64(v))
		}
	}
	return 0
}

func asFloat64(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
