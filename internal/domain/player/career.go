package player

import (
	"sort"
	"strings"
)

// SeasonStats is one season/competition line from a statistics-bearing source.
type SeasonStats struct {
	SeasonID          string `json:"season_id"`
	Season            string `json:"season"`
	Competition       string `json:"competition,omitempty"`
	Team              string `json:"team,omitempty"`
	Appearances       int    `json:"appearances"`
	Minutes           int    `json:"minutes"`
	Goals             int    `json:"goals"`
	Assists           int    `json:"assists"`
	Shots             int    `json:"shots"`
	ShotsOnTarget     int    `json:"shots_on_target"`
	Passes            int    `json:"passes"`
	PassesCompleted   int    `json:"passes_completed"`
	Dribbles          int    `json:"dribbles"`
	DribblesCompleted int    `json:"dribbles_completed"`
	Crosses           int    `json:"crosses"`
	AerialsWon        int    `json:"aerials_won"`
	AerialsTotal      int    `json:"aerials_total"`
	Tackles           int    `json:"tackles"`
	Interceptions     int    `json:"interceptions"`
	YellowCards       int    `json:"yellow_cards"`
	RedCards          int    `json:"red_cards"`
}

func (s *SeasonStats) add(other SeasonStats) {
	s.Appearances += other.Appearances
	s.Minutes += other.Minutes
	s.Goals += other.Goals
	s.Assists += other.Assists
	s.Shots += other.Shots
	s.ShotsOnTarget += other.ShotsOnTarget
	s.Passes += other.Passes
	s.PassesCompleted += other.PassesCompleted
	s.Dribbles += other.Dribbles
	s.DribblesCompleted += other.DribblesCompleted
	s.Crosses += other.Crosses
	s.AerialsWon += other.AerialsWon
	s.AerialsTotal += other.AerialsTotal
	s.Tackles += other.Tackles
	s.Interceptions += other.Interceptions
	s.YellowCards += other.YellowCards
	s.RedCards += other.RedCards
}

type CareerAverages struct {
	MinutesPerMatch float64 `json:"minutes_per_match"`
	GoalsPerMatch   float64 `json:"goals_per_match"`
	AssistsPerMatch float64 `json:"assists_per_match"`
	ShotsPerMatch   float64 `json:"shots_per_match"`
	PassesPerMatch  float64 `json:"passes_per_match"`
}

// CareerRates are nil when the denominator is zero.
type CareerRates struct {
	PassCompletion *float64 `json:"pass_completion,omitempty"`
	DribbleSuccess *float64 `json:"dribble_success,omitempty"`
	ShotAccuracy   *float64 `json:"shot_accuracy,omitempty"`
	AerialSuccess  *float64 `json:"aerial_success,omitempty"`
}

type CompetitionLine struct {
	Competition string `json:"competition"`
	Seasons     int    `json:"seasons"`
	Appearances int    `json:"appearances"`
	Minutes     int    `json:"minutes"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
}

// CareerInsights is a qualitative read of the career numbers.
type CareerInsights struct {
	PlayingStyle string   `json:"playing_style,omitempty"`
	KeyStrengths []string `json:"key_strengths"`
}

type CareerSummary struct {
	Seasons      int               `json:"seasons"`
	Totals       SeasonStats       `json:"totals"`
	PerMatch     CareerAverages    `json:"per_match"`
	Rates        CareerRates       `json:"rates"`
	Competitions []CompetitionLine `json:"competitions"`
	Insights     CareerInsights    `json:"insights"`
}

const (
	highPassAccuracy       = 0.85
	possessionPassesPerApp = 40.0
	highDribbleSuccess     = 0.7
	highShotAccuracy       = 0.5
	highAerialSuccess      = 0.6
	prolificGoalsPerApp    = 0.5
	creativeAssistsPerApp  = 0.3
	defensiveActionsPerApp = 3.0
)

// SummarizeCareer folds season lines into career totals. It returns nil when there is
// nothing to summarize.
func SummarizeCareer(seasons []SeasonStats) *CareerSummary {
	if len(seasons) == 0 {
		return nil
	}

	out := &CareerSummary{Seasons: len(seasons)}
	byCompetition := make(map[string]*CompetitionLine)
	seasonKeys := make(map[string]map[string]struct{})

	for _, season := range seasons {
		out.Totals.add(season)

		name := strings.TrimSpace(season.Competition)
		if name == "" {
			name = "Unknown"
		}
		line, ok := byCompetition[name]
		if !ok {
			line = &CompetitionLine{Competition: name}
			byCompetition[name] = line
			seasonKeys[name] = make(map[string]struct{})
		}
		key := season.SeasonID
		if key == "" {
			key = season.Season
		}
		seasonKeys[name][key] = struct{}{}
		line.Appearances += season.Appearances
		line.Minutes += season.Minutes
		line.Goals += season.Goals
		line.Assists += season.Assists
	}

	if matches := float64(out.Totals.Appearances); matches > 0 {
		out.PerMatch = CareerAverages{
			MinutesPerMatch: float64(out.Totals.Minutes) / matches,
			GoalsPerMatch:   float64(out.Totals.Goals) / matches,
			AssistsPerMatch: float64(out.Totals.Assists) / matches,
			ShotsPerMatch:   float64(out.Totals.Shots) / matches,
			PassesPerMatch:  float64(out.Totals.Passes) / matches,
		}
	}

	out.Rates = CareerRates{
		PassCompletion: ratio(out.Totals.PassesCompleted, out.Totals.Passes),
		DribbleSuccess: ratio(out.Totals.DribblesCompleted, out.Totals.Dribbles),
		ShotAccuracy:   ratio(out.Totals.ShotsOnTarget, out.Totals.Shots),
		AerialSuccess:  ratio(out.Totals.AerialsWon, out.Totals.AerialsTotal),
	}

	out.Competitions = make([]CompetitionLine, 0, len(byCompetition))
	for name, line := range byCompetition {
		line.Seasons = len(seasonKeys[name])
		out.Competitions = append(out.Competitions, *line)
	}
	sort.Slice(out.Competitions, func(i, j int) bool {
		a, b := out.Competitions[i], out.Competitions[j]
		if a.Appearances != b.Appearances {
			return a.Appearances > b.Appearances
		}
		return a.Competition < b.Competition
	})

	out.Insights = deriveInsights(out)
	return out
}

func deriveInsights(c *CareerSummary) CareerInsights {
	out := CareerInsights{KeyStrengths: make([]string, 0)}
	if c.Totals.Appearances == 0 {
		return out
	}

	defensive := float64(c.Totals.Tackles+c.Totals.Interceptions) / float64(c.Totals.Appearances)

	if above(c.Rates.PassCompletion, highPassAccuracy) {
		out.KeyStrengths = append(out.KeyStrengths, "High pass accuracy")
	}
	if above(c.Rates.DribbleSuccess, highDribbleSuccess) {
		out.KeyStrengths = append(out.KeyStrengths, "Effective dribbling")
	}
	if above(c.Rates.ShotAccuracy, highShotAccuracy) {
		out.KeyStrengths = append(out.KeyStrengths, "Accurate shooting")
	}
	if above(c.Rates.AerialSuccess, highAerialSuccess) {
		out.KeyStrengths = append(out.KeyStrengths, "Strong in the air")
	}
	if c.PerMatch.GoalsPerMatch >= prolificGoalsPerApp {
		out.KeyStrengths = append(out.KeyStrengths, "Prolific scorer")
	}
	if c.PerMatch.AssistsPerMatch >= creativeAssistsPerApp {
		out.KeyStrengths = append(out.KeyStrengths, "Creative passing")
	}
	if defensive >= defensiveActionsPerApp {
		out.KeyStrengths = append(out.KeyStrengths, "Defensive work rate")
	}

	// First match wins.
	switch {
	case c.PerMatch.GoalsPerMatch >= prolificGoalsPerApp:
		out.PlayingStyle = "Goal scorer"
	case above(c.Rates.PassCompletion, highPassAccuracy) && c.PerMatch.PassesPerMatch >= possessionPassesPerApp:
		out.PlayingStyle = "Possession-based playmaker"
	case above(c.Rates.DribbleSuccess, highDribbleSuccess):
		out.PlayingStyle = "Dribbling specialist"
	case defensive >= defensiveActionsPerApp:
		out.PlayingStyle = "Defensive anchor"
	default:
		out.PlayingStyle = "Balanced player"
	}
	return out
}

func above(rate *float64, threshold float64) bool {
	return rate != nil && *rate > threshold
}

func ratio(num, den int) *float64 {
	if den <= 0 {
		return nil
	}
	v := float64(num) / float64(den)
	return &v
}
