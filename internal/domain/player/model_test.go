package player

import (
	"sort"
	"testing"
)

func TestParseIdentity(t *testing.T) {
	t.Parallel()

	got, err := ParseIdentity(" structured:123 ")
	if err != nil {
		t.Fatalf("parse identity: %v", err)
	}
	if got.Source != SourceStructured || got.ID != "123" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if got.String() != "STRUCTURED:123" {
		t.Fatalf("unexpected string form: %s", got.String())
	}

	for _, raw := range []string{"", "123", "OTHER:1", "SCRAPED:", "SCRAPED: "} {
		if _, err := ParseIdentity(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestCandidateIdentitiesDeduplicates(t *testing.T) {
	t.Parallel()

	c := Candidate{
		Source:   SourceStructured,
		SourceID: "1",
		AlsoKnownAs: []Identity{
			{Source: SourceScraped, ID: "28003"},
			{Source: SourceStructured, ID: "1"},
			{Source: SourceScraped, ID: "28003"},
		},
	}
	ids := c.Identities()
	if len(ids) != 2 {
		t.Fatalf("unexpected identities length: got=%d want=2", len(ids))
	}
	if ids[0] != c.Identity() {
		t.Fatalf("own identity must come first, got %s", ids[0])
	}
}

func TestCandidateCloneDetachesSlice(t *testing.T) {
	t.Parallel()

	c := Candidate{AlsoKnownAs: []Identity{{Source: SourceScraped, ID: "1"}}}
	clone := c.Clone()
	clone.AlsoKnownAs[0].ID = "2"
	if c.AlsoKnownAs[0].ID != "1" {
		t.Fatalf("clone shares AlsoKnownAs backing array")
	}
}

func TestLessOrdering(t *testing.T) {
	t.Parallel()

	items := []Candidate{
		{Source: SourceScraped, SourceID: "s1", DisplayName: "Alpha", Score: 0.9},
		{Source: SourceStructured, SourceID: "b", DisplayName: "Beta", Score: 0.9},
		{Source: SourceStructured, SourceID: "a", DisplayName: "Alpha", Score: 0.9},
		{Source: SourceStructured, SourceID: "z", DisplayName: "Zed", Score: 1},
		{Source: SourceScraped, SourceID: "s0", DisplayName: "Alpha", Score: 0.8},
	}
	sort.Slice(items, func(i, j int) bool { return Less(items[i], items[j]) })

	want := []string{"z", "a", "b", "s1", "s0"}
	for i, id := range want {
		if items[i].SourceID != id {
			t.Fatalf("position %d: got=%s want=%s", i, items[i].SourceID, id)
		}
	}
}

func TestAttributesSummary(t *testing.T) {
	t.Parallel()

	a := Attributes{Club: "Inter Miami", BirthYear: 1987, Nationality: "Argentina"}
	if got := a.Summary(); got != "Inter Miami, 1987, Argentina" {
		t.Fatalf("unexpected summary: %q", got)
	}
	if !(Attributes{Club: "  "}).Empty() {
		t.Fatalf("blank attributes should be empty")
	}
}

func TestValueEqual(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "case insensitive", a: StringValue("Argentina "), b: StringValue("argentina"), want: true},
		{name: "different strings", a: StringValue("Forward"), b: StringValue("Midfielder"), want: false},
		{name: "int vs float", a: IntValue(170), b: NumberValue(170.0000001), want: true},
		{name: "float tolerance exceeded", a: NumberValue(1.70), b: NumberValue(1.71), want: false},
		{name: "large relative tolerance", a: NumberValue(35000000), b: NumberValue(35000000.01), want: true},
		{name: "numeric string", a: StringValue("1987"), b: IntValue(1987), want: true},
		{name: "bools", a: BoolValue(true), b: BoolValue(false), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Fatalf("Equal(%v, %v): got=%v want=%v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValueMarshalJSON(t *testing.T) {
	t.Parallel()

	raw, err := IntValue(170).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "170" {
		t.Fatalf("unexpected json: %s", raw)
	}
	raw, err = StringValue("Left").MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"Left"` {
		t.Fatalf("unexpected json: %s", raw)
	}
}

func TestSourceProfileSetFieldSkipsEmpty(t *testing.T) {
	t.Parallel()

	var p SourceProfile
	p.SetField(FieldClub, StringValue("  "))
	p.SetField(FieldHeightCM, IntValue(170))
	if len(p.Fields) != 1 {
		t.Fatalf("unexpected field count: got=%d want=1", len(p.Fields))
	}
}

func TestPlayerProfileFieldNamesOrder(t *testing.T) {
	t.Parallel()

	p := PlayerProfile{Fields: map[string]FieldValue{}}
	for _, name := range []string{"zz_custom", FieldClub, FieldFullName, FieldMarketValueEUR} {
		p.Fields[name] = FieldValue{Value: StringValue("x"), Provenance: SourceScraped}
	}
	got := p.FieldNames()
	want := []string{FieldFullName, FieldClub, FieldMarketValueEUR, "zz_custom"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got=%s want=%s", i, got[i], want[i])
		}
	}
}

func TestSummarizeCareer(t *testing.T) {
	t.Parallel()

	if SummarizeCareer(nil) != nil {
		t.Fatalf("expected nil summary without seasons")
	}

	summary := SummarizeCareer([]SeasonStats{
		{SeasonID: "1", Competition: "La Liga", Appearances: 30, Minutes: 2500, Goals: 20, Assists: 10, Shots: 100, ShotsOnTarget: 50, Passes: 1000, PassesCompleted: 850},
		{SeasonID: "2", Competition: "La Liga", Appearances: 10, Minutes: 900, Goals: 10, Assists: 5, Shots: 60, ShotsOnTarget: 30},
		{SeasonID: "2", Competition: "Champions League", Appearances: 10, Minutes: 850, Goals: 5},
	})
	if summary == nil {
		t.Fatalf("expected summary")
	}
	if summary.Totals.Appearances != 50 || summary.Totals.Goals != 35 {
		t.Fatalf("unexpected totals: %+v", summary.Totals)
	}
	if summary.PerMatch.GoalsPerMatch != 0.7 {
		t.Fatalf("unexpected goals per match: %v", summary.PerMatch.GoalsPerMatch)
	}
	if summary.Rates.PassCompletion == nil || *summary.Rates.PassCompletion != 0.85 {
		t.Fatalf("unexpected pass completion: %v", summary.Rates.PassCompletion)
	}
	if summary.Rates.DribbleSuccess != nil {
		t.Fatalf("dribble success should be nil without dribbles")
	}
	if len(summary.Competitions) != 2 || summary.Competitions[0].Competition != "La Liga" || summary.Competitions[0].Seasons != 2 {
		t.Fatalf("unexpected competitions: %+v", summary.Competitions)
	}
	// 0.85 completion is not above the bar; 0.7 goals and 0.3 assists per match are.
	if summary.Insights.PlayingStyle != "Goal scorer" {
		t.Fatalf("unexpected playing style: %q", summary.Insights.PlayingStyle)
	}
	want := []string{"Prolific scorer", "Creative passing"}
	if len(summary.Insights.KeyStrengths) != len(want) {
		t.Fatalf("unexpected strengths: got=%v want=%v", summary.Insights.KeyStrengths, want)
	}
	for i := range want {
		if summary.Insights.KeyStrengths[i] != want[i] {
			t.Fatalf("strength %d: got=%s want=%s", i, summary.Insights.KeyStrengths[i], want[i])
		}
	}
}

func TestCareerInsights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		season    SeasonStats
		style     string
		strengths []string
	}{
		{
			name:      "possession midfielder",
			season:    SeasonStats{Appearances: 10, Passes: 700, PassesCompleted: 630, Goals: 1, Assists: 1},
			style:     "Possession-based playmaker",
			strengths: []string{"High pass accuracy"},
		},
		{
			name:      "dribbler",
			season:    SeasonStats{Appearances: 10, Passes: 200, PassesCompleted: 150, Dribbles: 40, DribblesCompleted: 32, Shots: 20, ShotsOnTarget: 12},
			style:     "Dribbling specialist",
			strengths: []string{"Effective dribbling", "Accurate shooting"},
		},
		{
			name:      "centre back",
			season:    SeasonStats{Appearances: 10, Tackles: 25, Interceptions: 15, AerialsWon: 40, AerialsTotal: 50},
			style:     "Defensive anchor",
			strengths: []string{"Strong in the air", "Defensive work rate"},
		},
		{
			name:      "quiet season",
			season:    SeasonStats{Appearances: 10, Passes: 100, PassesCompleted: 70},
			style:     "Balanced player",
			strengths: []string{},
		},
		{
			name:      "no appearances",
			season:    SeasonStats{SeasonID: "1"},
			style:     "",
			strengths: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SummarizeCareer([]SeasonStats{tt.season}).Insights
			if got.PlayingStyle != tt.style {
				t.Fatalf("style: got=%q want=%q", got.PlayingStyle, tt.style)
			}
			if len(got.KeyStrengths) != len(tt.strengths) {
				t.Fatalf("strengths: got=%v want=%v", got.KeyStrengths, tt.strengths)
			}
			for i := range tt.strengths {
				if got.KeyStrengths[i] != tt.strengths[i] {
					t.Fatalf("strength %d: got=%s want=%s", i, got.KeyStrengths[i], tt.strengths[i])
				}
			}
		})
	}
}
