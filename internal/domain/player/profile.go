package player

import (
	"sort"
	"time"
)

// Profile field names shared by every source.
const (
	FieldFullName       = "full_name"
	FieldDateOfBirth    = "date_of_birth"
	FieldBirthYear      = "birth_year"
	FieldNationality    = "nationality"
	FieldPosition       = "position"
	FieldHeightCM       = "height_cm"
	FieldWeightKG       = "weight_kg"
	FieldClub           = "club"
	FieldPreferredFoot  = "preferred_foot"
	FieldMarketValueEUR = "market_value_eur"
	FieldContractUntil  = "contract_until"
)

// SourceProfile is one provider's normalized view of a player.
type SourceProfile struct {
	Identity Identity
	Name     string
	Fields   map[string]Value
	// Seasons is only filled by sources that expose statistics.
	Seasons []SeasonStats
}

// SetField stores v unless it is empty.
func (p *SourceProfile) SetField(name string, v Value) {
	if v.IsZero() {
		return
	}
	if p.Fields == nil {
		p.Fields = make(map[string]Value)
	}
	p.Fields[name] = v
}

type FieldValue struct {
	Value      Value     `json:"value"`
	Provenance SourceTag `json:"provenance"`
}

// Conflict records a field both sources supplied with different values. ValueA is the
// value that was kept.
type Conflict struct {
	Field      string    `json:"field_name"`
	ValueA     Value     `json:"value_a"`
	ValueB     Value     `json:"value_b"`
	SourceA    SourceTag `json:"source_a"`
	SourceB    SourceTag `json:"source_b"`
	Resolution string    `json:"resolution"`
}

type PlayerProfile struct {
	CanonicalName string                `json:"canonical_name"`
	Identities    []Identity            `json:"identities"`
	Fields        map[string]FieldValue `json:"fields"`
	Conflicts     []Conflict            `json:"conflicts"`
	Partial       bool                  `json:"partial"`
	Career        *CareerSummary        `json:"career,omitempty"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// FieldNames returns the populated field names in a stable order.
func (p PlayerProfile) FieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := fieldRank(names[i]), fieldRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

var displayOrder = []string{
	FieldFullName,
	FieldDateOfBirth,
	FieldBirthYear,
	FieldNationality,
	FieldPosition,
	FieldClub,
	FieldHeightCM,
	FieldWeightKG,
	FieldPreferredFoot,
	FieldMarketValueEUR,
	FieldContractUntil,
}

func fieldRank(name string) int {
	for i, known := range displayOrder {
		if known == name {
			return i
		}
	}
	return len(displayOrder)
}
