package player

import (
	"fmt"
	"strings"
)

// SourceTag names the provider a record came from.
type SourceTag string

const (
	SourceStructured SourceTag = "STRUCTURED"
	SourceScraped    SourceTag = "SCRAPED"
)

// AllSources is ordered by precedence.
var AllSources = []SourceTag{SourceStructured, SourceScraped}

// Priority orders sources for ranking ties and merge precedence. Lower wins.
func (t SourceTag) Priority() int {
	switch t {
	case SourceStructured:
		return 0
	case SourceScraped:
		return 1
	default:
		return 99
	}
}

func (t SourceTag) Valid() bool {
	return t == SourceStructured || t == SourceScraped
}

func ParseSourceTag(raw string) (SourceTag, error) {
	tag := SourceTag(strings.ToUpper(strings.TrimSpace(raw)))
	if !tag.Valid() {
		return "", fmt.Errorf("unknown source %q", raw)
	}
	return tag, nil
}

// Identity is one provider's key for a player.
type Identity struct {
	Source SourceTag `json:"source"`
	ID     string    `json:"id"`
}

func (i Identity) String() string {
	return string(i.Source) + ":" + i.ID
}

func (i Identity) Validate() error {
	if !i.Source.Valid() {
		return fmt.Errorf("unknown source %q", i.Source)
	}
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("identity id is required")
	}
	return nil
}

// ParseIdentity reads the "SOURCE:id" form produced by Identity.String.
func ParseIdentity(raw string) (Identity, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return Identity{}, fmt.Errorf("invalid identity %q, expected SOURCE:id", raw)
	}
	tag, err := ParseSourceTag(parts[0])
	if err != nil {
		return Identity{}, err
	}
	out := Identity{Source: tag, ID: strings.TrimSpace(parts[1])}
	if err := out.Validate(); err != nil {
		return Identity{}, err
	}
	return out, nil
}

// UniqueIdentities drops duplicates while keeping first-seen order.
func UniqueIdentities(items []Identity) []Identity {
	seen := make(map[Identity]struct{}, len(items))
	out := make([]Identity, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Attributes are the sparse facts used to tell same-named players apart.
type Attributes struct {
	Club        string `json:"club,omitempty"`
	BirthYear   int    `json:"birth_year,omitempty"`
	Nationality string `json:"nationality,omitempty"`
}

func (a Attributes) Empty() bool {
	return strings.TrimSpace(a.Club) == "" && a.BirthYear == 0 && strings.TrimSpace(a.Nationality) == ""
}

// Summary renders the non-empty attributes as "Club, 1987, Argentina".
func (a Attributes) Summary() string {
	parts := make([]string, 0, 3)
	if club := strings.TrimSpace(a.Club); club != "" {
		parts = append(parts, club)
	}
	if a.BirthYear > 0 {
		parts = append(parts, fmt.Sprintf("%d", a.BirthYear))
	}
	if nat := strings.TrimSpace(a.Nationality); nat != "" {
		parts = append(parts, nat)
	}
	return strings.Join(parts, ", ")
}

// RawRecord is a search hit as a source returns it, before scoring.
type RawRecord struct {
	ID         string
	Name       string
	Attributes Attributes
}

// Candidate is a scored search hit. Treat it as immutable once the resolver has
// produced it; use Clone before handing it to code that might modify slices.
type Candidate struct {
	Source      SourceTag  `json:"source"`
	SourceID    string     `json:"source_id"`
	DisplayName string     `json:"display_name"`
	Attributes  Attributes `json:"attributes"`
	Score       float64    `json:"match_score"`
	// AlsoKnownAs holds identities from other sources judged to be the same person.
	AlsoKnownAs []Identity `json:"also_known_as,omitempty"`
}

func (c Candidate) Identity() Identity {
	return Identity{Source: c.Source, ID: c.SourceID}
}

// Identities is the candidate's own identity followed by its merged duplicates.
func (c Candidate) Identities() []Identity {
	out := make([]Identity, 0, 1+len(c.AlsoKnownAs))
	out = append(out, c.Identity())
	out = append(out, c.AlsoKnownAs...)
	return UniqueIdentities(out)
}

func (c Candidate) Clone() Candidate {
	out := c
	if c.AlsoKnownAs != nil {
		out.AlsoKnownAs = append([]Identity(nil), c.AlsoKnownAs...)
	}
	return out
}

// Less is the canonical ranking: score desc, source priority, display name, source id.
func Less(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if pa, pb := a.Source.Priority(), b.Source.Priority(); pa != pb {
		return pa < pb
	}
	if a.DisplayName != b.DisplayName {
		return a.DisplayName < b.DisplayName
	}
	return a.SourceID < b.SourceID
}
