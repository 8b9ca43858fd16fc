package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/player-scout/internal/domain/namematch"
	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/platform/metrics"
)

const (
	DefaultStructuredMinScore = 0.6
	DefaultScrapedMinScore    = 0.75
	DefaultMaxCandidates      = 10
	DefaultSourceTimeout      = 8 * time.Second
)

type ResolverConfig struct {
	// MinScores holds the per-source threshold; missing tags use the defaults.
	MinScores     map[player.SourceTag]float64
	MaxCandidates int
	SourceTimeout time.Duration
}

// Resolution is the outcome of one name search across every configured source.
type Resolution struct {
	Query          string             `json:"query"`
	Candidates     []player.Candidate `json:"candidates"`
	SourcesQueried int                `json:"sources_queried"`
	SourcesFailed  []player.SourceTag `json:"sources_failed,omitempty"`
}

// NoData reports that no source answered, as opposed to sources answering with
// nothing.
func (r Resolution) NoData() bool {
	return len(r.SourcesFailed) == r.SourcesQueried
}

type CandidateResolver struct {
	sources   []player.Source
	minScores map[player.SourceTag]float64
	max       int
	timeout   time.Duration
	logger    *logging.Logger
	metrics   *metrics.Recorder
}

func NewCandidateResolver(sources []player.Source, cfg ResolverConfig, logger *logging.Logger, recorder *metrics.Recorder) *CandidateResolver {
	minScores := map[player.SourceTag]float64{
		player.SourceStructured: DefaultStructuredMinScore,
		player.SourceScraped:    DefaultScrapedMinScore,
	}
	for tag, score := range cfg.MinScores {
		minScores[tag] = score
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}

	return &CandidateResolver{
		sources:   append([]player.Source(nil), sources...),
		minScores: minScores,
		max:       cfg.MaxCandidates,
		timeout:   cfg.SourceTimeout,
		logger:    logger.Named("resolver"),
		metrics:   recorder,
	}
}

type searchResult struct {
	tag     player.SourceTag
	records []player.RawRecord
	err     error
}

func (r *CandidateResolver) Resolve(ctx context.Context, query string) (_ Resolution, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CandidateResolver.Resolve",
		attribute.String("resolver.query", strings.TrimSpace(query)))
	defer func() { endUsecaseSpan(span, err) }()

	query = strings.TrimSpace(query)
	if query == "" {
		return Resolution{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}

	results := make([]searchResult, len(r.sources))
	var wg conc.WaitGroup
	for i, src := range r.sources {
		wg.Go(func() {
			results[i] = r.search(ctx, src, query)
		})
	}
	wg.Wait()

	out := Resolution{Query: query, SourcesQueried: len(r.sources)}
	scored := make([]player.Candidate, 0)
	for _, res := range results {
		if res.err != nil {
			out.SourcesFailed = append(out.SourcesFailed, res.tag)
			r.logger.WarnContext(ctx, "source search failed, continuing without it",
				"source", res.tag,
				"query", query,
				"error", res.err,
			)
			continue
		}
		scored = append(scored, r.score(query, res.tag, res.records)...)
	}

	sort.SliceStable(scored, func(i, j int) bool { return player.Less(scored[i], scored[j]) })
	merged := dedupeCandidates(scored)
	sort.SliceStable(merged, func(i, j int) bool { return player.Less(merged[i], merged[j]) })
	if len(merged) > r.max {
		merged = merged[:r.max]
	}
	out.Candidates = merged

	outcome := "matched"
	switch {
	case out.NoData():
		outcome = "no_data"
	case len(merged) == 0:
		outcome = "no_match"
	}
	r.metrics.ObserveResolution(outcome, len(merged))
	span.SetAttributes(
		attribute.String("resolver.outcome", outcome),
		attribute.Int("resolver.candidates", len(merged)),
		attribute.Int("resolver.sources_failed", len(out.SourcesFailed)),
	)

	return out, nil
}

func (r *CandidateResolver) search(ctx context.Context, src player.Source, query string) searchResult {
	tag := src.Tag()
	start := time.Now()
	records, err := callWithTimeout(ctx, r.timeout, func(ctx context.Context) ([]player.RawRecord, error) {
		return src.SearchByName(ctx, query)
	})
	r.metrics.ObserveSourceCall(string(tag), "search", sourceOutcome(err), time.Since(start))
	return searchResult{tag: tag, records: records, err: err}
}

func (r *CandidateResolver) score(query string, tag player.SourceTag, records []player.RawRecord) []player.Candidate {
	threshold := r.minScores[tag]
	out := make([]player.Candidate, 0, len(records))
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		id := strings.TrimSpace(rec.ID)
		if name == "" || id == "" {
			continue
		}
		score := namematch.Score(query, name)
		if score < threshold {
			continue
		}
		out = append(out, player.Candidate{
			Source:      tag,
			SourceID:    id,
			DisplayName: name,
			Attributes:  rec.Attributes,
			Score:       score,
		})
	}
	return out
}

// dedupeCandidates folds cross-source duplicates into the first (best ranked)
// occurrence. Input must already be in ranking order.
func dedupeCandidates(ranked []player.Candidate) []player.Candidate {
	kept := make([]player.Candidate, 0, len(ranked))
	seen := make(map[player.Identity]struct{}, len(ranked))

	for _, c := range ranked {
		if _, dup := seen[c.Identity()]; dup {
			continue
		}
		merged := false
		for i := range kept {
			if !samePlayer(kept[i], c) {
				continue
			}
			kept[i].AlsoKnownAs = append(kept[i].AlsoKnownAs, c.Identities()...)
			merged = true
			break
		}
		if !merged {
			kept = append(kept, c.Clone())
		}
		seen[c.Identity()] = struct{}{}
	}
	return kept
}

// samePlayer needs an equal normalized name and at least one agreeing attribute.
// A conflicting birth year always separates two records.
func samePlayer(kept, other player.Candidate) bool {
	for _, ident := range kept.Identities() {
		if ident.Source == other.Source {
			return false
		}
	}
	if namematch.Normalize(kept.DisplayName) != namematch.Normalize(other.DisplayName) {
		return false
	}

	a, b := kept.Attributes, other.Attributes
	if a.Empty() || b.Empty() {
		return false
	}
	// Scraped birth years are derived from the listed age and can be one year off.
	bothYears := a.BirthYear > 0 && b.BirthYear > 0
	if bothYears && abs(a.BirthYear-b.BirthYear) > 1 {
		return false
	}

	agree := bothYears
	agree = agree || sameText(a.Nationality, b.Nationality)
	agree = agree || sameText(a.Club, b.Club)
	return agree
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sameText(a, b string) bool {
	na, nb := namematch.Normalize(a), namematch.Normalize(b)
	return na != "" && na == nb
}

func sourceOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrProfileNotFound):
		return "not_found"
	case errors.Is(err, ErrParse):
		return "parse_error"
	default:
		return "unavailable"
	}
}
