package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/platform/metrics"
)

const DefaultAggregatorWorkers = 8

type AggregatorConfig struct {
	Workers       int
	SourceTimeout time.Duration
}

// DataAggregator merges per-source profiles into one PlayerProfile. STRUCTURED is the
// system of record: it wins every disagreement and the losing value is kept as a
// Conflict.
type DataAggregator struct {
	sources map[player.SourceTag]player.Source
	pool    *ants.Pool
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

func NewDataAggregator(sources []player.Source, cfg AggregatorConfig, logger *logging.Logger, recorder *metrics.Recorder) (*DataAggregator, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultAggregatorWorkers
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	bySource := make(map[player.SourceTag]player.Source, len(sources))
	for _, src := range sources {
		bySource[src.Tag()] = src
	}

	return &DataAggregator{
		sources: bySource,
		pool:    pool,
		timeout: cfg.SourceTimeout,
		logger:  logger.Named("aggregator"),
		metrics: recorder,
		now:     time.Now,
	}, nil
}

// Close releases the worker pool.
func (a *DataAggregator) Close() {
	if a == nil || a.pool == nil {
		return
	}
	a.pool.Release()
}

type profileFetch struct {
	order    int
	identity player.Identity
	profile  player.SourceProfile
	err      error
}

func (a *DataAggregator) Aggregate(ctx context.Context, identities []player.Identity) (_ player.PlayerProfile, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DataAggregator.Aggregate",
		attribute.Int("aggregator.identities", len(identities)))
	defer func() { endUsecaseSpan(span, err) }()

	identities = player.UniqueIdentities(identities)
	if len(identities) == 0 {
		return player.PlayerProfile{}, fmt.Errorf("%w: at least one identity is required", ErrInvalidIdentity)
	}
	for _, ident := range identities {
		if err := ident.Validate(); err != nil {
			return player.PlayerProfile{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
		}
	}

	fetches, err := a.fetchAll(ctx, identities)
	if err != nil {
		return player.PlayerProfile{}, err
	}

	successes := make([]profileFetch, 0, len(fetches))
	failures := make([]profileFetch, 0)
	for _, f := range fetches {
		if f.err != nil {
			failures = append(failures, f)
			a.logger.WarnContext(ctx, "profile fetch failed",
				"identity", f.identity.String(),
				"error", f.err,
			)
			continue
		}
		successes = append(successes, f)
	}

	if len(successes) == 0 {
		a.metrics.IncAggregation("failed")
		return player.PlayerProfile{}, allFailedError(failures)
	}

	sort.SliceStable(successes, func(i, j int) bool {
		pi, pj := successes[i].identity.Source.Priority(), successes[j].identity.Source.Priority()
		if pi != pj {
			return pi < pj
		}
		return successes[i].order < successes[j].order
	})

	profile := mergeProfiles(successes)
	profile.Partial = len(failures) > 0 || missingSource(successes)
	profile.GeneratedAt = a.now().UTC()

	for _, c := range profile.Conflicts {
		a.metrics.IncConflict(c.Field)
	}
	outcome := "complete"
	if profile.Partial {
		outcome = "partial"
	}
	a.metrics.IncAggregation(outcome)
	span.SetAttributes(
		attribute.Bool("aggregator.partial", profile.Partial),
		attribute.Int("aggregator.conflicts", len(profile.Conflicts)),
	)

	return profile, nil
}

func (a *DataAggregator) fetchAll(ctx context.Context, identities []player.Identity) ([]profileFetch, error) {
	out := make([]profileFetch, len(identities))

	var workers sync.WaitGroup
	for i, ident := range identities {
		out[i] = profileFetch{order: i, identity: ident}

		src, ok := a.sources[ident.Source]
		if !ok {
			out[i].err = fmt.Errorf("%w: source %s is not configured", ErrSourceUnavailable, ident.Source)
			continue
		}

		workers.Add(1)
		if err := a.pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			profile, err := callWithTimeout(ctx, a.timeout, func(ctx context.Context) (player.SourceProfile, error) {
				return src.GetProfile(ctx, ident.ID)
			})
			a.metrics.ObserveSourceCall(string(ident.Source), "profile", sourceOutcome(err), time.Since(start))

			if err == nil {
				profile.Identity = ident
			}
			out[i].profile = profile
			out[i].err = err
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit profile fetch to worker pool: %w", err)
		}
	}
	workers.Wait()

	return out, nil
}

// mergeProfiles expects successes in precedence order.
func mergeProfiles(successes []profileFetch) player.PlayerProfile {
	out := player.PlayerProfile{
		Fields:    make(map[string]player.FieldValue),
		Conflicts: make([]player.Conflict, 0),
	}

	for _, f := range successes {
		src := f.identity.Source
		out.Identities = append(out.Identities, f.identity)

		if out.CanonicalName == "" {
			out.CanonicalName = strings.TrimSpace(f.profile.Name)
		}
		if out.Career == nil && len(f.profile.Seasons) > 0 {
			out.Career = player.SummarizeCareer(f.profile.Seasons)
		}

		for _, name := range sortedFieldNames(f.profile.Fields) {
			value := f.profile.Fields[name]
			if value.IsZero() {
				continue
			}
			current, ok := out.Fields[name]
			if !ok {
				out.Fields[name] = player.FieldValue{Value: value, Provenance: src}
				continue
			}
			// A second identity from the winning source only fills gaps.
			if current.Provenance == src || current.Value.Equal(value) {
				continue
			}
			out.Conflicts = append(out.Conflicts, player.Conflict{
				Field:      name,
				ValueA:     current.Value,
				ValueB:     value,
				SourceA:    current.Provenance,
				SourceB:    src,
				Resolution: fmt.Sprintf("kept %s value by source precedence (%v)", current.Provenance, ErrAmbiguousProfileConflict),
			})
		}
	}

	if out.CanonicalName == "" {
		if full, ok := out.Fields[player.FieldFullName]; ok {
			out.CanonicalName = full.Value.String()
		}
	}
	return out
}

func sortedFieldNames(fields map[string]player.Value) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// missingSource reports a known source that contributed nothing, so a profile
// built from one source alone is always partial.
func missingSource(successes []profileFetch) bool {
	got := make(map[player.SourceTag]bool, len(successes))
	for _, f := range successes {
		got[f.identity.Source] = true
	}
	for _, tag := range player.AllSources {
		if !got[tag] {
			return true
		}
	}
	return false
}

func allFailedError(failures []profileFetch) error {
	errs := make([]error, 0, len(failures))
	notFound := true
	for _, f := range failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.identity, f.err))
		if !errors.Is(f.err, ErrProfileNotFound) {
			notFound = false
		}
	}
	if notFound {
		return fmt.Errorf("%w: %w: %w", ErrSourceUnavailable, ErrProfileNotFound, errors.Join(errs...))
	}
	return fmt.Errorf("%w: every profile fetch failed: %w", ErrSourceUnavailable, errors.Join(errs...))
}
