package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/player-scout/internal/mocks/domain/player"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
)

const testSourceTimeout = 100 * time.Millisecond

func newSourceMock(t *testing.T, tag player.SourceTag) *playermock.Source {
	t.Helper()
	src := playermock.NewSource(t)
	src.On("Tag").Return(tag).Maybe()
	return src
}

func expectSearch(src *playermock.Source, query string, records []player.RawRecord, err error) {
	src.On("SearchByName", mock.Anything, query).Return(records, err).Once()
}

func expectSearchTimeout(src *playermock.Source, query string) {
	src.On("SearchByName", mock.Anything, query).
		Return(func(ctx context.Context, _ string) ([]player.RawRecord, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).
		Once()
}

func expectProfile(src *playermock.Source, id string, profile player.SourceProfile, err error) {
	src.On("GetProfile", mock.Anything, id).Return(profile, err).Once()
}

type testHarness struct {
	chat     *ChatService
	flow     *SelectionFlow
	resolver *CandidateResolver
	repo     *memory.SessionRepository
}

func newHarness(t *testing.T, sources ...player.Source) testHarness {
	t.Helper()

	logger := logging.NewNop()
	resolver := NewCandidateResolver(sources, ResolverConfig{SourceTimeout: testSourceTimeout}, logger, nil)
	aggregator, err := NewDataAggregator(sources, AggregatorConfig{Workers: 4, SourceTimeout: testSourceTimeout}, logger, nil)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	t.Cleanup(aggregator.Close)

	repo := memory.NewSessionRepository(memory.SessionRepositoryConfig{IdleTimeout: 30 * time.Minute})
	flow := NewSelectionFlow(repo, resolver, aggregator, logger, nil)
	chat := NewChatService(flow, aggregator, repo, 30*time.Minute, logger, nil)

	return testHarness{chat: chat, flow: flow, resolver: resolver, repo: repo}
}

func messiRecords() ([]player.RawRecord, []player.RawRecord) {
	structured := []player.RawRecord{
		{ID: "77", Name: "Leo Messi", Attributes: player.Attributes{Club: "Rosario Central", BirthYear: 2003, Nationality: "Argentina"}},
		{ID: "154", Name: "Lionel Messi", Attributes: player.Attributes{Club: "Inter Miami", BirthYear: 1987, Nationality: "Argentina"}},
		{ID: "300", Name: "Messias", Attributes: player.Attributes{Club: "Boca Juniors", BirthYear: 1995, Nationality: "Brazil"}},
	}
	scraped := []player.RawRecord{
		{ID: "28003", Name: "Lionel Messi", Attributes: player.Attributes{Club: "Inter Miami CF", BirthYear: 1987, Nationality: "Argentina"}},
		{ID: "555", Name: "Thiago Messi", Attributes: player.Attributes{Club: "Santos", BirthYear: 2001, Nationality: "Brazil"}},
	}
	return structured, scraped
}
