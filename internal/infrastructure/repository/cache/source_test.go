package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	playermock "github.com/riskibarqy/player-scout/internal/mocks/domain/player"
)

func newSource(t *testing.T) *playermock.Source {
	t.Helper()
	src := playermock.NewSource(t)
	src.On("Tag").Return(player.SourceScraped).Maybe()
	return src
}

func TestSourceRepository_SearchIsCachedByNormalizedName(t *testing.T) {
	t.Parallel()

	src := newSource(t)
	src.On("SearchByName", mock.Anything, "Lionel  Messi").
		Return([]player.RawRecord{{ID: "28003", Name: "Lionel Messi"}}, nil).
		Once()

	repo := NewSourceRepository(src, time.Minute)
	first, err := repo.SearchByName(context.Background(), "Lionel  Messi")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	first[0].Name = "mutated"

	second, err := repo.SearchByName(context.Background(), "lionel messi")
	if err != nil {
		t.Fatalf("cached search: %v", err)
	}
	if len(second) != 1 || second[0].Name != "Lionel Messi" {
		t.Fatalf("cached result should be detached from callers: %+v", second)
	}
}

func TestSourceRepository_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	src := newSource(t)
	src.On("GetProfile", mock.Anything, "1").Return(player.SourceProfile{}, player.ErrSourceUnavailable).Once()
	src.On("GetProfile", mock.Anything, "1").Return(player.SourceProfile{Name: "Lionel Messi"}, nil).Once()

	repo := NewSourceRepository(src, time.Minute)
	if _, err := repo.GetProfile(context.Background(), "1"); !errors.Is(err, player.ErrSourceUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	profile, err := repo.GetProfile(context.Background(), "1")
	if err != nil || profile.Name != "Lionel Messi" {
		t.Fatalf("second call should reach the source: profile=%+v err=%v", profile, err)
	}
	if _, err := repo.GetProfile(context.Background(), "1"); err != nil {
		t.Fatalf("third call should be served from cache: %v", err)
	}
}

func TestSourceRepository_ConcurrentLoadsCollapse(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	src := newSource(t)
	src.On("GetProfile", mock.Anything, "7").
		Run(func(mock.Arguments) { <-release }).
		Return(player.SourceProfile{Name: "Erling Haaland"}, nil).
		Once()

	repo := NewSourceRepository(src, time.Minute)

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetProfile(context.Background(), "7"); err != nil {
				t.Errorf("get profile: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
}
