package transfermarkt

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/platform/metrics"
	"github.com/riskibarqy/player-scout/internal/platform/resilience"
)

const (
	defaultBaseURL   = "https://www.transfermarkt.com"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) player-scout/1.0"
	searchPath       = "/schnellsuche/ergebnis/schnellsuche"
	maxPageBytes     = 4 << 20
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	Metrics        *metrics.Recorder
}

// Client is the SCRAPED player source. It reads the public search and profile pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retry      resilience.RetryConfig
	logger     *logging.Logger
	metrics    *metrics.Recorder
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[*html.Node]
	now        func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	recorder := cfg.Metrics
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		retry:      resilience.NormalizeRetryConfig(cfg.Retry),
		logger:     logger.Named("source.transfermarkt"),
		metrics:    recorder,
		breaker: resilience.NewCircuitBreaker(string(player.SourceScraped), cfg.CircuitBreaker,
			func(name string, _, to resilience.CircuitState) {
				recorder.SetCircuitOpen(name, to != resilience.CircuitStateClosed)
			}),
		now: time.Now,
	}
}

func (c *Client) Tag() player.SourceTag {
	return player.SourceScraped
}

func (c *Client) SearchByName(ctx context.Context, name string) ([]player.RawRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []player.RawRecord{}, nil
	}

	doc, err := c.fetch(ctx, searchPath, url.Values{"query": []string{name}})
	if err != nil {
		if crerr.Is(err, player.ErrProfileNotFound) {
			return []player.RawRecord{}, nil
		}
		return nil, crerr.Wrapf(err, "search players name=%q", name)
	}

	records, err := parseSearchResults(doc, c.now())
	if err != nil {
		return nil, crerr.Wrapf(err, "search players name=%q", name)
	}
	return records, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (player.SourceProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" || !isDigits(id) {
		return player.SourceProfile{}, crerr.Wrapf(player.ErrProfileNotFound, "invalid transfermarkt player id %q", id)
	}

	doc, err := c.fetch(ctx, "/x/profil/spieler/"+id, nil)
	if err != nil {
		return player.SourceProfile{}, crerr.Wrapf(err, "get player id=%s", id)
	}

	profile, err := parseProfile(doc)
	if err != nil {
		return player.SourceProfile{}, crerr.Wrapf(err, "get player id=%s", id)
	}
	return profile, nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) (*html.Node, error) {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	doc, err, _ := c.flight.Do(fullURL, func() (*html.Node, error) {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "transfermarkt circuit breaker rejected request", "state", c.breaker.State())
			return nil, crerr.WithSecondaryError(
				crerr.Wrap(player.ErrSourceUnavailable, "scraped source is temporarily unavailable"), err)
		}

		doc, reqErr := resilience.Retry(ctx, c.retry, player.IsTransient,
			func(attempt int, err error, wait time.Duration) {
				c.metrics.IncSourceRetry(string(player.SourceScraped))
				c.logger.DebugContext(ctx, "retrying transfermarkt request",
					"attempt", attempt,
					"wait", wait.String(),
					"error", err,
				)
			},
			func(ctx context.Context) (*html.Node, error) {
				return c.executeRequest(ctx, fullURL)
			},
		)
		c.breaker.Record(reqErr, player.IsTransient)
		return doc, reqErr
	})
	if err != nil {
		c.logger.WarnContext(ctx, "transfermarkt request failed", "url", fullURL, "error", err)
		return nil, err
	}
	return doc, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.WithSecondaryError(crerr.Wrap(player.ErrSourceUnavailable, "send request"), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
		return nil, crerr.Wrapf(player.ErrProfileNotFound, "page status=%d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
		return nil, crerr.Wrapf(player.ErrSourceUnavailable, "page status=%d", resp.StatusCode)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxPageBytes)); err != nil {
		return nil, crerr.WithSecondaryError(crerr.Wrap(player.ErrSourceUnavailable, "read page body"), err)
	}

	doc, err := html.Parse(strings.NewReader(buf.String()))
	if err != nil {
		return nil, crerr.WithSecondaryError(crerr.Wrap(player.ErrParse, "parse html"), err)
	}
	return doc, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
