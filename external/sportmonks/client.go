package sportmonks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/player-scout/internal/domain/player"
	"github.com/riskibarqy/player-scout/internal/platform/logging"
	"github.com/riskibarqy/player-scout/internal/platform/metrics"
	"github.com/riskibarqy/player-scout/internal/platform/resilience"
)

const (
	defaultBaseURL       = "https://api.sportmonks.com/v3/football"
	defaultIncludeSearch = "nationality;position;teams.team"
	defaultIncludePlayer = "nationality;position;detailedPosition;teams.team;statistics.details.type;statistics.season.league"
	maxBodyBytes         = 6 << 20
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)

// errNotRetryable marks provider answers that leave the source unusable but will not
// heal on retry, such as an expired token.
var errNotRetryable = crerr.New("sportmonks request is not retryable")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Retry          resilience.RetryConfig
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	Metrics        *metrics.Recorder
}

// Client is the STRUCTURED player source backed by the SportMonks football API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	retry      resilience.RetryConfig
	logger     *logging.Logger
	metrics    *metrics.Recorder
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
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

	recorder := cfg.Metrics
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		retry:      resilience.NormalizeRetryConfig(cfg.Retry),
		logger:     logger.Named("source.sportmonks"),
		metrics:    recorder,
		breaker: resilience.NewCircuitBreaker(string(player.SourceStructured), cfg.CircuitBreaker,
			func(name string, _, to resilience.CircuitState) {
				recorder.SetCircuitOpen(name, to != resilience.CircuitStateClosed)
			}),
	}
}

func (c *Client) Tag() player.SourceTag {
	return player.SourceStructured
}

func (c *Client) SearchByName(ctx context.Context, name string) ([]player.RawRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []player.RawRecord{}, nil
	}

	var envelope searchEnvelope
	path := "/players/search/" + url.PathEscape(name)
	if err := c.doJSON(ctx, path, map[string]string{"include": defaultIncludeSearch}, &envelope); err != nil {
		// The provider answers an unknown name with 404 on some plans.
		if crerr.Is(err, player.ErrProfileNotFound) {
			return []player.RawRecord{}, nil
		}
		return nil, crerr.Wrapf(err, "search players name=%q", name)
	}

	out := make([]player.RawRecord, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if record, ok := mapSearchRecord(item); ok {
			out = append(out, record)
		}
	}
	return out, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (player.SourceProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "/?#") {
		return player.SourceProfile{}, crerr.Wrapf(player.ErrProfileNotFound, "invalid sportmonks player id %q", id)
	}

	var envelope playerEnvelope
	path := "/players/" + url.PathEscape(id)
	if err := c.doJSON(ctx, path, map[string]string{"include": defaultIncludePlayer}, &envelope); err != nil {
		return player.SourceProfile{}, crerr.Wrapf(err, "get player id=%s", id)
	}
	if envelope.Data == nil || envelope.Data.ID == 0 {
		return player.SourceProfile{}, crerr.Wrapf(player.ErrProfileNotFound, "player id=%s", id)
	}

	return mapProfile(*envelope.Data), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)
	fullURL := c.baseURL + path + "?" + values.Encode()

	// Only the flight leader passes the breaker, so every Allow is paired with a Record.
	raw, err, _ := c.flight.Do(path+"?"+values.Encode(), func() ([]byte, error) {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
			return nil, crerr.WithSecondaryError(
				crerr.Wrap(player.ErrSourceUnavailable, "sport data provider is temporarily unavailable"), err)
		}

		raw, reqErr := resilience.Retry(ctx, c.retry, isRetryable,
			func(attempt int, err error, wait time.Duration) {
				c.metrics.IncSourceRetry(string(player.SourceStructured))
				c.logger.DebugContext(ctx, "retrying sportmonks request",
					"attempt", attempt,
					"wait", wait.String(),
					"error", err,
				)
			},
			func(ctx context.Context) ([]byte, error) {
				return c.executeRequest(ctx, fullURL)
			},
		)
		c.breaker.Record(reqErr, player.IsTransient)
		return raw, reqErr
	})
	if err != nil {
		c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", err)
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.WithSecondaryError(crerr.Wrap(player.ErrParse, "decode provider payload"), err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.WithSecondaryError(
			crerr.Wrapf(player.ErrSourceUnavailable, "send request: %s", sanitizeSensitiveText(err.Error(), c.token)),
			err,
		)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.WithSecondaryError(crerr.Wrap(player.ErrSourceUnavailable, "read response body"), err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, crerr.Wrapf(player.ErrProfileNotFound, "provider status=%d", resp.StatusCode)
	case isRetryableStatus(resp.StatusCode):
		return nil, crerr.Wrapf(player.ErrSourceUnavailable, "provider status=%d body=%s",
			resp.StatusCode, abbreviateBody(sanitizeSensitiveText(string(raw), c.token)))
	default:
		return nil, crerr.Mark(
			crerr.Wrapf(player.ErrSourceUnavailable, "provider status=%d body=%s",
				resp.StatusCode, abbreviateBody(sanitizeSensitiveText(string(raw), c.token))),
			errNotRetryable,
		)
	}
}

func isRetryable(err error) bool {
	return player.IsTransient(err) && !crerr.Is(err, errNotRetryable)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiTokenParamRegex.ReplaceAllString(rawURL, "api_token=REDACTED")
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(text string) string {
	if len(text) <= 240 {
		return text
	}
	return fmt.Sprintf("%s...", text[:240])
}
