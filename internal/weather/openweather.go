// Package weather fetches the daily forecast that the assistant uses as
// auxiliary context.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxDays = 7

type Cache interface {
	GetForecast(ctx context.Context, key string) (string, bool, error)
	SetForecast(ctx context.Context, key, summary string) error
}

// Provider summarizes the OpenWeather One Call daily forecast.
type Provider struct {
	cfg     config.WeatherConfig
	client  *http.Client
	limiter *rate.Limiter
	cache   Cache
	loc     *time.Location
	logger  *zap.Logger
}

type Option func(*Provider)

func WithCache(cache Cache) Option {
	return func(p *Provider) {
		p.cache = cache
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		p.client = client
	}
}

func WithLimiter(limiter *rate.Limiter) Option {
	return func(p *Provider) {
		p.limiter = limiter
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider renders forecast days in loc.
func NewProvider(cfg config.WeatherConfig, loc *time.Location, opts ...Option) *Provider {
	p := &Provider{
		cfg:     cfg,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute/30), 5),
		loc:     loc,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.loc == nil {
		p.loc = time.UTC
	}
	return p
}

type oneCallResponse struct {
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Pop     float64 `json:"pop"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"daily"`
}

// Forecast returns one line per day. Any failure is reported as
// domain.ErrUpstreamUnavailable.
func (p *Provider) Forecast(ctx context.Context) (string, error) {
	key := p.cacheKey()
	if p.cache != nil {
		if summary, ok, err := p.cache.GetForecast(ctx, key); err != nil {
			p.logger.Warn("forecast cache read failed", zap.Error(err))
		} else if ok {
			return summary, nil
		}
	}

	if !p.limiter.Allow() {
		return "", fmt.Errorf("%w: weather rate limit reached", domain.ErrUpstreamUnavailable)
	}

	summary, err := p.fetch(ctx)
	if err != nil {
		p.logger.Warn("forecast fetch failed", zap.Error(err))
		return "", fmt.Errorf("%w: weather: %v", domain.ErrUpstreamUnavailable, err)
	}

	if p.cache != nil {
		if err := p.cache.SetForecast(ctx, key, summary); err != nil {
			p.logger.Warn("forecast cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

func (p *Provider) fetch(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.cfg.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.cfg.Lon, 'f', -1, 64))
	q.Set("exclude", "current,minutely,hourly,alerts")
	q.Set("units", p.cfg.Units)
	q.Set("appid", p.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body oneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(body.Daily) == 0 {
		return "", fmt.Errorf("response has no daily forecast")
	}
	return p.summarize(body), nil
}

func (p *Provider) summarize(body oneCallResponse) string {
	unit := "F"
	if p.cfg.Units == "metric" {
		unit = "C"
	}

	var lines []string
	for i, d := range body.Daily {
		if i == maxDays {
			break
		}
		desc := "no description"
		if len(d.Weather) > 0 {
			desc = d.Weather[0].Description
		}
		lines = append(lines, fmt.Sprintf("%s: %s, %.0f-%.0f%s, %d%% chance of rain",
			time.Unix(d.Dt, 0).In(p.loc).Format("Mon Jan 2"),
			desc, d.Temp.Min, d.Temp.Max, unit, int(math.Round(d.Pop*100))))
	}
	return strings.Join(lines, "\n")
}

func (p *Provider) cacheKey() string {
	return fmt.Sprintf("%.2f,%.2f,%s", p.cfg.Lat, p.cfg.Lon, p.cfg.Units)
}
