package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/devcamper-api/internal/config"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// DefaultBaseURL is the MapQuest API host.
const DefaultBaseURL = "https://www.mapquestapi.com"

const (
	defaultTimeout     = 5 * time.Second
	defaultMaxFailures = 5
	defaultOpenTimeout = 30 * time.Second
)

var (
	// ErrNoResults is returned when the provider knows no location for the address.
	ErrNoResults = errors.New("no geocoding results")

	// ErrUnavailable is returned when the provider fails or the breaker is open.
	ErrUnavailable = errors.New("geocoding provider unavailable")
)

// MapQuest geocodes through the MapQuest v1 address endpoint.
type MapQuest struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[[]domain.Location]
	logger     *slog.Logger
}

// New creates a MapQuest geocoder from cfg. It returns nil when cfg has no
// API key; callers treat a nil geocoder as geocoding disabled.
func New(cfg config.GeocoderConfig, logger *slog.Logger) *MapQuest {
	if !cfg.Enabled() {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "geocoder"))

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := seconds(cfg.TimeoutSeconds, defaultTimeout)
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}

	cb := gobreaker.NewCircuitBreaker[[]domain.Location](gobreaker.Settings{
		Name:        "mapquest",
		MaxRequests: 1,
		Timeout:     seconds(cfg.OpenSeconds, defaultOpenTimeout),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= maxFailures
		},
		// An unknown address is an answer, not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoResults)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &MapQuest{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		breaker:    cb,
		logger:     logger,
	}
}

// Geocode returns the candidate locations for address, best match first.
func (m *MapQuest) Geocode(ctx context.Context, address string) ([]domain.Location, error) {
	locations, err := m.breaker.Execute(func() ([]domain.Location, error) {
		return m.lookup(ctx, address)
	})
	switch {
	case err == nil:
		return locations, nil
	case errors.Is(err, ErrNoResults):
		return nil, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		m.logger.Warn("geocoding request failed", slog.String("error", err.Error()))
		return nil, err
	}
}

type mapquestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mapquestLocation `json:"locations"`
	} `json:"results"`
}

type mapquestLocation struct {
	Street     string `json:"street"`
	City       string `json:"adminArea5"`
	State      string `json:"adminArea3"`
	Country    string `json:"adminArea1"`
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

func (m *MapQuest) lookup(ctx context.Context, address string) ([]domain.Location, error) {
	q := url.Values{}
	q.Set("key", m.apiKey)
	q.Set("location", address)
	endpoint := m.baseURL + "/geocoding/v1/address?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body mapquestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrUnavailable, err)
	}
	if body.Info.StatusCode != 0 {
		return nil, fmt.Errorf("%w: provider status %d %s",
			ErrUnavailable, body.Info.StatusCode, strings.Join(body.Info.Messages, "; "))
	}

	var out []domain.Location
	for _, result := range body.Results {
		for _, l := range result.Locations {
			out = append(out, l.toDomain())
		}
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	return out, nil
}

func (l mapquestLocation) toDomain() domain.Location {
	lat, lng := l.LatLng.Lat, l.LatLng.Lng
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Street, l.City, strings.TrimSpace(l.State + " " + l.PostalCode), l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return domain.Location{
		Latitude:         &lat,
		Longitude:        &lng,
		FormattedAddress: strings.Join(parts, ", "),
		Street:           l.Street,
		City:             l.City,
		State:            l.State,
		Zipcode:          l.PostalCode,
		Country:          l.Country,
	}
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
