package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/codyseavey/booster-value/internal/metrics"
)

const (
	scryfallBaseURL      = "https://api.scryfall.com"
	scryfallUserAgent    = "booster-value/1.0"
	scryfallMaxAttempts  = 3
	scryfallMaxPages     = 40
	scryfallRequestDelay = 100 * time.Millisecond // Scryfall asks for 50-100ms between requests
)

// ScryfallError is a non-success response from the Scryfall API
type ScryfallError struct {
	Status  int
	Code    string
	Details string
}

func (e *ScryfallError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("scryfall API returned status %d: %s", e.Status, e.Details)
	}
	return fmt.Sprintf("scryfall API returned status %d", e.Status)
}

// Retryable is true for rate limiting and server-side failures
func (e *ScryfallError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// ScryfallService queries the Scryfall card database
type ScryfallService struct {
	client      *http.Client
	baseURL     string
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
}

func NewScryfallService() *ScryfallService {
	return &ScryfallService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     scryfallBaseURL,
		limiter:     rate.NewLimiter(rate.Every(scryfallRequestDelay), 1),
		maxAttempts: scryfallMaxAttempts,
		backoff:     time.Second,
	}
}

// WithBaseURL points the service at another host (tests, mirrors)
func (s *ScryfallService) WithBaseURL(baseURL string) *ScryfallService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// SetQuery describes one set search
type SetQuery struct {
	SetCode  string
	MinPrice float64
	// Optional collector number bounds, 0 = unbounded
	FromNumber int
	ToNumber   int
}

// String renders the Scryfall search syntax for the query
func (q SetQuery) String() string {
	price := strconv.FormatFloat(q.MinPrice, 'f', -1, 64)
	parts := []string{
		"set:" + strings.ToLower(q.SetCode),
		"lang:en",
		fmt.Sprintf("(usd>=%s or usd_foil>=%s or usd_etched>=%s)", price, price, price),
	}
	if q.FromNumber > 0 {
		parts = append(parts, fmt.Sprintf("cn>=%d", q.FromNumber))
	}
	if q.ToNumber > 0 {
		parts = append(parts, fmt.Sprintf("cn<=%d", q.ToNumber))
	}
	return strings.Join(parts, " ")
}

type scryfallList struct {
	Object     string            `json:"object"`
	TotalCards int               `json:"total_cards"`
	HasMore    bool              `json:"has_more"`
	NextPage   string            `json:"next_page"`
	Data       []json.RawMessage `json:"data"`
}

type scryfallErrorBody struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

// SearchSet returns every raw card record matching the query, following
// pagination. A "no cards found" response is an empty result, not an error.
func (s *ScryfallService) SearchSet(ctx context.Context, q SetQuery) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("q", q.String())
	params.Set("unique", "prints")
	params.Set("order", "usd")
	params.Set("dir", "desc")
	reqURL := fmt.Sprintf("%s/cards/search?%s", s.baseURL, params.Encode())

	var records []json.RawMessage
	for page := 1; reqURL != ""; page++ {
		if page > scryfallMaxPages {
			log.Printf("Scryfall: stopping %q after %d pages", q.String(), scryfallMaxPages)
			break
		}

		list, err := s.fetchList(ctx, reqURL)
		if err != nil {
			var apiErr *ScryfallError
			// Only the first page's 404 means "no cards"; later it means
			// the listing went away mid-walk.
			if page == 1 && errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
				return records, nil
			}
			return nil, fmt.Errorf("failed to search scryfall for %q: %w", q.String(), err)
		}

		records = append(records, list.Data...)
		reqURL = ""
		if list.HasMore {
			reqURL = list.NextPage
		}
	}
	return records, nil
}

// fetchList performs one GET with rate limiting, retrying rate-limit and
// transport failures up to maxAttempts in total.
func (s *ScryfallService) fetchList(ctx context.Context, reqURL string) (*scryfallList, error) {
	backoff := s.backoff
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		list, retryAfter, err := s.fetchOnce(ctx, reqURL)
		if err == nil {
			return list, nil
		}
		lastErr = err

		var apiErr *ScryfallError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		if attempt == s.maxAttempts {
			break
		}

		wait := backoff
		if retryAfter > 0 {
			wait = retryAfter
		}
		metrics.ScryfallRetriesTotal.Inc()
		log.Printf("Scryfall: attempt %d/%d failed: %v - retrying in %v", attempt, s.maxAttempts, err, wait)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *ScryfallService) fetchOnce(ctx context.Context, reqURL string) (*scryfallList, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", scryfallUserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.ScryfallRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ScryfallRequestsTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("failed to query scryfall: %w", err)
	}
	defer resp.Body.Close()
	metrics.ScryfallRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		apiErr := &ScryfallError{Status: resp.StatusCode}
		var body scryfallErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Code = body.Code
			apiErr.Details = body.Details
		}
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), apiErr
	}

	var list scryfallList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, 0, fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	return &list, 0, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
