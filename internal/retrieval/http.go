package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/buildconfig"
	"github.com/Harshitk-cp/fitcheck/internal/domain"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPClient queries a standalone semantic search service over its /search endpoint.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type searchRequest struct {
	Query               string  `json:"query"`
	MaxResults          int     `json:"max_results"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// SearchResponse is the wire shape of the search service reply.
type SearchResponse struct {
	Query        string                `json:"query"`
	Results      []domain.EvidenceItem `json:"results"`
	TotalResults int                   `json:"total_results"`
	SearchTimeMs float64               `json:"search_time_ms"`
}

func (c *HTTPClient) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.EvidenceItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "search query is empty", nil)
	}
	opts = normalize(opts)

	body, err := json.Marshal(searchRequest{
		Query:               query,
		MaxResults:          opts.MaxResults,
		SimilarityThreshold: opts.SimilarityFloor,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", buildconfig.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.NewError(domain.KindTimeout, "search request cancelled", err)
		}
		return nil, domain.NewError(domain.KindRetrievalUnavailable, "search service unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewError(domain.KindRetrievalUnavailable, "read search response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, domain.NewError(domain.KindInvalidInput,
			fmt.Sprintf("search service rejected request: %s", strings.TrimSpace(string(respBody))), nil)
	default:
		return nil, domain.NewError(domain.KindRetrievalUnavailable,
			fmt.Sprintf("search service returned status %d", resp.StatusCode), nil)
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, domain.NewError(domain.KindRetrievalUnavailable, "decode search response", err)
	}

	items := rank(result.Results, opts)
	c.logger.Debug("search completed",
		zap.Int("results", len(items)),
		zap.Float64("service_ms", result.SearchTimeMs),
	)
	return items, nil
}

// Stats fetches corpus statistics from the search service.
func (c *HTTPClient) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("create stats request: %w", err)
	}
	req.Header.Set("User-Agent", buildconfig.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewError(domain.KindRetrievalUnavailable, "search service unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewError(domain.KindRetrievalUnavailable,
			fmt.Sprintf("search service stats returned status %d", resp.StatusCode), nil)
	}

	var stats domain.CorpusStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, domain.NewError(domain.KindRetrievalUnavailable, "decode stats response", err)
	}
	return &stats, nil
}

// Ping checks that the search service answers its health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search service health returned status %d", resp.StatusCode)
	}
	return nil
}
