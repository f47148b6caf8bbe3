package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// Request is the body sent to the analysis service
type Request struct {
	Category            types.Category `json:"category"`
	Subcategory         string         `json:"subcategory,omitempty"`
	Location            string         `json:"location"`
	SquareFootage       float64        `json:"squareFootage"`
	Stories             int            `json:"stories"`
	SpecialRequirements []string       `json:"specialRequirements"`
}

// Response is the service's answer
type Response struct {
	Phases      []string `json:"phases"`
	Materials   []string `json:"materials"`
	Labor       []string `json:"labor"`
	Challenges  []string `json:"challenges"`
	Assumptions []string `json:"assumptions"`
}

// HTTPAnalyzer calls a remote analysis service
type HTTPAnalyzer struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPAnalyzer creates a client for endpoint. Timeouts are applied per
// call through the context; the client timeout is only a backstop.
func NewHTTPAnalyzer(endpoint, apiKey string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewRequest builds the service request for a project
func NewRequest(p *types.Project) Request {
	req := Request{
		Category:            p.Category,
		Subcategory:         p.Subcategory,
		Location:            p.Location.Key(),
		SquareFootage:       p.Specifications.SquareFootage,
		Stories:             p.Specifications.Stories,
		SpecialRequirements: p.Specifications.SpecialRequirements,
	}
	if req.SpecialRequirements == nil {
		req.SpecialRequirements = []string{}
	}
	return req
}

// Analyze posts the project to the service
func (a *HTTPAnalyzer) Analyze(ctx context.Context, p *types.Project) (*types.Insight, error) {
	if p == nil {
		return nil, errors.Input("project is required")
	}

	jsonData, err := json.Marshal(NewRequest(p))
	if err != nil {
		return nil, errors.Insight("failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, errors.Insight("failed to create request", err)
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.Insight("failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Insight("failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Insight(fmt.Sprintf("analysis service returned %d", resp.StatusCode), nil).
			WithContext("body", truncate(string(body), 200))
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Insight("failed to parse response", err)
	}

	return &types.Insight{
		Phases:      nonNil(result.Phases),
		Materials:   nonNil(result.Materials),
		Labor:       nonNil(result.Labor),
		Challenges:  nonNil(result.Challenges),
		Assumptions: nonNil(result.Assumptions),
		Source:      types.InsightFromService,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
