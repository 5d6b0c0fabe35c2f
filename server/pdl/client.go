package pdl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/recruitedge/recruitedge/server/logger"
	"github.com/recruitedge/recruitedge/shared"
)

const DEFAULT_BASE_URL = "https://api.peopledatalabs.com/v5"

var (
	// ErrPaymentRequired is returned when the vendor rejects a call
	// because the account is out of credits (HTTP 402).
	ErrPaymentRequired = errors.New("people-data api: payment required")

	// ErrRateLimited is returned when the vendor throttles a call (HTTP 429).
	ErrRateLimited = errors.New("people-data api: rate limited")

	logg = logger.NewLogger()
)

// Client talks to the people-search vendor. All methods are synchronous
// and bounded by per-call timeouts; callers decide how to degrade on error.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(config shared.PeopleDataConfig) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DEFAULT_BASE_URL
	}

	return &Client{
		apiKey:     config.ApiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// PersonSearch runs a boolean query against the person-search endpoint and
// returns the tolerant typed records. Records that fail to decode are
// skipped rather than failing the whole page.
func (c *Client) PersonSearch(ctx context.Context, query SearchQuery) ([]Person, error) {
	queryJSON, err := query.JSON()
	if err != nil {
		return nil, fmt.Errorf("person search: %v", err)
	}

	params := url.Values{}
	params.Set("query", queryJSON)
	params.Set("pretty", "true")

	body, err := c.get(ctx, "/person/search", params, 15*time.Second)
	if err != nil {
		return nil, err
	}

	payload := struct {
		Status int               `json:"status"`
		Data   []json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("person search: decode response: %v", err)
	}

	people := make([]Person, 0, len(payload.Data))
	for _, raw := range payload.Data {
		person := Person{}
		if err := json.Unmarshal(raw, &person); err != nil {
			logg.Warnf("skipping malformed person record: %v", err)
			continue
		}
		people = append(people, person)
	}

	return people, nil
}

// CleanCompany canonicalizes a company name via the vendor cleaner endpoint.
func (c *Client) CleanCompany(ctx context.Context, name string) (string, error) {
	return c.clean(ctx, "/company/clean", "name", name)
}

// CleanLocation canonicalizes a free-text location via the vendor cleaner endpoint.
func (c *Client) CleanLocation(ctx context.Context, location string) (string, error) {
	return c.clean(ctx, "/location/clean", "location", location)
}

// EnrichJobTitle resolves a raw job title to its canonical form plus
// similar titles and level tags.
func (c *Client) EnrichJobTitle(ctx context.Context, jobTitle string) (*JobTitleEnrichment, error) {
	params := url.Values{}
	params.Set("job_title", jobTitle)

	body, err := c.get(ctx, "/job_title/enrich", params, 10*time.Second)
	if err != nil {
		return nil, err
	}

	payload := struct {
		Status int                 `json:"status"`
		Data   *JobTitleEnrichment `json:"data"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("job title enrich: decode response: %v", err)
	}

	if payload.Data == nil || payload.Data.CleanedName == "" {
		return nil, fmt.Errorf("job title enrich: no data for %q", jobTitle)
	}

	return payload.Data, nil
}

// Autocomplete returns up to 'size' suggestions for the given vendor field.
// The vendor returns either plain strings or {name, count} objects; both
// shapes are accepted.
func (c *Client) Autocomplete(ctx context.Context, field, text string, size int) ([]string, error) {
	params := url.Values{}
	params.Set("field", field)
	params.Set("text", text)
	params.Set("size", strconv.Itoa(size))

	body, err := c.get(ctx, "/autocomplete", params, 15*time.Second)
	if err != nil {
		return nil, err
	}

	payload := struct {
		Status int               `json:"status"`
		Data   []json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("autocomplete: decode response: %v", err)
	}

	suggestions := []string{}
	for _, raw := range payload.Data {
		var asString string
		if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
			suggestions = append(suggestions, asString)
			continue
		}

		asObject := struct {
			Name string `json:"name"`
		}{}
		if err := json.Unmarshal(raw, &asObject); err == nil && asObject.Name != "" {
			suggestions = append(suggestions, asObject.Name)
		}
	}

	return suggestions, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (c *Client) clean(ctx context.Context, path, paramName, value string) (string, error) {
	params := url.Values{}
	params.Set(paramName, value)

	body, err := c.get(ctx, path, params, 10*time.Second)
	if err != nil {
		return "", err
	}

	payload := struct {
		Status int    `json:"status"`
		Name   string `json:"name"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%v: decode response: %v", path, err)
	}

	if payload.Name == "" {
		return "", fmt.Errorf("%v: no cleaned value for %q", path, value)
	}

	return payload.Name, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("people-data api: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusPaymentRequired:
		return nil, ErrPaymentRequired
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("people-data api: %v returned status %v", path, resp.StatusCode)
	}
}
