// Package typeform implements the remote fetch contract against the Typeform
// responses API: page through completed submissions in a time window.
package typeform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cmra-project/group-dashboard/internal/services"
)

const (
	defaultBaseURL  = "https://api.typeform.com"
	defaultPageSize = 1000
)

// Client pages through a form's responses. It implements
// services.FetchClient. No retry policy: transport and status errors
// propagate to the caller as-is.
type Client struct {
	baseURL  string
	token    string
	formID   string
	pageSize int
	httpc    *http.Client
}

// Option tweaks a Client.
type Option func(*Client)

func WithBaseURL(u string) Option      { return func(c *Client) { c.baseURL = u } }
func WithPageSize(n int) Option        { return func(c *Client) { c.pageSize = n } }
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func NewClient(token, formID string, opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		token:    token,
		formID:   formID,
		pageSize: defaultPageSize,
		httpc:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type responsePage struct {
	Items []*services.RawSubmission `json:"items"`
	Page  struct {
		After string `json:"after"`
	} `json:"page"`
}

// FetchResponses pulls every completed submission in [since, until]. Either
// bound may be nil. Pagination continues while the API returns a next-page
// token and a non-empty page.
func (c *Client) FetchResponses(ctx context.Context, since, until *time.Time) ([]*services.RawSubmission, error) {
	var all []*services.RawSubmission
	after := ""
	for {
		page, err := c.fetchPage(ctx, since, until, after)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		after = page.Page.After
		if after == "" || len(page.Items) == 0 {
			break
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, since, until *time.Time, after string) (*responsePage, error) {
	q := url.Values{}
	q.Set("response_type", "completed")
	q.Set("page_size", strconv.Itoa(c.pageSize))
	if since != nil {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	if until != nil {
		q.Set("until", until.UTC().Format(time.RFC3339))
	}
	if after != "" {
		q.Set("after", after)
	}

	endpoint := fmt.Sprintf("%s/forms/%s/responses?%s", c.baseURL, url.PathEscape(c.formID), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, services.NewBadGatewayError(fmt.Sprintf("typeform responses API returned %d", resp.StatusCode))
	}
	var page responsePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode responses page: %w", err)
	}
	return &page, nil
}
