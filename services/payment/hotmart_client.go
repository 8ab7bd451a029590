package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HotmartClient calls the Hotmart payments API with tokens supplied by a
// TokenSource. A 401 invalidates the cached token and retries once.
type HotmartClient struct {
	tokens *TokenSource
	rest   *resty.Client
}

// NewHotmartClient creates an API client sharing the token source's base URL
func NewHotmartClient(tokens *TokenSource) *HotmartClient {
	return &HotmartClient{
		tokens: tokens,
		rest: resty.New().
			SetBaseURL(tokens.rest.BaseURL).
			SetTimeout(15 * time.Second),
	}
}

// Subscription is a single entry from the Hotmart subscriptions listing
type Subscription struct {
	SubscriberCode string `json:"subscriber_code"`
	Status         string `json:"status"`
	PlanName       string `json:"plan_name"`
	ProductID      int64  `json:"product_id"`
	SubscriberMail string `json:"subscriber_email"`
	AccessionDate  int64  `json:"accession_date"`
}

type subscriptionPage struct {
	Items    []Subscription `json:"items"`
	PageInfo struct {
		NextPageToken string `json:"next_page_token"`
	} `json:"page_info"`
}

// ListSubscriptions fetches all subscriptions matching the given status,
// following page tokens until the listing is exhausted
func (c *HotmartClient) ListSubscriptions(ctx context.Context, status string) ([]Subscription, error) {
	var all []Subscription
	pageToken := ""

	for {
		page, err := c.listPage(ctx, status, pageToken)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if page.PageInfo.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.PageInfo.NextPageToken
	}
}

func (c *HotmartClient) listPage(ctx context.Context, status, pageToken string) (*subscriptionPage, error) {
	resp, page, err := c.get(ctx, "/payments/api/v1/subscriptions", map[string]string{
		"status":     status,
		"page_token": pageToken,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		c.tokens.Invalidate()
		resp, page, err = c.get(ctx, "/payments/api/v1/subscriptions", map[string]string{
			"status":     status,
			"page_token": pageToken,
		})
		if err != nil {
			return nil, err
		}
	}
	if resp.IsError() {
		return nil, fmt.Errorf("hotmart subscriptions: status %d", resp.StatusCode())
	}
	return page, nil
}

func (c *HotmartClient) get(ctx context.Context, path string, query map[string]string) (*resty.Response, *subscriptionPage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, nil, err
	}

	var page subscriptionPage
	req := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&page)
	for k, v := range query {
		if v != "" {
			req.SetQueryParam(k, v)
		}
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, nil, fmt.Errorf("hotmart subscriptions request: %w", err)
	}
	return resp, &page, nil
}
