package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"zakerny_bot/internal/domain/prayer"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaseURL = "https://api.aladhan.com/v1"
	// Calculation method 5: Egyptian General Authority of Survey.
	calculationMethod = "5"
)

// Client fetches daily timings from the aladhan.com API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Entry
}

func NewClient(timeout time.Duration, logger *logrus.Entry) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		logger:     logger,
	}
}

type timingsResponse struct {
	Code int `json:"code"`
	Data struct {
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

// timingsByCity performs one GET against the timing service. Any transport
// error, non-2xx status, or service-level code other than 200 degrades to
// prayer.ErrFetchFailed.
func (c *Client) timingsByCity(ctx context.Context, city, country string) (map[string]string, error) {
	q := url.Values{}
	q.Set("city", city)
	q.Set("country", country)
	q.Set("method", calculationMethod)

	endpoint := fmt.Sprintf("%s/timingsByCity?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", prayer.ErrFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", prayer.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected HTTP status %d", prayer.ErrFetchFailed, resp.StatusCode)
	}

	var body timingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", prayer.ErrFetchFailed, err)
	}
	if body.Code != 200 {
		return nil, fmt.Errorf("%w: service code %d", prayer.ErrFetchFailed, body.Code)
	}
	return body.Data.Timings, nil
}
