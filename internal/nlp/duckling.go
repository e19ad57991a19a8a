package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DucklingClient asks a Duckling server for the first time entity in text.
type DucklingClient struct {
	url    string
	locale string
	loc    *time.Location
	client *http.Client
}

func NewDucklingClient(endpoint string, loc *time.Location, client *http.Client) *DucklingClient {
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	return &DucklingClient{url: endpoint, locale: "en_CA", loc: loc, client: client}
}

type ducklingEntity struct {
	Dim   string `json:"dim"`
	Value struct {
		Value string `json:"value"`
		From  *struct {
			Value string `json:"value"`
		} `json:"from"`
	} `json:"value"`
}

func (d *DucklingClient) Extract(ctx context.Context, text string, now time.Time) (time.Time, bool, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("locale", d.locale)
	form.Set("tz", d.loc.String())
	form.Set("reftime", strconv.FormatInt(now.UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, strings.NewReader(form.Encode()))
	if err != nil {
		return time.Time{}, false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("duckling request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return time.Time{}, false, fmt.Errorf("duckling status %d", resp.StatusCode)
	}

	var entities []ducklingEntity
	if err := json.NewDecoder(resp.Body).Decode(&entities); err != nil {
		return time.Time{}, false, fmt.Errorf("decoding duckling response: %w", err)
	}

	for _, e := range entities {
		if e.Dim != "time" {
			continue
		}
		raw := e.Value.Value
		if raw == "" && e.Value.From != nil {
			raw = e.Value.From.Value
		}
		if raw == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("duckling value %q: %w", raw, err)
		}
		return at.In(d.loc), true, nil
	}
	return time.Time{}, false, nil
}
