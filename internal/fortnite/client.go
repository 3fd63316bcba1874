package fortnite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://fortnite-api.com/v2"

// Client reads the three catalog feeds: the full cosmetics list, the
// new-items list, and the current shop. Every request carries the
// client's timeout so a slow upstream can never stall a sync round
// indefinitely.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetAllCosmetics(ctx context.Context) ([]CosmeticData, error) {
	var resp cosmeticsResponse
	if err := c.getJSON(ctx, "/cosmetics/br", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetNewCosmetics(ctx context.Context) ([]CosmeticData, error) {
	var resp cosmeticsResponse
	if err := c.getJSON(ctx, "/cosmetics/br/new", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetShop(ctx context.Context) ([]ShopEntry, error) {
	var resp shopResponse
	if err := c.getJSON(ctx, "/shop", &resp); err != nil {
		return nil, err
	}
	return resp.Data.Entries, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
