package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	maxCarouselItems = 10

	containerPollInterval = 5 * time.Second
	containerMaxWait      = 60 * time.Second
)

// Client publishes photos through the Instagram Graph API. A publish is a
// container create / status poll / publish sequence; carousels nest one
// container per slide under a wrapper container.
type Client struct {
	baseURL       string
	accountID     string
	accessToken   string
	publicBaseURL string
	userAgent     string
	httpClient    *http.Client
}

func NewClient(baseURL, accountID, accessToken, publicBaseURL, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:       baseURL,
		accountID:     accountID,
		accessToken:   accessToken,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		userAgent:     userAgent,
		httpClient:    httpClient,
	}
}

// HasCredentials reports whether the client is configured well enough to
// attempt a publish. Used by the status pre-flight checks.
func (c *Client) HasCredentials() bool {
	return c.accountID != "" && c.accessToken != "" && c.publicBaseURL != ""
}

// Publish posts the ordered photo set with the caption and returns the
// published media id. One photo is a single post; two to ten are a carousel.
func (c *Client) Publish(ctx context.Context, photoIDs []string, caption string) (string, error) {
	if len(photoIDs) == 0 {
		return "", fmt.Errorf("at least one photo is required")
	}
	if len(photoIDs) > maxCarouselItems {
		return "", fmt.Errorf("carousel supports at most %d photos, got %d", maxCarouselItems, len(photoIDs))
	}
	if !c.HasCredentials() {
		return "", fmt.Errorf("publishing credentials are not configured")
	}

	if len(photoIDs) == 1 {
		return c.publishSingle(ctx, photoIDs[0], caption)
	}
	return c.publishCarousel(ctx, photoIDs, caption)
}

func (c *Client) publishSingle(ctx context.Context, photoID, caption string) (string, error) {
	containerID, err := c.createContainer(ctx, url.Values{
		"image_url": {c.imageURL(photoID)},
		"caption":   {caption},
	})
	if err != nil {
		return "", err
	}

	if err := c.waitForContainer(ctx, containerID); err != nil {
		return "", err
	}

	return c.publishContainer(ctx, containerID)
}

func (c *Client) publishCarousel(ctx context.Context, photoIDs []string, caption string) (string, error) {
	itemIDs := make([]string, 0, len(photoIDs))
	for _, photoID := range photoIDs {
		itemID, err := c.createContainer(ctx, url.Values{
			"image_url":        {c.imageURL(photoID)},
			"is_carousel_item": {"true"},
		})
		if err != nil {
			return "", fmt.Errorf("carousel item for photo %s: %w", photoID, err)
		}
		if err := c.waitForContainer(ctx, itemID); err != nil {
			return "", fmt.Errorf("carousel item for photo %s: %w", photoID, err)
		}
		itemIDs = append(itemIDs, itemID)
	}

	carouselID, err := c.createContainer(ctx, url.Values{
		"media_type": {"CAROUSEL"},
		"caption":    {caption},
		"children":   {strings.Join(itemIDs, ",")},
	})
	if err != nil {
		return "", fmt.Errorf("carousel container: %w", err)
	}
	if err := c.waitForContainer(ctx, carouselID); err != nil {
		return "", fmt.Errorf("carousel container: %w", err)
	}

	return c.publishContainer(ctx, carouselID)
}

// imageURL builds the public URL Instagram's crawler fetches the photo from.
// The engine does not store photo bytes; it serves them through its own raw
// photo endpoint behind the public base URL.
func (c *Client) imageURL(photoID string) string {
	return c.publicBaseURL + "/drive/photo/" + url.PathEscape(photoID) + "/raw"
}

type idResponse struct {
	ID string `json:"id"`
}

func (c *Client) createContainer(ctx context.Context, params url.Values) (string, error) {
	params.Set("access_token", c.accessToken)

	var resp idResponse
	if err := c.postForm(ctx, fmt.Sprintf("%s/%s/media", c.baseURL, c.accountID), params, &resp); err != nil {
		return "", fmt.Errorf("container creation failed: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("container creation returned no id")
	}
	return resp.ID, nil
}

type statusResponse struct {
	StatusCode string `json:"status_code"`
}

// waitForContainer polls until the container reaches FINISHED, fails on
// ERROR, and gives up after containerMaxWait.
func (c *Client) waitForContainer(ctx context.Context, containerID string) error {
	deadline := time.Now().Add(containerMaxWait)
	lastStatus := ""

	for time.Now().Before(deadline) {
		query := url.Values{
			"fields":       {"status_code"},
			"access_token": {c.accessToken},
		}

		var resp statusResponse
		if err := c.getJSON(ctx, fmt.Sprintf("%s/%s?%s", c.baseURL, containerID, query.Encode()), &resp); err != nil {
			return fmt.Errorf("container status check failed: %w", err)
		}

		lastStatus = resp.StatusCode
		switch resp.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR":
			return fmt.Errorf("container %s processing failed (status=ERROR)", containerID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(containerPollInterval):
		}
	}

	return fmt.Errorf("container %s not ready after %s (last status: %s)", containerID, containerMaxWait, lastStatus)
}

func (c *Client) publishContainer(ctx context.Context, containerID string) (string, error) {
	params := url.Values{
		"creation_id":  {containerID},
		"access_token": {c.accessToken},
	}

	var resp idResponse
	if err := c.postForm(ctx, fmt.Sprintf("%s/%s/media_publish", c.baseURL, c.accountID), params, &resp); err != nil {
		return "", fmt.Errorf("publish failed: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("publish returned no media id")
	}
	return resp.ID, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("HTTP error: %d %s: %s", resp.StatusCode, resp.Status, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
