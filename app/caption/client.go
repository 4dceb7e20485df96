package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const anthropicVersion = "2023-06-01"

// ByteSource supplies raw image bytes for a photo id. Satisfied by the drive
// client.
type ByteSource interface {
	RawBytes(ctx context.Context, photoID string) ([]byte, string, error)
}

// Client generates captions by sending photos to the Anthropic messages API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	userAgent  string
	source     ByteSource
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model, userAgent string, source ByteSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		userAgent:  userAgent,
		source:     source,
		httpClient: httpClient,
	}
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate fetches the photos and asks the model for a caption in the given
// tone. The caller decides what to do when this fails (the publish pipeline
// falls back to the configured default caption).
func (c *Client) Generate(ctx context.Context, photoIDs []string, tone string) (string, error) {
	if len(photoIDs) == 0 {
		return "", fmt.Errorf("at least one photo id is required")
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("caption service API key is not configured")
	}

	blocks := make([]contentBlock, 0, len(photoIDs)+1)
	for _, id := range photoIDs {
		data, mimeType, err := c.source.RawBytes(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to fetch photo %s for captioning: %w", id, err)
		}
		blocks = append(blocks, contentBlock{
			Type: "image",
			Source: &imageSource{
				Type:      "base64",
				MediaType: mimeType,
				Data:      base64.StdEncoding.EncodeToString(data),
			},
		})
	}
	blocks = append(blocks, contentBlock{Type: "text", Text: buildPrompt(tone, len(photoIDs))})

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: 512,
		Messages:  []message{{Role: "user", Content: blocks}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode caption request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create caption request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("caption service HTTP error: %d %s: %s", resp.StatusCode, resp.Status, detail)
	}

	var parsed messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode caption response: %w", err)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}

	return "", fmt.Errorf("caption service returned no text content")
}
