package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Instagram only accepts JPEG and PNG; everything else in the folder is
// ignored up front.
var publishableMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Client talks to the Google Drive v3 REST API. It lists images inside a
// folder and streams raw file bytes; it never writes.
type Client struct {
	baseURL     string
	accessToken string
	userAgent   string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		userAgent:   userAgent,
		httpClient:  httpClient,
	}
}

type fileListResponse struct {
	Files []Photo `json:"files"`
}

// ListPhotos returns metadata for publishable images inside the folder,
// newest first.
func (c *Client) ListPhotos(ctx context.Context, folderID string) ([]Photo, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("'%s' in parents and mimeType != 'application/vnd.google-apps.folder' and trashed = false", folderID))
	query.Set("fields", "files(id, name, mimeType)")
	query.Set("orderBy", "createdTime desc")
	query.Set("pageSize", "100")

	var list fileListResponse
	if err := c.getJSON(ctx, c.baseURL+"/files?"+query.Encode(), &list); err != nil {
		return nil, fmt.Errorf("failed to list folder %s: %w", folderID, err)
	}

	photos := []Photo{}
	for _, f := range list.Files {
		if publishableMimeTypes[f.MimeType] {
			photos = append(photos, f)
		}
	}

	return photos, nil
}

// GetFolderInfo returns id and name for the folder.
func (c *Client) GetFolderInfo(ctx context.Context, folderID string) (*FolderInfo, error) {
	var info FolderInfo
	if err := c.getJSON(ctx, c.baseURL+"/files/"+url.PathEscape(folderID)+"?fields=id,name", &info); err != nil {
		return nil, fmt.Errorf("failed to get folder %s: %w", folderID, err)
	}
	return &info, nil
}

// RawBytes downloads the full file content and reports its MIME type.
func (c *Client) RawBytes(ctx context.Context, photoID string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, c.baseURL+"/files/"+url.PathEscape(photoID)+"?alt=media")
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download photo %s: %w", photoID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error downloading photo %s: %d %s", photoID, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo %s: %w", photoID, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	return data, mimeType, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := c.newRequest(ctx, url)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("HTTP error: %d %s: %s", resp.StatusCode, resp.Status, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	return req, nil
}
