package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// graphStub records Graph API calls and answers them in order: containers get
// sequential ids, status polls report FINISHED, media_publish returns a fixed
// media id.
type graphStub struct {
	t          *testing.T
	containers []map[string]string
	published  []string
	nextID     int
	statusFor  map[string]string
}

func newGraphStub(t *testing.T) *graphStub {
	return &graphStub{t: t, statusFor: map[string]string{}}
}

func (g *graphStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/media"):
			if err := r.ParseForm(); err != nil {
				g.t.Errorf("Failed to parse form: %v", err)
			}
			params := map[string]string{}
			for key := range r.PostForm {
				params[key] = r.PostForm.Get(key)
			}
			g.containers = append(g.containers, params)
			g.nextID++
			json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("container-%d", g.nextID)})

		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			if err := r.ParseForm(); err != nil {
				g.t.Errorf("Failed to parse form: %v", err)
			}
			g.published = append(g.published, r.PostForm.Get("creation_id"))
			json.NewEncoder(w).Encode(map[string]string{"id": "media-123"})

		default:
			// container status poll
			containerID := strings.TrimPrefix(r.URL.Path, "/")
			status := g.statusFor[containerID]
			if status == "" {
				status = "FINISHED"
			}
			json.NewEncoder(w).Encode(map[string]string{"status_code": status})
		}
	})
}

func newTestClient(serverURL string, httpClient *http.Client) *Client {
	return NewClient(serverURL, "account-1", "token-1", "https://engine.example.com", "test-agent", httpClient)
}

func TestPublishSinglePhoto(t *testing.T) {
	stub := newGraphStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(server.URL, server.Client())

	mediaID, err := client.Publish(context.Background(), []string{"photo-1"}, "Hello world")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if mediaID != "media-123" {
		t.Errorf("Expected media id 'media-123', got '%s'", mediaID)
	}

	if len(stub.containers) != 1 {
		t.Fatalf("Expected 1 container, got %d", len(stub.containers))
	}
	container := stub.containers[0]
	if container["caption"] != "Hello world" {
		t.Errorf("Expected caption on container, got '%s'", container["caption"])
	}
	expectedURL := "https://engine.example.com/drive/photo/photo-1/raw"
	if container["image_url"] != expectedURL {
		t.Errorf("Expected image url '%s', got '%s'", expectedURL, container["image_url"])
	}
	if container["is_carousel_item"] != "" {
		t.Error("Single photo container must not be a carousel item")
	}

	if len(stub.published) != 1 || stub.published[0] != "container-1" {
		t.Errorf("Expected container-1 published, got %v", stub.published)
	}
}

func TestPublishCarousel(t *testing.T) {
	stub := newGraphStub(t)
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(server.URL, server.Client())

	mediaID, err := client.Publish(context.Background(), []string{"p1", "p2", "p3"}, "Trip recap")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if mediaID != "media-123" {
		t.Errorf("Expected media id 'media-123', got '%s'", mediaID)
	}

	// three item containers plus one carousel wrapper
	if len(stub.containers) != 4 {
		t.Fatalf("Expected 4 containers, got %d", len(stub.containers))
	}
	for i := 0; i < 3; i++ {
		item := stub.containers[i]
		if item["is_carousel_item"] != "true" {
			t.Errorf("Expected container %d to be a carousel item, got %v", i, item)
		}
		if item["caption"] != "" {
			t.Errorf("Carousel items must not carry the caption, got '%s'", item["caption"])
		}
	}

	wrapper := stub.containers[3]
	if wrapper["media_type"] != "CAROUSEL" {
		t.Errorf("Expected CAROUSEL wrapper, got '%s'", wrapper["media_type"])
	}
	if wrapper["caption"] != "Trip recap" {
		t.Errorf("Expected caption on wrapper, got '%s'", wrapper["caption"])
	}
	if wrapper["children"] != "container-1,container-2,container-3" {
		t.Errorf("Expected ordered children, got '%s'", wrapper["children"])
	}

	if len(stub.published) != 1 || stub.published[0] != "container-4" {
		t.Errorf("Expected only the wrapper published, got %v", stub.published)
	}
}

func TestPublishContainerError(t *testing.T) {
	stub := newGraphStub(t)
	stub.statusFor["container-1"] = "ERROR"
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	client := newTestClient(server.URL, server.Client())

	_, err := client.Publish(context.Background(), []string{"photo-1"}, "caption")
	if err == nil {
		t.Fatal("Expected error for failed container")
	}
	if !strings.Contains(err.Error(), "ERROR") {
		t.Errorf("Expected container status in error, got '%v'", err)
	}
	if len(stub.published) != 0 {
		t.Errorf("Expected no publish after container failure, got %v", stub.published)
	}
}

func TestPublishValidation(t *testing.T) {
	client := newTestClient("http://unused", nil)

	if _, err := client.Publish(context.Background(), nil, "caption"); err == nil {
		t.Error("Expected error for empty photo set")
	}

	tooMany := make([]string, 11)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("p%d", i)
	}
	if _, err := client.Publish(context.Background(), tooMany, "caption"); err == nil {
		t.Error("Expected error for more than 10 photos")
	}
}

func TestHasCredentials(t *testing.T) {
	if !newTestClient("http://unused", nil).HasCredentials() {
		t.Error("Expected configured client to report credentials")
	}

	missing := NewClient("http://unused", "", "token", "https://engine.example.com", "test-agent", nil)
	if missing.HasCredentials() {
		t.Error("Expected client without account id to report missing credentials")
	}
}
