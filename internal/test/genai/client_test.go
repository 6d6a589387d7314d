package genai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"genieus-backend/internal/genai"
)

func TestClient_RetryWithBackoff(t *testing.T) {
	client := genai.NewClient("https://api.test.com/v1", "test-key")
	client.Backoffs = nil

	callCount := 0
	err := client.RetryWithBackoff(func() error {
		callCount++
		if callCount < 3 {
			return assert.AnError
		}
		return nil
	}, 3)

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestClient_RetryWithBackoff_Exhausted(t *testing.T) {
	client := genai.NewClient("https://api.test.com/v1", "test-key")
	client.Backoffs = nil

	err := client.RetryWithBackoff(func() error {
		return assert.AnError
	}, 3)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"document": map[string]any{"caption": "finally"},
		})
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	client.Backoffs = nil

	doc, err := client.GenerateJSON(context.Background(), genai.StructuredRequest{
		Prompt:     "write a caption",
		SchemaName: "publishing_pack",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.JSONEq(t, `{"caption":"finally"}`, string(doc))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad prompt"}`))
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	client.Backoffs = nil

	_, err := client.GenerateJSON(context.Background(), genai.StructuredRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "status 400")
}

func TestClient_GenerateImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate/images", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a red bottle", req["prompt"])

		json.NewEncoder(w).Encode(map[string]any{
			"images": []map[string]any{
				{"mime_type": "image/png", "data": []byte("img-1")},
				{"mime_type": "image/png", "data": []byte("img-2")},
			},
		})
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	images, err := client.GenerateImages(context.Background(), genai.ImageRequest{
		Prompt: "a red bottle",
		Count:  2,
	})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, []byte("img-1"), images[0].Data)
}

func TestClient_GenerateImages_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"images": []any{}})
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	_, err := client.GenerateImages(context.Background(), genai.ImageRequest{Prompt: "x"})
	assert.ErrorContains(t, err, "no images")
}

func TestClient_GenerateJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate/structured", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"document": map[string]any{"caption": "hello"},
		})
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	doc, err := client.GenerateJSON(context.Background(), genai.StructuredRequest{
		Prompt:     "write a caption",
		SchemaName: "publishing_pack",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"caption":"hello"}`, string(doc))
}

func TestClient_WaitVideo_PollsUntilDone(t *testing.T) {
	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/operations/op-1", r.URL.Path)
		polls++
		if polls < 3 {
			json.NewEncoder(w).Encode(map[string]any{"operation_id": "op-1", "done": false})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"operation_id": "op-1",
			"done":         true,
			"mime_type":    "video/mp4",
			"data":         []byte("video-bytes"),
		})
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	client.PollInterval = time.Millisecond

	op, err := client.WaitVideo(context.Background(), "op-1")
	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, []byte("video-bytes"), op.Data)
}

func TestClient_WaitVideo_RemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"operation_id": "op-1",
			"done":         true,
			"error":        "content policy",
		})
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	client.PollInterval = time.Millisecond

	_, err := client.WaitVideo(context.Background(), "op-1")
	assert.ErrorContains(t, err, "content policy")
}

func TestClient_WaitVideo_DownloadsURL(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/clip.mp4" {
			w.Write([]byte("downloaded-bytes"))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"operation_id": "op-1",
			"done":         true,
			"mime_type":    "video/mp4",
			"download_url": server.URL + "/files/clip.mp4",
		})
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	client.PollInterval = time.Millisecond

	op, err := client.WaitVideo(context.Background(), "op-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("downloaded-bytes"), op.Data)
}

func TestClient_WaitVideo_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"operation_id": "op-1", "done": false})
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	client.PollInterval = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.WaitVideo(ctx, "op-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ErrorStatusIncludesBody(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	client := genai.NewClient(server.URL, "test-key")
	client.Backoffs = nil

	_, err := client.GenerateImages(context.Background(), genai.ImageRequest{Prompt: "x"})
	require.Error(t, err)
	// Rate limits are transient, so the request was retried before giving up.
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate limited")
}
