package recognition

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/QuietRecursion/ImageTagger/internal/config"
	"github.com/QuietRecursion/ImageTagger/internal/model"
	"github.com/stretchr/testify/require"
)

func newTestClient(srvURL string) *Client {
	return NewClient(config.ImaggaConfig{
		APIURL:    srvURL,
		APIKey:    "test-key",
		APISecret: "test-secret",
	})
}

func wantAuthorization() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte("test-key:test-secret"))
}

func TestClient_DetectTags_URLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v2/tags", r.URL.Path)
		require.Equal(t, "https://example.com/dog.jpg", r.URL.Query().Get("image_url"))
		require.Equal(t, wantAuthorization(), r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": {"tags": [
				{"confidence": 99.1, "tag": {"en": "dog"}},
				{"confidence": 71.4, "tag": {"en": "cat"}},
				{"confidence": 33.0, "tag": {"en": "dog"}}
			]},
			"status": {"text": "", "type": "success"}
		}`))
	}))
	defer srv.Close()

	tags, err := newTestClient(srv.URL).DetectTags(context.Background(), model.ImageSource{
		URL: "https://example.com/dog.jpg",
	})
	require.NoError(t, err)
	// confidences discarded, duplicates dropped
	require.Equal(t, []string{"dog", "cat"}, tags)
}

func TestClient_DetectTags_Base64Source(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "aW1hZ2UtYnl0ZXM=", r.PostFormValue("image_base64"))
		require.Equal(t, wantAuthorization(), r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"result": {"tags": [{"confidence": 88.8, "tag": {"en": "tree"}}]},
			"status": {"text": "", "type": "success"}
		}`))
	}))
	defer srv.Close()

	tags, err := newTestClient(srv.URL).DetectTags(context.Background(), model.ImageSource{
		Base64: "aW1hZ2UtYnl0ZXM=",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"tree"}, tags)
}

func TestClient_DetectTags_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status": {"text": "authorization required", "type": "error"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).DetectTags(context.Background(), model.ImageSource{
		URL: "https://example.com/dog.jpg",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "authorization required")
}

func TestClient_DetectTags_MissingResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": {"text": "", "type": "success"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).DetectTags(context.Background(), model.ImageSource{
		URL: "https://example.com/dog.jpg",
	})
	require.Error(t, err)
}

func TestClient_DetectTags_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	_, err := newTestClient(srv.URL).DetectTags(context.Background(), model.ImageSource{
		URL: "https://example.com/dog.jpg",
	})
	require.Error(t, err)
}

func TestClient_DetectTags_NoSource(t *testing.T) {
	_, err := newTestClient("http://imagga.invalid").DetectTags(context.Background(), model.ImageSource{})
	require.ErrorIs(t, err, model.ErrImageSourceMissing)
}
