// Package recognition wraps the Imagga tagging API used for object detection
package recognition

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/QuietRecursion/ImageTagger/internal/config"
	"github.com/QuietRecursion/ImageTagger/internal/model"
)

const taggingPath = "/v2/tags"

type Client struct {
	apiURL        string
	authorization string
	httpClient    *http.Client
}

// NewClient builds the Basic authorization once at startup: Imagga expects
// base64(api_key:api_secret) where the key plays the username role
func NewClient(cfg config.ImaggaConfig) *Client {
	auth := base64.StdEncoding.EncodeToString([]byte(cfg.APIKey + ":" + cfg.APISecret))

	return &Client{
		apiURL:        strings.TrimSuffix(cfg.APIURL, "/"),
		authorization: "Basic " + auth,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// DetectTags asks Imagga for the objects detected in the image. A URL source
// goes as a query parameter, a base64 source as a form field - that is the
// provider's wire contract. Single attempt, no retries.
func (c *Client) DetectTags(ctx context.Context, src model.ImageSource) ([]string, error) {
	req, err := c.newTaggingRequest(ctx, src)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to imagga failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var body taggingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode imagga response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagga responded %d: %s", resp.StatusCode, body.Status.Text)
	}
	if body.Result == nil {
		// a 200 without a result section means the API contract changed under us
		return nil, fmt.Errorf("imagga responded 200 but the result section is missing")
	}

	return collectTagNames(body.Result.Tags), nil
}

func (c *Client) newTaggingRequest(ctx context.Context, src model.ImageSource) (*http.Request, error) {
	var req *http.Request
	var err error

	switch {
	case src.URL != "":
		endpoint := c.apiURL + taggingPath + "?image_url=" + url.QueryEscape(src.URL)
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	case src.Base64 != "":
		form := url.Values{"image_base64": {src.Base64}}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+taggingPath, strings.NewReader(form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	default:
		return nil, model.ErrImageSourceMissing
	}
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", c.authorization)
	return req, nil
}

// collectTagNames flattens the response to english tag names, discarding
// confidences and duplicates
func collectTagNames(tags []taggingTag) []string {
	seen := make(map[string]bool, len(tags))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Tag.En == "" || seen[t.Tag.En] {
			continue
		}
		seen[t.Tag.En] = true
		names = append(names, t.Tag.En)
	}
	return names
}

// taggingResponse - top-level Imagga schema; result is omitted on failures
// while status carries the error text
type taggingResponse struct {
	Result *taggingResult `json:"result"`
	Status taggingStatus  `json:"status"`
}

type taggingResult struct {
	Tags []taggingTag `json:"tags"`
}

type taggingTag struct {
	Confidence float64         `json:"confidence"`
	Tag        tagTranslations `json:"tag"`
}

// tagTranslations - Imagga can return the tag in several languages; only the
// english translation is requested and used
type tagTranslations struct {
	En string `json:"en"`
}

// taggingStatus is present on every response; Text is "" on success
type taggingStatus struct {
	Text string `json:"text"`
	Type string `json:"type"`
}
