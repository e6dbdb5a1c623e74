// Package tracemoe looks up anime by screenshot through the reverse image
// search API. Only the highest-confidence match is used; candidates past
// the first are discarded.
package tracemoe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mizukaze554/AnimeSearch/internal/domain"
)

// Client talks to the reverse image search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new reverse image search client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// searchResponse is the wire shape of a lookup result.
type searchResponse struct {
	Result []match `json:"result"`
}

type match struct {
	Anilist struct {
		ID int `json:"id"`
	} `json:"anilist"`
	Similarity float64 `json:"similarity"`
}

// Identify uploads the image and returns the cross-referenced identifier of
// the best match. Returns domain.ErrNoMatch when the service finds nothing.
func (c *Client) Identify(ctx context.Context, filename string, image io.Reader) (int, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("image", filename)
	if err != nil {
		return 0, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return 0, fmt.Errorf("failed to read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize form: %w", err)
	}

	reqURL := c.baseURL + "/search?anilistInfo"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	c.logger.Debug("image lookup request", "url", reqURL, "file", filename)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("image lookup failed", "error", err)
		return 0, domain.ErrServiceUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("image lookup error", "status", resp.StatusCode)
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(parsed.Result) == 0 {
		return 0, domain.ErrNoMatch
	}

	// Results arrive ordered by confidence; take the first only.
	return parsed.Result[0].Anilist.ID, nil
}
