package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	pollinationsBaseURL = "https://image.pollinations.ai/prompt/"

	imageCacheTTL = 24 * time.Hour
	imageWidth    = 768
	imageHeight   = 512
)

// ImageService generates scene illustrations from text prompts.
type ImageService interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// PollinationsService fetches images from the Pollinations public API,
// caching results keyed by a hash of the prompt so repeated scene
// renders don't re-hit the provider.
type PollinationsService struct {
	httpClient *http.Client
	cache      Cache
	logger     *slog.Logger
}

func NewPollinationsService(cache Cache, logger *slog.Logger) *PollinationsService {
	return &PollinationsService{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		cache:  cache,
		logger: logger,
	}
}

func (p *PollinationsService) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	key := promptCacheKey(prompt)

	if p.cache != nil {
		if data, ok, err := p.cache.Get(ctx, key); err == nil && ok {
			return data, nil
		} else if err != nil {
			p.logger.Warn("image cache read failed", "error", err)
		}
	}

	reqURL := fmt.Sprintf("%s%s?width=%d&height=%d&nologo=true",
		pollinationsBaseURL, url.PathEscape(prompt), imageWidth, imageHeight)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image provider request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image provider returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, data, imageCacheTTL); err != nil {
			p.logger.Warn("image cache write failed", "error", err)
		}
	}
	return data, nil
}

func promptCacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
