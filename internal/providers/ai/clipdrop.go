package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultClipDropBaseURL = "https://clipdrop-api.co"

type ClipDropConfig struct {
	APIKey  string
	BaseURL string
}

// ClipDropClient talks to the ClipDrop REST API. Every endpoint takes a
// multipart form and returns the raw image bytes on success.
type ClipDropClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClipDrop(cfg ClipDropConfig) (*ClipDropClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("clipdrop api key is not set")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultClipDropBaseURL
	}

	return &ClipDropClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *ClipDropClient) TextToImage(ctx context.Context, prompt string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("write prompt field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return c.post(ctx, "/text-to-image/v1", writer.FormDataContentType(), &body)
}

func (c *ClipDropClient) RemoveBackground(ctx context.Context, imagePath string) ([]byte, error) {
	body, contentType, err := imageForm(imagePath, nil)
	if err != nil {
		return nil, err
	}
	return c.post(ctx, "/remove-background/v1", contentType, body)
}

func (c *ClipDropClient) RemoveObject(ctx context.Context, imagePath, object string) ([]byte, error) {
	body, contentType, err := imageForm(imagePath, map[string]string{"text_prompt": object})
	if err != nil {
		return nil, err
	}
	return c.post(ctx, "/text-inpainting/v1", contentType, body)
}

func (c *ClipDropClient) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clipdrop %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read clipdrop response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clipdrop %s: status %d: %s", path, resp.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

func imageForm(imagePath string, fields map[string]string) (*bytes.Buffer, string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image_file", filepath.Base(imagePath))
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy image: %w", err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write %s field: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
