package assethost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrlokans/curator/internal/config"
)

const defaultTimeout = 60 * time.Second

// DeliveryOrigin serves the uploaded images.
const DeliveryOrigin = "https://res.cloudinary.com"

// CloudinaryConfig identifies the account and unsigned upload preset.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	BaseURL      string
	Timeout      time.Duration
}

// CloudinaryClient performs unsigned image uploads against the Cloudinary upload API.
// Failed uploads are not retried.
type CloudinaryClient struct {
	cfg        CloudinaryConfig
	httpClient *http.Client
}

// NewCloudinaryClient creates a new Cloudinary upload client
func NewCloudinaryClient(cfg CloudinaryConfig) *CloudinaryClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &CloudinaryClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewCloudinaryClientFromConfig creates a client from the asset host settings.
func NewCloudinaryClientFromConfig(cfg config.AssetHost) *CloudinaryClient {
	return NewCloudinaryClient(CloudinaryConfig{
		CloudName:    cfg.CloudName,
		UploadPreset: cfg.UploadPreset,
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Timeout,
	})
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *CloudinaryClient) uploadURL() string {
	return fmt.Sprintf("%s/v1_1/%s/image/upload", c.cfg.BaseURL, c.cfg.CloudName)
}

// Upload sends the file with the configured unsigned preset.
func (c *CloudinaryClient) Upload(ctx context.Context, path string) (string, error) {
	body, contentType, err := c.buildForm(path)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL(), body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed uploadResponse
	decodeErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		uerr := &UploadError{StatusCode: resp.StatusCode}
		if decodeErr == nil && parsed.Error != nil {
			uerr.Message = parsed.Error.Message
		}
		return "", uerr
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if parsed.SecureURL == "" {
		return "", ErrMissingURL
	}

	return parsed.SecureURL, nil
}

func (c *CloudinaryClient) buildForm(path string) (io.Reader, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)

	if err := writer.WriteField("upload_preset", c.cfg.UploadPreset); err != nil {
		return nil, "", err
	}

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf, writer.FormDataContentType(), nil
}

// Compile-time interface check
var _ Uploader = (*CloudinaryClient)(nil)
