package doctor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ocanamx/salud-rural/backend/internal/config"
)

// Client posts medical images to the doctor's intake endpoint.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(cfg config.DoctorConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Post uploads one image as multipart form data tagged with the patient id.
func (c *Client) Post(ctx context.Context, patientID, filename string, image []byte) error {
	if c.endpoint == "" {
		return fmt.Errorf("doctor endpoint not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("patient_id", patientID); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("doctor endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
