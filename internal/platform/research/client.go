package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ocanamx/salud-rural/backend/internal/config"
)

const systemPrompt = "Eres un asistente de investigación médica. Analiza el resumen del paciente y proporciona: " +
	"1. Posibles diagnósticos según los síntomas\n" +
	"2. Medicamentos de venta libre recomendados\n" +
	"3. Cuándo acudir a un profesional\n" +
	"4. Hallazgos científicos relevantes\n" +
	"Formatea la respuesta con encabezados claros."

// Client queries the configured online medical research endpoint. The
// endpoint speaks the chat-completions wire format.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewClient builds the research client. The HTTP timeout bounds the whole
// lookup round trip.
func NewClient(cfg config.ResearchConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type consultPayload struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type consultResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Consult sends the patient summary and returns the guidance text.
func (c *Client) Consult(ctx context.Context, summary string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("research endpoint not configured")
	}

	body, err := json.Marshal(consultPayload{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Resumen del paciente:\n" + summary},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("research request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("research endpoint returned status %d", resp.StatusCode)
	}

	var consultation consultResponse
	if err := json.NewDecoder(resp.Body).Decode(&consultation); err != nil {
		return "", fmt.Errorf("failed to decode research response: %w", err)
	}
	if len(consultation.Choices) == 0 || consultation.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("research response missing guidance")
	}
	return consultation.Choices[0].Message.Content, nil
}
