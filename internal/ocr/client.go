// Package ocr implements the HTTP client for the invoice OCR provider.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"billscan/internal/config"
	"billscan/internal/domain"
	"billscan/internal/port"
)

const apiKeyHeader = "API-KEY"

// Client talks to the OCR provider. It implements both port.InvoiceParser
// and port.CreditClient.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates an OCR client from the provider config.
func NewClient(cfg *config.OCRConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type parseResponse struct {
	Parsed  json.RawMessage `json:"parsed"`
	RawText string          `json:"raw_text"`
}

type errorResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type creditResponse struct {
	Result int `json:"result"`
}

// ParseInvoice sends the document bytes for extraction. The file goes up
// base64-encoded in a JSON envelope; the provider's structured result comes
// back verbatim in Parsed and is also decoded into the typed document.
func (c *Client) ParseInvoice(ctx context.Context, fileBytes []byte) (*port.ParseResult, error) {
	reqBody := map[string]string{
		"file": base64.StdEncoding.EncodeToString(fileBytes),
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, "/ocr/invoice", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}

	var parsed parseResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	doc := &domain.ExtractedDocument{}
	if err := json.Unmarshal(parsed.Parsed, doc); err != nil {
		return nil, fmt.Errorf("decoding parsed document: %w", err)
	}

	return &port.ParseResult{
		Document: doc,
		Parsed:   parsed.Parsed,
		RawText:  parsed.RawText,
	}, nil
}

// CreditBalance returns the remaining scan credit for the given kind.
func (c *Client) CreditBalance(ctx context.Context, kind string) (int, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/credit/"+kind, nil)
	if err != nil {
		return 0, err
	}

	var credit creditResponse
	if err := json.Unmarshal(respBody, &credit); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}
	return credit.Result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return respBody, nil
	case resp.StatusCode == http.StatusBadRequest:
		var apiErr errorResponse
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return nil, &RequestError{Name: "bad request", Description: stripHTML(string(respBody))}
		}
		return nil, &RequestError{
			Name:        stripHTML(apiErr.Name),
			Description: stripHTML(apiErr.Description),
		}
	default:
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", string(respBody)),
		}
	}
}
