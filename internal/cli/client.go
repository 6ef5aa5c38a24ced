package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/ecorank/internal/models"
)

// ServerError is a non-2xx answer from the ecorank server.
type ServerError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *ServerError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running ecorank server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AddLink submits link and returns the rescored product list.
func (c *Client) AddLink(link string) ([]models.ScoredProduct, error) {
	body, err := json.Marshal(models.LinkInput{Link: link})
	if err != nil {
		return nil, err
	}
	var products []models.ScoredProduct
	if err := c.do(http.MethodPost, "/api/v1/products", bytes.NewReader(body), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Products returns the current product list.
func (c *Client) Products() ([]models.ScoredProduct, error) {
	var products []models.ScoredProduct
	if err := c.do(http.MethodGet, "/api/v1/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Reset clears the server's session.
func (c *Client) Reset() (string, error) {
	var msg models.MessageResponse
	if err := c.do(http.MethodDelete, "/api/v1/products", nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// Status returns the server's session status.
func (c *Client) Status() (*models.StatusResponse, error) {
	var st models.StatusResponse
	if err := c.do(http.MethodGet, "/api/v1/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Export streams the XLSX report into w.
func (c *Client) Export(w io.Writer) error {
	resp, err := c.send(http.MethodGet, "/api/v1/export", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	return nil
}

func (c *Client) do(method, path string, body io.Reader, out interface{}) error {
	resp, err := c.send(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		se := &ServerError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
		var er models.ErrorResponse
		if json.Unmarshal(b, &er) == nil && er.Error != "" {
			se.Kind, se.Message = er.Kind, er.Error
		}
		return nil, se
	}
	return resp, nil
}
