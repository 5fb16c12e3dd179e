// Package whisper is a thin pass-through client for a whisper.cpp server's
// inference endpoint. It holds no state beyond connection configuration.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"
)

var (
	// ErrUnavailable reports that the whisper server could not be reached.
	ErrUnavailable = errors.New("whisper: server unavailable")

	// ErrTimeout reports that the whisper server did not answer in time.
	ErrTimeout = errors.New("whisper: request timed out")

	// ErrServer reports a non-200 response from the whisper server.
	ErrServer = errors.New("whisper: server error")
)

const DefaultTimeout = 60 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type inferenceResponse struct {
	Text string `json:"text"`
}

// Transcribe streams an audio file to the whisper server and returns the raw
// transcript text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	body, contentType, err := multipartBody(filename, audio)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inference", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrServer, resp.StatusCode, detail)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrServer, err)
	}
	return out.Text, nil
}

// Healthy reports whether the whisper server answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func multipartBody(filename string, audio io.Reader) (io.Reader, string, error) {
	// The payloads are small enough to buffer; whisper.cpp rejects chunked
	// uploads from some clients, so a sized body is safer anyway.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}

func mapTransportError(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
