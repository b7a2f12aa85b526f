// Package transport provides an HTTP implementation of the IPP client
// transport callback (spec §6).
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTransport POSTs IPP request bytes to a printer URL and returns the
// raw response bytes, adapted from the CUPS proxy's request/response
// handling (spec §6).
type HTTPTransport struct {
	PrinterURI string
	Client     *http.Client
}

// NewHTTPTransport builds a transport with a sane request timeout.
func NewHTTPTransport(printerURI string) *HTTPTransport {
	return &HTTPTransport{
		PrinterURI: printerURI,
		Client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Do implements ippclient.Transport: it POSTs the IPP request body
// (plus any trailing document data already appended by the caller) and
// returns the printer's raw IPP response bytes.
func (t *HTTPTransport) Do(requestBody []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, t.PrinterURI, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/ipp")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send IPP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read IPP response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("printer returned HTTP status %d", resp.StatusCode)
	}

	return body, nil
}
