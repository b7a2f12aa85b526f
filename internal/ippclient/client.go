// Package ippclient is a thin IPP client facade: it builds operation
// requests, invokes a pluggable transport, and decodes the response
// (spec §6).
package ippclient

import (
	"fmt"
	"sync/atomic"

	"github.com/WaffleThief123/ipprasterctl/internal/ipp"
)

// IPP operation codes this client can issue (spec §6; Get-Jobs and
// Cancel-Job round out the job lifecycle alongside the teacher's
// server, which already handles both).
const (
	OpPrintJob             = 0x0002
	OpValidateJob          = 0x0004
	OpCancelJob            = 0x0008
	OpGetJobAttributes     = 0x0009
	OpGetJobs              = 0x000a
	OpGetPrinterAttributes = 0x000b
)

// Transport sends a fully-encoded IPP request (optionally with document
// data appended) and returns the printer's raw response bytes (spec §6).
type Transport interface {
	Do(requestBody []byte) ([]byte, error)
}

// Client issues IPP operations against a printer URI over a Transport.
type Client struct {
	Transport  Transport
	PrinterURI string

	requestID int32 // atomically incremented; IPP request-ids start at 1
}

// New creates a Client bound to a printer URI and transport.
func New(printerURI string, t Transport) *Client {
	return &Client{Transport: t, PrinterURI: printerURI}
}

func (c *Client) nextRequestID() int32 {
	return atomic.AddInt32(&c.requestID, 1)
}

func (c *Client) newRequest(operation int16) *ipp.Message {
	m := ipp.NewMessage(operation, c.nextRequestID())
	op := m.Group(ipp.TagOperationAttrs)
	op.Set("attributes-charset", ipp.NewCharset("utf-8"))
	op.Set("attributes-natural-language", ipp.NewNaturalLanguage("en"))
	op.Set("printer-uri", ipp.NewURI(c.PrinterURI))
	return m
}

// Do encodes m, sends it over the transport, decodes the response, and
// verifies the response's request-id echoes the request's (spec §8
// property 6).
func (c *Client) Do(m *ipp.Message) (*ipp.Message, error) {
	encoded, err := ipp.Encode(m)
	if err != nil {
		return nil, fmt.Errorf("encode IPP request: %w", err)
	}

	respBytes, err := c.Transport.Do(encoded)
	if err != nil {
		return nil, transportFailure("send/receive failed", err)
	}

	resp, err := ipp.Decode(respBytes)
	if err != nil {
		return nil, transportFailure("response did not decode as IPP", err)
	}
	if resp.RequestID != m.RequestID {
		return nil, transportFailure(fmt.Sprintf("request-id mismatch: sent %d, got %d", m.RequestID, resp.RequestID), nil)
	}

	return resp, nil
}

// GetPrinterAttributes builds and sends a Get-Printer-Attributes request.
func (c *Client) GetPrinterAttributes() (*ipp.Message, error) {
	return c.Do(c.newRequest(OpGetPrinterAttributes))
}

// GetJobAttributes builds and sends a Get-Job-Attributes request for jobID.
func (c *Client) GetJobAttributes(jobID int32) (*ipp.Message, error) {
	m := c.newRequest(OpGetJobAttributes)
	m.Group(ipp.TagOperationAttrs).Set("job-id", ipp.NewInteger(jobID))
	return c.Do(m)
}

// ValidateJob builds and sends a Validate-Job request with the given
// document format and job name.
func (c *Client) ValidateJob(documentFormat, jobName string) (*ipp.Message, error) {
	m := c.newRequest(OpValidateJob)
	op := m.Group(ipp.TagOperationAttrs)
	if documentFormat != "" {
		op.Set("document-format", ipp.NewMimeMediaType(documentFormat))
	}
	if jobName != "" {
		op.Set("job-name", ipp.NewNameWithoutLanguage(jobName))
	}
	return c.Do(m)
}

// PrintJob builds a Print-Job request carrying documentData as the
// message's trailing data payload (spec §4.2, §8 scenario S2-adjacent).
func (c *Client) PrintJob(documentFormat, jobName string, documentData []byte) (*ipp.Message, error) {
	m := c.newRequest(OpPrintJob)
	op := m.Group(ipp.TagOperationAttrs)
	if documentFormat != "" {
		op.Set("document-format", ipp.NewMimeMediaType(documentFormat))
	}
	if jobName != "" {
		op.Set("job-name", ipp.NewNameWithoutLanguage(jobName))
	}
	m.Data = documentData
	return c.Do(m)
}

// JobID extracts job-id from a Get-Job-Attributes/Print-Job response's
// job-attributes group, if present.
func JobID(m *ipp.Message) (int32, bool) {
	a := m.Group(ipp.TagJobAttrs).Get("job-id")
	if a == nil || len(a.Values) == 0 {
		return 0, false
	}
	return a.Values[0].Int, true
}

// StatusMessage extracts status-message from a response's
// operation-attributes group, if present.
func StatusMessage(m *ipp.Message) string {
	a := m.Group(ipp.TagOperationAttrs).Get("status-message")
	if a == nil || len(a.Values) == 0 {
		return ""
	}
	return a.Values[0].Text
}

// JobStateReasons extracts job-state-reasons values from a response's
// job-attributes group, if present.
func JobStateReasons(m *ipp.Message) []string {
	a := m.Group(ipp.TagJobAttrs).Get("job-state-reasons")
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		out = append(out, v.Text)
	}
	return out
}
