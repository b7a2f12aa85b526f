package ippclient

import (
	"testing"

	"github.com/WaffleThief123/ipprasterctl/internal/ipp"
)

// fakeTransport decodes the request, builds a canned response, and
// optionally corrupts the echoed request-id to exercise spec §8
// property 6 (request-id echo).
type fakeTransport struct {
	statusCode   int16
	jobID        int32
	corruptEcho  bool
	sawOperation int16
}

func (f *fakeTransport) Do(requestBody []byte) ([]byte, error) {
	req, err := ipp.Decode(requestBody)
	if err != nil {
		return nil, err
	}
	f.sawOperation = req.OperationOrStatus

	requestID := req.RequestID
	if f.corruptEcho {
		requestID++
	}
	resp := ipp.NewMessage(f.statusCode, requestID)
	resp.Group(ipp.TagOperationAttrs).Set("attributes-charset", ipp.NewCharset("utf-8"))
	resp.Group(ipp.TagOperationAttrs).Set("attributes-natural-language", ipp.NewNaturalLanguage("en"))
	resp.Group(ipp.TagOperationAttrs).Set("status-message", ipp.NewTextWithoutLanguage("ok"))
	if f.jobID != 0 {
		resp.Group(ipp.TagJobAttrs).Set("job-id", ipp.NewInteger(f.jobID))
		resp.Group(ipp.TagJobAttrs).Set("job-state-reasons", ipp.NewKeyword("job-completed-successfully"))
	}
	return ipp.Encode(resp)
}

func TestGetPrinterAttributesRoundTrip(t *testing.T) {
	ft := &fakeTransport{statusCode: 0x0000}
	c := New("ipp://localhost:631/printers/test", ft)

	resp, err := c.GetPrinterAttributes()
	if err != nil {
		t.Fatalf("GetPrinterAttributes: %v", err)
	}
	if ft.sawOperation != OpGetPrinterAttributes {
		t.Errorf("operation = %#x, want %#x", ft.sawOperation, OpGetPrinterAttributes)
	}
	if got := StatusMessage(resp); got != "ok" {
		t.Errorf("StatusMessage = %q", got)
	}
}

func TestPrintJobReturnsJobID(t *testing.T) {
	ft := &fakeTransport{statusCode: 0x0000, jobID: 42}
	c := New("ipp://localhost:631/printers/test", ft)

	resp, err := c.PrintJob("image/urf", "label job", []byte("raster bytes"))
	if err != nil {
		t.Fatalf("PrintJob: %v", err)
	}
	if ft.sawOperation != OpPrintJob {
		t.Errorf("operation = %#x, want %#x", ft.sawOperation, OpPrintJob)
	}
	jobID, ok := JobID(resp)
	if !ok || jobID != 42 {
		t.Errorf("JobID = %d, %v, want 42, true", jobID, ok)
	}
	reasons := JobStateReasons(resp)
	if len(reasons) != 1 || reasons[0] != "job-completed-successfully" {
		t.Errorf("JobStateReasons = %v", reasons)
	}
}

func TestValidateJobRequestIDIncrements(t *testing.T) {
	ft := &fakeTransport{statusCode: 0x0000}
	c := New("ipp://localhost:631/printers/test", ft)

	if _, err := c.ValidateJob("image/pwg-raster", "job one"); err != nil {
		t.Fatalf("ValidateJob: %v", err)
	}
	if _, err := c.ValidateJob("image/pwg-raster", "job two"); err != nil {
		t.Fatalf("ValidateJob: %v", err)
	}
	if c.requestID != 2 {
		t.Errorf("requestID = %d, want 2", c.requestID)
	}
}

func TestRequestIDMismatchIsRejected(t *testing.T) {
	ft := &fakeTransport{statusCode: 0x0000, corruptEcho: true}
	c := New("ipp://localhost:631/printers/test", ft)

	if _, err := c.GetPrinterAttributes(); err == nil {
		t.Fatal("Do: expected error on request-id mismatch")
	}
}

func TestGetJobAttributesSendsJobID(t *testing.T) {
	ft := &fakeTransport{statusCode: 0x0000, jobID: 7}
	c := New("ipp://localhost:631/printers/test", ft)

	resp, err := c.GetJobAttributes(7)
	if err != nil {
		t.Fatalf("GetJobAttributes: %v", err)
	}
	if ft.sawOperation != OpGetJobAttributes {
		t.Errorf("operation = %#x, want %#x", ft.sawOperation, OpGetJobAttributes)
	}
	if jobID, ok := JobID(resp); !ok || jobID != 7 {
		t.Errorf("JobID = %d, %v, want 7, true", jobID, ok)
	}
}
