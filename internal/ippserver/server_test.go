package ippserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/WaffleThief123/ipprasterctl/internal/ipp"
	"github.com/WaffleThief123/ipprasterctl/internal/ippclient"
	"github.com/WaffleThief123/ipprasterctl/internal/media"
	"github.com/WaffleThief123/ipprasterctl/internal/transport"
)

func newTestServer(printer PrinterConfig) (*Server, *httptest.Server) {
	s := NewServer("127.0.0.1:0", printer, media.NewRegistry(), zerolog.Nop())
	httpSrv := httptest.NewServer(http.HandlerFunc(s.handleIPP))
	return s, httpSrv
}

func newTestClient(httpSrv *httptest.Server) *ippclient.Client {
	return ippclient.New(httpSrv.URL, transport.NewHTTPTransport(httpSrv.URL))
}

func TestGetPrinterAttributesOverHTTP(t *testing.T) {
	_, httpSrv := newTestServer(PrinterConfig{
		Name:        "test-printer",
		MakeModel:   "Zebra ZD420",
		Location:    "bench",
		Resolutions: []int{300, 600},
	})
	defer httpSrv.Close()

	resp, err := newTestClient(httpSrv).GetPrinterAttributes()
	if err != nil {
		t.Fatalf("GetPrinterAttributes: %v", err)
	}
	if got := resp.OperationOrStatus; got != StatusOK {
		t.Errorf("status = %#x, want StatusOK", got)
	}
	printerAttrs := resp.Group(ipp.TagPrinterAttrs)
	if a := printerAttrs.Get("printer-name"); a == nil || a.Values[0].Text != "test-printer" {
		t.Errorf("printer-name missing or wrong: %+v", a)
	}
}

func TestPrintJobRejectsGarbageDocument(t *testing.T) {
	_, httpSrv := newTestServer(PrinterConfig{Name: "test-printer", MakeModel: "Zebra ZD420"})
	defer httpSrv.Close()

	resp, err := newTestClient(httpSrv).PrintJob("image/urf", "bad job", []byte("not a raster document"))
	if err != nil {
		t.Fatalf("PrintJob: %v", err)
	}
	if resp.OperationOrStatus != StatusClientErrorBadRequest {
		t.Errorf("status = %#x, want StatusClientErrorBadRequest", resp.OperationOrStatus)
	}
}

func TestValidateJobSucceeds(t *testing.T) {
	_, httpSrv := newTestServer(PrinterConfig{Name: "test-printer", MakeModel: "Zebra ZD420"})
	defer httpSrv.Close()

	resp, err := newTestClient(httpSrv).ValidateJob("image/urf", "job")
	if err != nil {
		t.Fatalf("ValidateJob: %v", err)
	}
	if resp.OperationOrStatus != StatusOK {
		t.Errorf("status = %#x, want StatusOK", resp.OperationOrStatus)
	}
}

func TestGetJobAttributesNotFound(t *testing.T) {
	_, httpSrv := newTestServer(PrinterConfig{Name: "test-printer", MakeModel: "Zebra ZD420"})
	defer httpSrv.Close()

	resp, err := newTestClient(httpSrv).GetJobAttributes(999)
	if err != nil {
		t.Fatalf("GetJobAttributes: %v", err)
	}
	if resp.OperationOrStatus != StatusClientErrorNotFound {
		t.Errorf("status = %#x, want StatusClientErrorNotFound", resp.OperationOrStatus)
	}
}
