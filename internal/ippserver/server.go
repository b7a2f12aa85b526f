// Package ippserver is a minimal IPP listener for local validation: it
// decodes requests and builds responses through internal/ipp's C2/C3
// model, and runs Print-Job document data through internal/raster's
// autodetect + decoder instead of forwarding anywhere (spec §6).
package ippserver

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/WaffleThief123/ipprasterctl/internal/capabilities"
	"github.com/WaffleThief123/ipprasterctl/internal/ipp"
	"github.com/WaffleThief123/ipprasterctl/internal/media"
	"github.com/WaffleThief123/ipprasterctl/internal/raster"
)

// IPP status codes this server emits.
const (
	StatusOK                       = 0x0000
	StatusClientErrorBadRequest    = 0x0400
	StatusClientErrorNotFound      = 0x0406
	StatusServerErrorInternalError = 0x0500
)

const (
	opPrintJob             = 0x0002
	opValidateJob          = 0x0004
	opCancelJob            = 0x0008
	opGetJobAttributes     = 0x0009
	opGetJobs              = 0x000a
	opGetPrinterAttributes = 0x000b
)

// PrinterConfig describes the printer this server represents.
type PrinterConfig struct {
	Name        string
	MakeModel   string
	Location    string
	Color       bool
	Duplex      bool
	Resolutions []int
}

// job is the server's in-memory record of an accepted Print-Job.
type job struct {
	id       int32
	state    int32 // 3 = pending, 9 = completed, 7 = canceled
	reasons  string
	format   raster.Format
	warnings []raster.Warning
}

// Server is a minimal IPP endpoint for validating encoded raster
// documents end to end, without any printer driver or spooler behind it.
type Server struct {
	listenAddr string
	printer    PrinterConfig
	printerURI string
	profiles   *media.Registry
	log        zerolog.Logger

	nextJobID int32
	mu        sync.Mutex
	jobs      map[int32]*job
}

// NewServer builds a Server bound to listenAddr, advertising printer.
func NewServer(listenAddr string, printer PrinterConfig, profiles *media.Registry, log zerolog.Logger) *Server {
	host := strings.SplitN(listenAddr, ":", 2)
	port := "631"
	if len(host) == 2 {
		port = host[1]
	}
	return &Server{
		listenAddr: listenAddr,
		printer:    printer,
		printerURI: fmt.Sprintf("ipp://localhost:%s/printers/%s", port, printer.Name),
		profiles:   profiles,
		log:        log.With().Str("component", "ipp-server").Logger(),
		jobs:       make(map[int32]*job),
	}
}

// ListenAndServe starts the IPP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/printers/", s.handlePrinter)

	s.log.Info().Str("addr", s.listenAddr).Msg("starting IPP server")
	return http.ListenAndServe(s.listenAddr, mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ipprasterctl IPP server"))
		return
	}
	s.handleIPP(w, r)
}

func (s *Server) handlePrinter(w http.ResponseWriter, r *http.Request) {
	s.handleIPP(w, r)
}

func (s *Server) handleIPP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read request body")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	req, err := ipp.Decode(body)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to decode IPP request")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	s.log.Debug().
		Int16("operation", req.OperationOrStatus).
		Int32("request_id", req.RequestID).
		Msg("received IPP request")

	var resp *ipp.Message
	switch req.OperationOrStatus {
	case opGetPrinterAttributes:
		resp = s.handleGetPrinterAttributes(req)
	case opPrintJob:
		resp = s.handlePrintJob(req)
	case opValidateJob:
		resp = s.handleValidateJob(req)
	case opGetJobs:
		resp = s.handleGetJobs(req)
	case opGetJobAttributes:
		resp = s.handleGetJobAttributes(req)
	case opCancelJob:
		resp = s.handleCancelJob(req)
	default:
		s.log.Warn().Int16("operation", req.OperationOrStatus).Msg("unsupported operation")
		resp = s.errorResponse(req.RequestID, StatusClientErrorBadRequest)
	}

	encoded, err := ipp.Encode(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode IPP response")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/ipp")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encoded)
}

func (s *Server) baseResponse(requestID int32, status int16) *ipp.Message {
	resp := ipp.NewMessage(status, requestID)
	op := resp.Group(ipp.TagOperationAttrs)
	op.Set("attributes-charset", ipp.NewCharset("utf-8"))
	op.Set("attributes-natural-language", ipp.NewNaturalLanguage("en"))
	return resp
}

func (s *Server) errorResponse(requestID int32, status int16) *ipp.Message {
	return s.baseResponse(requestID, status)
}

func (s *Server) handleGetPrinterAttributes(req *ipp.Message) *ipp.Message {
	s.log.Debug().Msg("handling Get-Printer-Attributes")

	resp := s.baseResponse(req.RequestID, StatusOK)
	p := resp.Group(ipp.TagPrinterAttrs)

	p.Set("printer-uri-supported", ipp.NewURI(s.printerURI))
	p.Set("uri-security-supported", ipp.NewKeyword("none"))
	p.Set("uri-authentication-supported", ipp.NewKeyword("none"))
	p.Set("printer-name", ipp.NewNameWithoutLanguage(s.printer.Name))
	p.Set("printer-state", ipp.NewEnum(3)) // idle
	p.Set("printer-state-reasons", ipp.NewKeyword("none"))
	p.Set("ipp-versions-supported", ipp.NewKeyword("2.0"))

	ops := p.Set("operations-supported", ipp.NewEnum(opPrintJob))
	for _, op := range []int32{opValidateJob, opGetJobAttributes, opGetJobs, opGetPrinterAttributes, opCancelJob} {
		ops.Add(ipp.NewEnum(op))
	}

	fmts := p.Set("document-format-supported", ipp.NewMimeMediaType("image/urf"))
	fmts.Add(ipp.NewMimeMediaType("image/pwg-raster"))
	p.Set("document-format-default", ipp.NewMimeMediaType("image/urf"))

	p.Set("printer-is-accepting-jobs", ipp.NewBoolean(true))
	p.Set("queued-job-count", ipp.NewInteger(int32(s.pendingJobCount())))
	p.Set("printer-make-and-model", ipp.NewNameWithoutLanguage(s.printer.MakeModel))
	p.Set("printer-location", ipp.NewTextWithoutLanguage(s.printer.Location))
	p.Set("color-supported", ipp.NewBoolean(s.printer.Color))

	if profile := s.profiles.GetProfile(s.printer.Name, s.printer.MakeModel); profile != nil {
		p.Set("media-default", ipp.NewKeyword(profile.DefaultMedia))
		names := profile.MediaNames()
		supported := p.Set("media-supported", ipp.NewKeyword(names[0]))
		for _, name := range names[1:] {
			supported.Add(ipp.NewKeyword(name))
		}
	}

	sides := "one-sided"
	if s.printer.Duplex {
		sides = "two-sided-long-edge"
	}
	p.Set("sides-supported", ipp.NewKeyword(sides))
	p.Set("sides-default", ipp.NewKeyword("one-sided"))

	caps := capabilities.NewURFCapabilities(&capabilities.Capabilities{
		ColorSupported:  s.printer.Color,
		DuplexSupported: s.printer.Duplex,
		Resolutions:     s.printer.Resolutions,
	})
	urfValues := caps.Values()
	urf := p.Set("urf-supported", ipp.NewKeyword(urfValues[0]))
	for _, v := range urfValues[1:] {
		urf.Add(ipp.NewKeyword(v))
	}

	return resp
}

func (s *Server) handlePrintJob(req *ipp.Message) *ipp.Message {
	s.log.Info().Msg("handling Print-Job")

	if len(req.Data) == 0 {
		s.log.Error().Msg("print job carried no document data")
		return s.errorResponse(req.RequestID, StatusClientErrorBadRequest)
	}

	var warnings []raster.Warning
	format, _, _, _, err := raster.Decode(req.Data, "", func(w raster.Warning) {
		warnings = append(warnings, w)
		s.log.Warn().Str("field", w.Field).Str("message", w.Message).Msg("raster header warning")
	})
	if err != nil {
		s.log.Error().Err(err).Msg("rejected unparsable raster document")
		return s.errorResponse(req.RequestID, StatusClientErrorBadRequest)
	}

	id := atomic.AddInt32(&s.nextJobID, 1)
	s.mu.Lock()
	s.jobs[id] = &job{id: id, state: 3, reasons: "none", format: format, warnings: warnings}
	s.mu.Unlock()

	s.log.Info().Int32("job_id", id).Str("format", format.String()).Msg("job accepted")

	resp := s.baseResponse(req.RequestID, StatusOK)
	j := resp.Group(ipp.TagJobAttrs)
	j.Set("job-id", ipp.NewInteger(id))
	j.Set("job-uri", ipp.NewURI(fmt.Sprintf("%s/jobs/%d", s.printerURI, id)))
	j.Set("job-state", ipp.NewEnum(3))
	j.Set("job-state-reasons", ipp.NewKeyword("none"))

	return resp
}

func (s *Server) handleValidateJob(req *ipp.Message) *ipp.Message {
	s.log.Debug().Msg("handling Validate-Job")
	return s.baseResponse(req.RequestID, StatusOK)
}

func (s *Server) handleGetJobs(req *ipp.Message) *ipp.Message {
	s.log.Debug().Msg("handling Get-Jobs")

	resp := s.baseResponse(req.RequestID, StatusOK)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jobs) == 0 {
		return resp
	}
	first := true
	for _, j := range s.jobs {
		g := resp.Group(ipp.TagJobAttrs)
		if first {
			g.Set("job-id", ipp.NewInteger(j.id))
			first = false
			continue
		}
		g.Add("job-id", ipp.NewInteger(j.id))
	}
	return resp
}

func (s *Server) handleGetJobAttributes(req *ipp.Message) *ipp.Message {
	s.log.Debug().Msg("handling Get-Job-Attributes")

	id, ok := jobIDOf(req)
	if !ok {
		return s.errorResponse(req.RequestID, StatusClientErrorBadRequest)
	}

	s.mu.Lock()
	j, found := s.jobs[id]
	s.mu.Unlock()
	if !found {
		return s.errorResponse(req.RequestID, StatusClientErrorNotFound)
	}

	resp := s.baseResponse(req.RequestID, StatusOK)
	g := resp.Group(ipp.TagJobAttrs)
	g.Set("job-id", ipp.NewInteger(j.id))
	g.Set("job-state", ipp.NewEnum(j.state))
	g.Set("job-state-reasons", ipp.NewKeyword(j.reasons))
	return resp
}

func (s *Server) handleCancelJob(req *ipp.Message) *ipp.Message {
	s.log.Debug().Msg("handling Cancel-Job")

	id, ok := jobIDOf(req)
	if !ok {
		return s.errorResponse(req.RequestID, StatusClientErrorBadRequest)
	}

	s.mu.Lock()
	j, found := s.jobs[id]
	if found {
		j.state = 7 // canceled
		j.reasons = "job-canceled-by-user"
	}
	s.mu.Unlock()
	if !found {
		return s.errorResponse(req.RequestID, StatusClientErrorNotFound)
	}

	return s.baseResponse(req.RequestID, StatusOK)
}

func (s *Server) pendingJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if j.state == 3 {
			n++
		}
	}
	return n
}

func jobIDOf(req *ipp.Message) (int32, bool) {
	a := req.Group(ipp.TagOperationAttrs).Get("job-id")
	if a == nil || len(a.Values) == 0 {
		return 0, false
	}
	return a.Values[0].Int, true
}
