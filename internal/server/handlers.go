package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/config"
	apperrors "github.com/agbru/rsagcd/internal/errors"
	"github.com/agbru/rsagcd/internal/logging"
	"github.com/agbru/rsagcd/internal/report"
	"github.com/agbru/rsagcd/internal/service"
)

var tracer = otel.Tracer("server")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{"algorithms": s.factory.List()})
}

// handleGCD computes one GCD from the hexadecimal query parameters a and b.
func (s *Server) handleGCD(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	a, b, algo, err := parseGCDParams(r)
	if err != nil {
		s.writeParamError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "handleGCD", trace.WithAttributes(
		attribute.String("algorithm", algo),
		attribute.Int("bits_a", a.NumBits()),
		attribute.Int("bits_b", b.NumBits()),
	))
	defer span.End()

	start := time.Now()
	g, err := s.service.GCD(ctx, algo, a, b)
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}
	s.writeJSONResponse(w, http.StatusOK, GCDResponse{
		A:         a.Text(16),
		B:         b.Text(16),
		Result:    g.Text(16),
		Algorithm: algoOrDefault(algo),
		Duration:  time.Since(start).String(),
	})
}

// handleScan runs an all-pairs scan over the moduli of a JSON body.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	req, moduli, err := s.decodeScanRequest(w, r)
	if err != nil {
		s.writeParamError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "handleScan", trace.WithAttributes(
		attribute.String("algorithm", req.Algo),
		attribute.Int("moduli", len(moduli)),
	))
	defer span.End()

	start := time.Now()
	res, err := s.service.Scan(ctx, req.Algo, moduli)
	if err != nil {
		s.writeServiceError(ctx, w, err)
		return
	}
	s.writeJSONResponse(w, http.StatusOK, buildScanResponse(req.Algo, len(moduli), res, time.Since(start)))
}

func algoOrDefault(algo string) string {
	if algo == "" {
		return config.DefaultAlgo
	}
	return algo
}

func parseGCDParams(r *http.Request) (a, b *bignum.BigNum, algo string, err error) {
	q := r.URL.Query()
	parse := func(name string) (*bignum.BigNum, error) {
		v := q.Get(name)
		if v == "" {
			return nil, paramError{Message: fmt.Sprintf("Missing '%s' parameter", name), StatusCode: http.StatusBadRequest}
		}
		z, err := bignum.Parse(v, 16)
		if err != nil {
			return nil, paramError{Message: fmt.Sprintf("Invalid '%s' parameter: must be a hexadecimal integer", name), StatusCode: http.StatusBadRequest}
		}
		return z, nil
	}
	if a, err = parse("a"); err != nil {
		return nil, nil, "", err
	}
	if b, err = parse("b"); err != nil {
		return nil, nil, "", err
	}
	return a, b, q.Get("algo"), nil
}

func (s *Server) decodeScanRequest(w http.ResponseWriter, r *http.Request) (ScanRequest, []*bignum.BigNum, error) {
	var req ScanRequest
	body := http.MaxBytesReader(w, r.Body, s.securityConfig.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, nil, paramError{Message: fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), StatusCode: http.StatusRequestEntityTooLarge}
		}
		return req, nil, paramError{Message: "Invalid JSON body: " + err.Error(), StatusCode: http.StatusBadRequest}
	}
	moduli := make([]*bignum.BigNum, len(req.Moduli))
	for i, h := range req.Moduli {
		m, err := bignum.Parse(h, 16)
		if err != nil {
			return req, nil, paramError{Message: fmt.Sprintf("Invalid modulus %d: must be a hexadecimal integer", i), StatusCode: http.StatusBadRequest}
		}
		moduli[i] = m
	}
	return req, moduli, nil
}

func buildScanResponse(algo string, n int, res service.ScanResult, d time.Duration) ScanResponse {
	resp := ScanResponse{
		Algorithm:  algoOrDefault(algo),
		Moduli:     n,
		Units:      res.Stats.Units,
		Efficiency: res.Stats.Efficiency,
		Duration:   d.String(),
		Vulnerable: report.Vulnerable(res.Findings),
		Findings:   make([]ScanFinding, len(res.Findings)),
	}
	if resp.Vulnerable == nil {
		resp.Vulnerable = []int{}
	}
	for i, f := range res.Findings {
		resp.Findings[i] = ScanFinding{IndexA: f.I, IndexB: f.J, Factor: f.Factor.Text(16), Duplicate: f.Duplicate}
	}
	return resp
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrOperandTooLarge), errors.Is(err, service.ErrTooManyModuli):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrWorkLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrUnknownAlgorithm), errors.Is(err, service.ErrTooFewModuli), apperrors.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", err, logging.Int("status", status))
	}
	s.writeErrorResponse(w, status, err.Error())
}

func (s *Server) writeParamError(w http.ResponseWriter, err error) {
	var pe paramError
	if errors.As(err, &pe) {
		s.writeErrorResponse(w, pe.StatusCode, pe.Message)
		return
	}
	s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
