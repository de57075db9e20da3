package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/pgrapher/internal/metrics"
	"github.com/JakeFAU/pgrapher/internal/store"
)

const maxBodyBytes = 1 << 20

// listMachines handles GET /api/machines. It returns a JSON array of
// hostnames, empty when nothing has been recorded yet.
func (s *Server) listMachines(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	hosts, err := sess.ListHosts(r.Context())
	if err != nil {
		s.serverError(w, r, "list hosts failed", err)
		return
	}
	if hosts == nil {
		hosts = []string{}
	}
	s.writeResults(w, hosts)
}

// listTests handles GET /api/tests with results averaged per
// (hostname, test, threads).
func (s *Server) listTests(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	results, err := sess.ListAggregatedTests(r.Context())
	if err != nil {
		s.serverError(w, r, "list tests failed", err)
		return
	}
	s.writeResults(w, toAggregatedDTOs(results))
}

// listHostTests handles GET /api/tests/{hostname}: 404 when the host has no
// rows. A bare /api/tests/ never reaches it; the router serves the list.
func (s *Server) listHostTests(w http.ResponseWriter, r *http.Request) {
	hostname, err := pathParam(r, "hostname")
	if err != nil || hostname == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	results, err := sess.ListHostAggregatedTests(r.Context(), hostname)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		s.serverError(w, r, "list host tests failed", err)
		return
	}
	s.writeResults(w, toAggregatedDTOs(results))
}

// deleteTest handles DELETE /api/tests/{testId}. It answers 204 whether or
// not a row matched. DELETE /api/tests/ is a 405 from the router.
func (s *Server) deleteTest(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt32(chi.URLParam(r, "testId"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	affected, err := sess.DeleteTest(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "delete test failed", err)
		return
	}
	metrics.ObserveDelete(affected)
	w.WriteHeader(http.StatusNoContent)
}

// createTest handles POST /api/tests. Every field arrives as a JSON string;
// numeric ones are parsed here before binding.
func (s *Server) createTest(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	result, err := req.toTestResult()
	if err != nil {
		s.logger.Debug("rejected result", zap.Error(err), zap.String("request_id", requestID(r.Context())))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.InsertTest(r.Context(), result); err != nil {
		s.serverError(w, r, "insert test failed", err)
		return
	}
	metrics.ObserveInsert()
	w.WriteHeader(http.StatusOK)
}

// session fetches the request's session, answering 500 if the scope is missing.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (store.Session, bool) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		s.logger.Error("no session in request scope", zap.String("path", r.URL.Path))
		w.WriteHeader(http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID(r.Context())),
	)
	w.WriteHeader(http.StatusInternalServerError)
}

func (s *Server) writeResults(w http.ResponseWriter, payload any) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	s.writeJSON(w, http.StatusOK, payload)
}

type resultRequest struct {
	Hostname *string `json:"hostname"`
	Test     *string `json:"test"`
	Threads  *string `json:"threads"`
	Run      *string `json:"run"`
	Result   *string `json:"result"`
}

func (req resultRequest) toTestResult() (store.TestResult, error) {
	if req.Hostname == nil || req.Test == nil || req.Threads == nil || req.Run == nil || req.Result == nil {
		return store.TestResult{}, errors.New("hostname, test, threads, run and result are required")
	}
	if *req.Hostname == "" || *req.Test == "" {
		return store.TestResult{}, errors.New("hostname and test must not be empty")
	}
	threads, err := parseInt32(*req.Threads)
	if err != nil {
		return store.TestResult{}, errors.New("invalid threads")
	}
	run, err := parseInt32(*req.Run)
	if err != nil {
		return store.TestResult{}, errors.New("invalid run")
	}
	result, err := strconv.ParseFloat(*req.Result, 64)
	if err != nil || math.IsNaN(result) || math.IsInf(result, 0) {
		return store.TestResult{}, errors.New("invalid result")
	}
	return store.TestResult{
		Hostname: *req.Hostname,
		Test:     *req.Test,
		Threads:  threads,
		Run:      run,
		Result:   result,
	}, nil
}

// pathParam returns the decoded URL parameter. chi matches against RawPath
// when the request carries one, so only then is the value still escaped.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", fmt.Errorf("unescape %s: %w", key, err)
	}
	return decoded, nil
}

func parseInt32(s string) (int32, error) {
	if s == "" {
		return 0, errors.New("empty integer")
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse integer %q: %w", s, err)
	}
	return int32(v), nil
}

type aggregatedDTO struct {
	Hostname      string  `json:"hostname"`
	Test          string  `json:"test"`
	Threads       int32   `json:"threads"`
	AverageResult float64 `json:"average_result"`
}

func toAggregatedDTOs(in []store.AggregatedResult) []aggregatedDTO {
	out := make([]aggregatedDTO, 0, len(in))
	for _, r := range in {
		out = append(out, aggregatedDTO{
			Hostname:      r.Hostname,
			Test:          r.Test,
			Threads:       r.Threads,
			AverageResult: r.AverageResult,
		})
	}
	return out
}
