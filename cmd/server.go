package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bankiq/bankiq-cli/internal/engine"
	"github.com/bankiq/bankiq-cli/internal/monitoring"
)

// apiServer exposes the engine's operations over JSON HTTP.
type apiServer struct {
	engine  *engine.Engine
	metrics *monitoring.Metrics
}

func newMux(env *appEnv) *http.ServeMux {
	s := &apiServer{engine: env.engine, metrics: env.metrics}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/assess", s.handleAssess)
	mux.HandleFunc("POST /v1/alerts", s.handleAlerts)
	mux.HandleFunc("POST /v1/compare", s.handleCompare)
	mux.HandleFunc("POST /v1/resolve", s.handleResolve)
	mux.HandleFunc("GET /v1/filings", s.handleFilings)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

type bankRequest struct {
	Bank string `json:"bank"`
}

type compareRequest struct {
	Bank    string   `json:"bank"`
	Peers   []string `json:"peers"`
	Metric  string   `json:"metric"`
	Dataset string   `json:"dataset,omitempty"`
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *apiServer) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req bankRequest
	if !s.decode(w, r, &req) {
		return
	}
	res := s.engine.AssessRisk(r.Context(), req.Bank)
	s.record("assess_risk", res.Response)
	writeJSON(w, statusForCode(res.Response), res)
}

func (s *apiServer) handleAlerts(w http.ResponseWriter, r *http.Request) {
	var req bankRequest
	if !s.decode(w, r, &req) {
		return
	}
	res := s.engine.MonitorAlerts(r.Context(), req.Bank)
	s.record("monitor_alerts", res.Response)
	writeJSON(w, statusForCode(res.Response), res)
}

func (s *apiServer) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !s.decode(w, r, &req) {
		return
	}
	var res *engine.ComparisonResult
	if req.Dataset != "" {
		res = s.engine.CompareBanksDataset(r.Context(), req.Bank, req.Peers, req.Metric, req.Dataset)
	} else {
		res = s.engine.CompareBanks(r.Context(), req.Bank, req.Peers, req.Metric)
	}
	s.record("compare_banks", res.Response)
	writeJSON(w, statusForCode(res.Response), res)
}

func (s *apiServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req bankRequest
	if !s.decode(w, r, &req) {
		return
	}
	res := s.engine.ResolveBank(r.Context(), req.Bank)
	s.record("resolve_bank", res.Response)
	writeJSON(w, statusForCode(res.Response), res)
}

func (s *apiServer) handleFilings(w http.ResponseWriter, r *http.Request) {
	bank := r.URL.Query().Get("bank")
	form := r.URL.Query().Get("form")
	res := s.engine.SearchFilings(r.Context(), bank, form)
	s.record("search_filings", res.Response)
	writeJSON(w, statusForCode(res.Response), res)
}

// decode reads a JSON body into dst, answering 400 on malformed input.
func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, engine.Response{
			Success: false,
			Error:   "invalid JSON request body",
			Code:    engine.CodeInvalid,
		})
		return false
	}
	return true
}

func (s *apiServer) record(operation string, resp engine.Response) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if !resp.Success {
		result = resp.Code
	}
	s.metrics.RecordOperation(operation, result)
}

func statusForCode(resp engine.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.Code {
	case engine.CodeNotFound:
		return http.StatusNotFound
	case engine.CodeInvalid:
		return http.StatusBadRequest
	case engine.CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("writing response", zap.Error(err))
	}
}
