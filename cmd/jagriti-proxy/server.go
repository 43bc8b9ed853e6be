package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lexisearch/jagriti-case-client/internal/config"
	"github.com/lexisearch/jagriti-case-client/pkg/cache"
	httpclient "github.com/lexisearch/jagriti-case-client/pkg/client"
	"github.com/lexisearch/jagriti-case-client/pkg/jagriti"
)

// caseService is the slice of the domain client the HTTP layer needs.
type caseService interface {
	FetchStates(ctx context.Context) ([]jagriti.StateInfo, error)
	FetchCommissions(ctx context.Context, stateID string) ([]jagriti.CommissionInfo, error)
	SearchCases(ctx context.Context, params jagriti.SearchParams) ([]jagriti.CaseRecord, int, error)
}

// Server exposes the normalized case-search API.
type Server struct {
	service caseService
	store   cache.Store
	cfg     *config.Config
	logger  zerolog.Logger
}

// NewServer wires the HTTP layer to a domain client and cache store.
func NewServer(service caseService, store cache.Store, cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{service: service, store: store, cfg: cfg, logger: logger}
}

// searchRoutes maps URL suffixes under /cases/ to search types.
var searchRoutes = map[string]string{
	"by-case-number":          "case_number",
	"by-complainant":          "complainant",
	"by-respondent":           "respondent",
	"by-complainant-advocate": "complainant_advocate",
	"by-respondent-advocate":  "respondent_advocate",
	"by-industry-type":        "industry_type",
	"by-judge":                "judge",
}

// Routes builds the request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /states", s.handleStates)
	mux.HandleFunc("GET /commissions/{state_id}", s.handleCommissions)
	mux.HandleFunc("GET /cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /cache/cleanup", s.handleCacheCleanup)

	for suffix, searchType := range searchRoutes {
		st := searchType
		mux.HandleFunc("GET /cases/"+suffix, func(w http.ResponseWriter, r *http.Request) {
			s.handleSearch(w, r, st)
		})
		mux.HandleFunc("POST /cases/"+suffix, func(w http.ResponseWriter, r *http.Request) {
			s.handleSearch(w, r, st)
		})
	}

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	endpoints := make([]string, 0, len(searchRoutes))
	for suffix := range searchRoutes {
		endpoints = append(endpoints, "/cases/"+suffix)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":          "jagriti-case-client",
		"search_endpoints": endpoints,
		"search_types":     jagriti.SearchTypes(),
	})
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.service.FetchStates(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"states": states})
}

func (s *Server) handleCommissions(w http.ResponseWriter, r *http.Request) {
	stateID := r.PathValue("state_id")
	if stateID == "" {
		writeDetail(w, http.StatusBadRequest, "state_id is required")
		return
	}

	commissions, err := s.service.FetchCommissions(r.Context(), stateID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"commissions": commissions})
}

// searchRequest is the JSON body accepted by the POST search endpoints. The
// GET variants take the same fields as query parameters.
type searchRequest struct {
	State       string `json:"state"`
	Commission  string `json:"commission"`
	SearchValue string `json:"search_value"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	Page        int    `json:"page"`
	PerPage     int    `json:"per_page"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, searchType string) {
	req, err := s.parseSearchRequest(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.State) == "" {
		writeDetail(w, http.StatusBadRequest, "state is required")
		return
	}
	if strings.TrimSpace(req.Commission) == "" {
		writeDetail(w, http.StatusBadRequest, "commission is required")
		return
	}
	if strings.TrimSpace(req.SearchValue) == "" {
		writeDetail(w, http.StatusBadRequest, "search_value is required")
		return
	}
	if req.Page < 1 {
		writeDetail(w, http.StatusBadRequest, "page must be >= 1")
		return
	}
	if req.PerPage < 1 || req.PerPage > s.cfg.MaxPageSize {
		writeDetail(w, http.StatusBadRequest, "per_page must be between 1 and "+strconv.Itoa(s.cfg.MaxPageSize))
		return
	}

	records, total, err := s.service.SearchCases(r.Context(), jagriti.SearchParams{
		SearchType:     searchType,
		StateText:      req.State,
		CommissionText: req.Commission,
		SearchValue:    req.SearchValue,
		DateFrom:       req.DateFrom,
		DateTo:         req.DateTo,
		Page:           req.Page,
		PerPage:        req.PerPage,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if records == nil {
		records = []jagriti.CaseRecord{}
	}

	totalPages := (total + req.PerPage - 1) / req.PerPage
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cases":       records,
		"total_count": total,
		"page":        req.Page,
		"per_page":    req.PerPage,
		"total_pages": totalPages,
	})
}

// parseSearchRequest reads the search fields from the JSON body (POST) or
// query string (GET) and applies pagination defaults.
func (s *Server) parseSearchRequest(r *http.Request) (searchRequest, error) {
	var req searchRequest

	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("invalid JSON body: " + err.Error())
		}
	} else {
		q := r.URL.Query()
		req.State = q.Get("state")
		req.Commission = q.Get("commission")
		req.SearchValue = q.Get("search_value")
		req.DateFrom = q.Get("date_from")
		req.DateTo = q.Get("date_to")
		if v := q.Get("page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, errors.New("page must be an integer")
			}
			req.Page = n
		}
		if v := q.Get("per_page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, errors.New("per_page must be an integer")
			}
			req.PerPage = n
		}
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = s.cfg.DefaultPageSize
	}
	return req, nil
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_entries":   stats.TotalEntries,
		"active_entries":  stats.ActiveEntries,
		"expired_entries": stats.ExpiredEntries,
	})
}

func (s *Server) handleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.CleanupExpired(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}

// writeError maps domain and transport errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var notFound *jagriti.NotFoundError
	var upstream *httpclient.UpstreamError

	switch {
	case errors.Is(err, httpclient.ErrCaptchaRequired):
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"detail":  "captcha_required",
			"captcha": true,
			"message": "The upstream site is currently requiring captcha verification. Please try again later.",
		})
	case errors.Is(err, httpclient.ErrTimeout):
		writeDetail(w, http.StatusGatewayTimeout, "The upstream site did not respond in time.")
	case errors.As(err, &notFound):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, jagriti.ErrUnknownSearchType):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, httpclient.ErrUpstreamUnavailable), errors.As(err, &upstream):
		s.logger.Error().Err(err).Msg("Upstream request failed")
		writeDetail(w, http.StatusBadGateway, "The upstream site is unavailable.")
	default:
		s.logger.Error().Err(err).Msg("Unhandled error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
