package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parcel-tax-scraper/models"
)

// Response formats selected by fetch_type.
const (
	FetchTypeHTML = "html"
	FetchTypeAPI  = "api"
)

const invalidAccessMessage = "Invalid Access"

type searchRequest struct {
	FetchType string `json:"fetch_type"`
	Account   string `json:"account"`
}

type errorPayload struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type resultPayload struct {
	Result *models.TaxRecord `json:"result"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", map[string]string{"Title": s.title})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSearchRequest(r)
	if err != nil || (req.FetchType != FetchTypeHTML && req.FetchType != FetchTypeAPI) {
		zap.L().Warn("rejected search request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("fetch_type", req.FetchType),
			zap.Error(err),
		)
		s.render(w, http.StatusBadRequest, "error_data.html", errorPayload{Error: true, Message: invalidAccessMessage})
		return
	}

	ctx := r.Context()
	if timeout := s.cfg.LookupTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logID := s.startRequest(r, req)
	record, err := s.searcher.Search(ctx, req.Account)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		err = eris.Wrapf(err, "lookup of %s exceeded %s", req.Account, s.cfg.LookupTimeout())
	}
	s.finishRequest(r, logID, err)

	switch req.FetchType {
	case FetchTypeHTML:
		if err != nil {
			s.render(w, http.StatusOK, "error_data.html", errorPayload{Error: true, Message: err.Error()})
			return
		}
		s.render(w, http.StatusOK, "parcel_data.html", record)
	case FetchTypeAPI:
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorPayload{Error: true, Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, resultPayload{Result: record})
	}
}

// decodeSearchRequest reads fetch_type and account from a JSON or form body.
func decodeSearchRequest(r *http.Request) (searchRequest, error) {
	var req searchRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, eris.Wrap(err, "server: decode json body")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, eris.Wrap(err, "server: parse form")
		}
		req.FetchType = r.PostFormValue("fetch_type")
		req.Account = r.PostFormValue("account")
	}

	req.FetchType = strings.ToLower(strings.TrimSpace(req.FetchType))
	return req, nil
}

func (s *Server) startRequest(r *http.Request, req searchRequest) uuid.UUID {
	if s.requests == nil {
		return uuid.Nil
	}
	id, err := s.requests.StartRequest(r.Context(), req.Account, req.FetchType)
	if err != nil {
		zap.L().Warn("failed to record request", zap.String("account", req.Account), zap.Error(err))
		return uuid.Nil
	}
	return id
}

func (s *Server) finishRequest(r *http.Request, id uuid.UUID, lookupErr error) {
	if s.requests == nil || id == uuid.Nil {
		return
	}
	if err := s.requests.FinishRequest(r.Context(), id, lookupErr); err != nil {
		zap.L().Warn("failed to finish request record", zap.Stringer("id", id), zap.Error(err))
	}
}

// render executes a template into a buffer so a template error can still become a 500.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.views.ExecuteTemplate(&buf, name, data); err != nil {
		zap.L().Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
