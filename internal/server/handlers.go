package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/ecorank/internal/apperr"
	"github.com/hyperjump/ecorank/internal/export"
	"github.com/hyperjump/ecorank/internal/models"
)

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var input models.LinkInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, apperr.InvalidInput, "invalid request body")
		return
	}
	s.logger.Debug("add product request", zap.String("link", input.Link))
	products, err := s.session.AddLink(r.Context(), input.Link)
	if err != nil {
		s.respondFailure(w, "add product", err)
		return
	}
	s.respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.session.Products(r.Context())
	if err != nil {
		s.respondFailure(w, "get products", err)
		return
	}
	s.respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reset(r.Context()); err != nil {
		s.respondFailure(w, "reset", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Reset successful"})
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.LinksResponse{Links: s.session.Links()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	products, err := s.session.Products(r.Context())
	if err != nil {
		s.respondFailure(w, "status", err)
		return
	}
	resp := models.StatusResponse{
		SessionID: s.session.SessionID(),
		Links:     len(s.session.Links()),
		Products:  len(products),
		Provider:  s.info.Provider,
		Model:     s.info.Model,
	}
	if s.info.PromptSource != nil {
		resp.PromptSource = s.info.PromptSource()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	products, err := s.session.Products(r.Context())
	if err != nil {
		s.respondFailure(w, "export", err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, products); err != nil {
		s.logger.Error("export failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, apperr.Unknown, err.Error())
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="ecorank-products.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.AdapterUnavailable:
		return http.StatusServiceUnavailable
	case apperr.AdapterRejected, apperr.MalformedReply, apperr.CardinalityMismatch:
		return http.StatusBadGateway
	case apperr.DegenerateScoreSet:
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) respondFailure(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	kind := apperr.KindOf(err)
	if status >= http.StatusInternalServerError && kind == apperr.Unknown {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Warn(op+" failed", zap.String("kind", kind.String()), zap.Error(err))
	}
	s.respondError(w, status, kind, err.Error())
}

// respondJSON encodes data before writing the header so an encoding failure
// still reaches the client as a 500.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Error: "failed to encode response",
			Kind:  apperr.Unknown.String(),
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) respondError(w http.ResponseWriter, status int, kind apperr.Kind, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Error: message, Kind: kind.String()})
}
