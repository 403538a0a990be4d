package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/ingest"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/model"
	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/store"
)

type calculateRequest struct {
	ID        string   `json:"id,omitempty"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Subtotal  *float64 `json:"subtotal"`
	Timestamp string   `json:"timestamp,omitempty"`
}

type batchRequest struct {
	Orders []calculateRequest `json:"orders"`
	Source string             `json:"source,omitempty"`
}

type batchResponse struct {
	Count   int               `json:"count"`
	Results []model.TaxResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toOrder validates the request shape and fills the default timestamp. The
// id must come from the caller; a request without one is rejected.
func (req calculateRequest) toOrder(now time.Time) (model.Order, error) {
	if req.Latitude == nil || req.Longitude == nil || req.Subtotal == nil {
		return model.Order{}, errMissingFields
	}
	order := model.Order{
		ID:        req.ID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Subtotal:  *req.Subtotal,
		Timestamp: req.Timestamp,
	}
	if order.Timestamp == "" {
		order.Timestamp = ingest.JournalTimestamp(now.UTC())
	}
	return order, order.Validate()
}

var errMissingFields = eris.New("latitude, longitude and subtotal are required")

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCalculate computes tax for one order. Persistence and journaling are
// best effort; their failures are logged, the computed result still returns.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	order, err := req.toOrder(time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.Process(order)
	if err != nil {
		zap.L().Error("server: calculate failed", zap.String("order_id", order.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "tax computation failed")
		return
	}

	s.persist(r, []model.Order{order}, model.SourceCreateOrder)
	writeJSON(w, http.StatusOK, result)
}

// handleCalculateBatch computes tax for a batch. Results come back in input
// order. A single malformed order rejects the whole batch.
func (s *Server) handleCalculateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if len(req.Orders) == 0 {
		writeError(w, http.StatusBadRequest, "orders must be a non-empty array")
		return
	}

	now := time.Now()
	orders := make([]model.Order, 0, len(req.Orders))
	for _, cr := range req.Orders {
		order, err := cr.toOrder(now)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		orders = append(orders, order)
	}

	results, err := s.engine.ProcessBatch(r.Context(), orders)
	if err != nil {
		zap.L().Error("server: batch calculate failed", zap.Int("orders", len(orders)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "tax computation failed")
		return
	}

	source := req.Source
	if source == "" {
		source = model.SourceCSVOrders
	}
	s.persist(r, orders, source)

	writeJSON(w, http.StatusOK, batchResponse{Count: len(results), Results: results})
}

func (s *Server) persist(r *http.Request, orders []model.Order, source string) {
	if s.store != nil {
		stored := make([]store.StoredOrder, 0, len(orders))
		for _, o := range orders {
			stored = append(stored, store.FromOrder(o, source))
		}
		if err := s.store.SaveOrders(r.Context(), stored); err != nil {
			zap.L().Error("server: persist orders", zap.Int("orders", len(orders)), zap.Error(err))
		}
	}
	if s.opts.InputCSVPath != "" {
		if err := ingest.AppendJournal(s.opts.InputCSVPath, orders); err != nil {
			zap.L().Error("server: append journal", zap.Error(err))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
