// internal/signal/transport/http/handler.go
package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xempie/trade-sub002/internal/api/dto"
	"github.com/xempie/trade-sub002/internal/metrics"
	"github.com/xempie/trade-sub002/internal/signal/service"
	"github.com/xempie/trade-sub002/internal/telegram"
)

type Handler struct {
	Service  *service.Service
	Notifier service.Notifier
}

func NewHandler(svc *service.Service, notifier service.Notifier) *Handler {
	return &Handler{Service: svc, Notifier: notifier}
}

type debugInfo struct {
	RequestID string      `json:"request_id"`
	Type      string      `json:"type,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

type errorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	DebugInfo debugInfo `json:"debug_info"`
}

// Webhook ingests alert payloads from charting tools. The caller always
// gets JSON back: the processed result, or HTTP 500 with the error and a
// debug snapshot.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req dto.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeWebhookError(w, r, requestID, "", nil, "Invalid JSON input: "+err.Error())
		return
	}

	result, err := h.Service.ProcessWebhook(r.Context(), req)
	if err != nil {
		metrics.WebhookSignalsTotal.WithLabelValues(req.Type, "error").Inc()
		h.writeWebhookError(w, r, requestID, req.Type, req, err.Error())
		return
	}

	metrics.WebhookSignalsTotal.WithLabelValues(result.Type, "ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) writeWebhookError(w http.ResponseWriter, r *http.Request, requestID, alertType string, payload interface{}, errMsg string) {
	log.Printf("Webhook error [%s]: %s", requestID, errMsg)

	if h.Notifier != nil {
		h.Notifier.Send(r.Context(), telegram.ErrorAlert(errMsg, "webhook "+requestID))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(errorResponse{
		Success: false,
		Error:   errMsg,
		DebugInfo: debugInfo{
			RequestID: requestID,
			Type:      alertType,
			Payload:   payload,
		},
	})
}

type importResponse struct {
	Success       bool                  `json:"success"`
	SignalID      int64                 `json:"signal_id"`
	Message       string                `json:"message"`
	ProcessedData service.ProcessedData `json:"processed_data"`
}

// Import stores a normalized signal posted by internal callers.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeImportError(w, http.StatusBadRequest, "Invalid JSON input: "+err.Error())
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		writeImportError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.Import(r.Context(), req)
	if err != nil {
		writeImportError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(importResponse{
		Success:       true,
		SignalID:      result.SignalID,
		Message:       "Signal imported successfully",
		ProcessedData: result.Processed,
	})
}

type signalView struct {
	ID          int64     `json:"id"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Leverage    int       `json:"leverage"`
	EntryMarket float64   `json:"entry_market"`
	Entry2      *float64  `json:"entry_2,omitempty"`
	Entry3      *float64  `json:"entry_3,omitempty"`
	TakeProfits []float64 `json:"take_profits"`
	StopLoss    float64   `json:"stop_loss"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	CreatedAt   string    `json:"created_at"`
}

// List returns the active signals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	signals, err := h.Service.ActiveSignals(r.Context())
	if err != nil {
		writeImportError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]signalView, 0, len(signals))
	for _, s := range signals {
		views = append(views, signalView{
			ID:          s.ID,
			Symbol:      s.Symbol,
			Side:        s.Side,
			Leverage:    s.Leverage,
			EntryMarket: s.EntryMarketPrice,
			Entry2:      s.Entry2,
			Entry3:      s.Entry3,
			TakeProfits: s.TakeProfits(),
			StopLoss:    s.StopLoss,
			Source:      s.SourceName,
			Status:      s.Status,
			CreatedAt:   s.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"count":   len(views),
		"data":    views,
	})
}

// Archive retires a signal; archived signals drop out of the active list
// and of the monitoring jobs.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeImportError(w, http.StatusBadRequest, "invalid signal id")
		return
	}

	if err := h.Service.ArchiveSignal(r.Context(), id); err != nil {
		writeImportError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Signal archived",
	})
}

func writeImportError(w http.ResponseWriter, status int, msg string) {
	log.Printf("Import signal error: %s", msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
