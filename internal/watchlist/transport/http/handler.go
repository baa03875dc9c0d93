// internal/watchlist/transport/http/handler.go
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xempie/trade-sub002/internal/api/dto"
	"github.com/xempie/trade-sub002/internal/telegram"
	"github.com/xempie/trade-sub002/internal/watchlist"
	"github.com/xempie/trade-sub002/internal/watchlist/repository"
)

// Pricing resolves current prices for the progress field; optional.
type Pricing interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

type Handler struct {
	Repo    repository.WatchlistRepository
	Pricing Pricing
}

func NewHandler(repo repository.WatchlistRepository, pricing Pricing) *Handler {
	return &Handler{Repo: repo, Pricing: pricing}
}

type itemView struct {
	ID           int64    `json:"id"`
	Symbol       string   `json:"symbol"`
	EntryPrice   float64  `json:"entry_price"`
	EntryType    string   `json:"entry_type"`
	Direction    string   `json:"direction"`
	MarginAmount float64  `json:"margin_amount"`
	Percentage   *float64 `json:"percentage,omitempty"`
	InitialPrice *float64 `json:"initial_price,omitempty"`
	Status       string   `json:"status"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	Progress     *float64 `json:"progress,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// List returns active items, enriched with fill progress when a price is
// available.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	items, err := h.Repo.GetActive(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Prices are fetched once per distinct symbol
	prices := map[string]float64{}
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		view := itemView{
			ID:           item.ID,
			Symbol:       item.Symbol,
			EntryPrice:   item.EntryPrice,
			EntryType:    item.EntryType,
			Direction:    item.Direction,
			MarginAmount: item.MarginAmount,
			Percentage:   item.Percentage,
			InitialPrice: item.InitialPrice,
			Status:       item.Status,
			CreatedAt:    item.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}

		if h.Pricing != nil {
			price, ok := prices[item.Symbol]
			if !ok {
				p, err := h.Pricing.Price(r.Context(), item.Symbol)
				if err != nil {
					log.Printf("Watchlist: price for %s unavailable: %v", item.Symbol, err)
					p = 0
				}
				prices[item.Symbol] = p
				price = p
			}
			if price > 0 {
				progress := telegram.OrderProgress(item.EntryPrice, price)
				view.CurrentPrice = &price
				view.Progress = &progress
			}
		}

		views = append(views, view)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    views,
	})
}

// Create adds one row per complete watchlist item; incomplete items are
// skipped, matching how chart-tool exports behave.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON input: "+err.Error())
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added := make([]itemView, 0, len(req.Items))
	for _, input := range req.Items {
		if input.EntryType == "" || input.EntryPrice <= 0 || input.MarginAmount <= 0 {
			continue
		}

		item := &watchlist.Item{
			Symbol:       req.Symbol,
			EntryPrice:   input.EntryPrice,
			EntryType:    input.EntryType,
			Direction:    req.Direction,
			MarginAmount: input.MarginAmount,
			Percentage:   input.Percentage,
			InitialPrice: input.InitialPrice,
			Status:       watchlist.StatusActive,
		}
		if err := h.Repo.Save(r.Context(), item); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		added = append(added, itemView{
			ID:           item.ID,
			Symbol:       item.Symbol,
			EntryPrice:   item.EntryPrice,
			EntryType:    item.EntryType,
			Direction:    item.Direction,
			MarginAmount: item.MarginAmount,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("%d watchlist item(s) added", len(added)),
		"data":    added,
	})
}

// Update changes an item status (active, triggered or cancelled).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Watchlist ID is required")
		return
	}

	var req dto.UpdateWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON input: "+err.Error())
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Repo.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Watchlist item updated",
	})
}

// Delete removes an item.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Watchlist ID is required")
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Watchlist item deleted",
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	log.Printf("Watchlist API error: %s", msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
