package handlers

import (
	"net/http"

	"github.com/fartlog/fartlog-be/internal/services"
)

// AnalyticsHandler handles the read-only aggregation endpoints.
type AnalyticsHandler struct {
	service services.AnalyticsServiceProvider
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(service services.AnalyticsServiceProvider) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func filterFromQuery(r *http.Request) services.AnalyticsFilter {
	q := r.URL.Query()
	return services.AnalyticsFilter{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Days:     q.Get("days"),
		Weeks:    q.Get("weeks"),
	}
}

// DailyCount handles GET /analytics/daily-count.
func (h *AnalyticsHandler) DailyCount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := h.service.DailyCount(user.ID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// WeeklyCount handles GET /analytics/weekly-count.
func (h *AnalyticsHandler) WeeklyCount(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := h.service.WeeklyCount(user.ID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// TypeDistribution handles GET /analytics/type-distribution.
func (h *AnalyticsHandler) TypeDistribution(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := h.service.TypeDistribution(user.ID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// SmellDistribution handles GET /analytics/smell-distribution.
func (h *AnalyticsHandler) SmellDistribution(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := h.service.SmellDistribution(user.ID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// DurationDistribution handles GET /analytics/duration-distribution.
func (h *AnalyticsHandler) DurationDistribution(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := h.service.DurationDistribution(user.ID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// HourlyHeatmap handles GET /analytics/hourly-heatmap.
func (h *AnalyticsHandler) HourlyHeatmap(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := h.service.HourlyHeatmap(user.ID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// CrossAnalysis handles GET /analytics/cross-analysis.
func (h *AnalyticsHandler) CrossAnalysis(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	out, err := h.service.CrossAnalysis(user.ID, filterFromQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
