package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Temirlan472/Learning_Tracker/internal/services"
	"github.com/gorilla/mux"
)

type AnalyticsHandler struct {
	Service *services.AnalyticsService
}

func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: service}
}

// GET /analytics/{userId}
func (h *AnalyticsHandler) GetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	analytics, err := h.Service.GetAnalytics(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// POST /analytics/{userId}/init
func (h *AnalyticsHandler) InitAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	analytics, err := h.Service.InitAnalytics(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// PATCH /analytics/{userId}/learning-hours
func (h *AnalyticsHandler) UpdateLearningHoursHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req struct {
		Hours *float64 `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Hours == nil {
		writeError(w, http.StatusBadRequest, "valid hours value required")
		return
	}

	analytics, err := h.Service.UpdateLearningHours(r.Context(), userID, *req.Hours)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// PATCH /analytics/{userId}/streak
func (h *AnalyticsHandler) UpdateStreakHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req struct {
		CurrentStreak *int `json:"currentStreak"`
		LongestStreak *int `json:"longestStreak"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentStreak == nil {
		writeError(w, http.StatusBadRequest, "streak values required")
		return
	}

	hint := 0
	if req.LongestStreak != nil {
		hint = *req.LongestStreak
	}

	analytics, err := h.Service.UpdateStreak(r.Context(), userID, *req.CurrentStreak, hint)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// PATCH /analytics/{userId}/increment
func (h *AnalyticsHandler) IncrementStatHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req struct {
		StatName    string `json:"statName"`
		IncrementBy *int   `json:"incrementBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StatName == "" {
		writeError(w, http.StatusBadRequest, "stat name required")
		return
	}

	by := 1
	if req.IncrementBy != nil {
		by = *req.IncrementBy
	}

	analytics, err := h.Service.IncrementStat(r.Context(), userID, req.StatName, by)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// POST /analytics/{userId}/weekly
func (h *AnalyticsHandler) AddWeeklyDataHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	var req struct {
		Date        string  `json:"date"`
		HoursLogged float64 `json:"hoursLogged"`
		LogsCount   int     `json:"logsCount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	analytics, err := h.Service.AppendWeekly(r.Context(), userID, date, req.HoursLogged, req.LogsCount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// GET /analytics/leaderboard/all
func (h *AnalyticsHandler) GetLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit, skip := parsePagination(r, 100)

	leaderboard, err := h.Service.GetLeaderboard(r.Context(), limit, skip)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboard)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
