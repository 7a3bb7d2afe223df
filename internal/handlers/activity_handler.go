package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Temirlan472/Learning_Tracker/internal/services"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityHandler struct {
	Service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{Service: service}
}

// GET /activities/{userId}
func (h *ActivityHandler) GetUserActivitiesHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	limit, skip := parsePagination(r, 20)

	feed, err := h.Service.GetUserActivities(r.Context(), userID, limit, skip)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// GET /activities/{userId}/unread/count
func (h *ActivityHandler) GetUnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	count, err := h.Service.CountUnread(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unreadCount": count})
}

// POST /activities
func (h *ActivityHandler) CreateActivityHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		Type        string `json:"type"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Data        bson.M `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	activity, err := h.Service.CreateActivity(r.Context(), req.UserID, req.Type, req.Title, req.Description, req.Data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, activity)
}

// PATCH /activities/{id}/read
func (h *ActivityHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity ID")
		return
	}

	activity, err := h.Service.MarkAsRead(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// PATCH /activities/{userId}/read-all
func (h *ActivityHandler) MarkAllAsReadHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	modified, err := h.Service.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"modifiedCount": modified})
}

// DELETE /activities/{id}
func (h *ActivityHandler) DeleteActivityHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity ID")
		return
	}

	if _, err := h.Service.DeleteActivity(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Activity deleted"})
}
