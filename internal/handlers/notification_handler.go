package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Temirlan472/Learning_Tracker/internal/services"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GET /notifications/{userId}
func (h *NotificationHandler) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	limit, skip := parsePagination(r, 50)

	list, err := h.Service.GetUserNotifications(r.Context(), userID, limit, skip)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /notifications/{userId}/unread/count
func (h *NotificationHandler) GetUnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	count, err := h.Service.CountUnread(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unreadCount": count})
}

// POST /notifications
func (h *NotificationHandler) CreateNotificationHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"userId"`
		Type      string `json:"type"`
		Title     string `json:"title"`
		Message   string `json:"message"`
		ActionURL string `json:"actionUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	notif, err := h.Service.CreateNotification(r.Context(), req.UserID, req.Type, req.Title, req.Message, req.ActionURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, notif)
}

// PATCH /notifications/{id}/read
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	notif, err := h.Service.MarkAsRead(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notif)
}

// PATCH /notifications/{userId}/read-all
func (h *NotificationHandler) MarkAllAsReadHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	modified, err := h.Service.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"modifiedCount": modified})
}

// DELETE /notifications/{id}
func (h *NotificationHandler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	if _, err := h.Service.DeleteNotification(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}

// DELETE /notifications/{userId}/clear-all
func (h *NotificationHandler) ClearAllHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	deleted, err := h.Service.ClearAll(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deletedCount": deleted})
}
