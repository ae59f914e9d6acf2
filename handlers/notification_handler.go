package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"studyLogAPI/internal/sse"
	"studyLogAPI/internal/types/notification"
	"studyLogAPI/middleware"
	"studyLogAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	registry            *sse.Registry
}

func NewNotificationHandler(notificationService *services.NotificationService, registry *sse.Registry) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		registry:            registry,
	}
}

// GET /api/v1/notifications - most recent 30
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	list, err := h.notificationService.GetNotificationList(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/notifications/subscribe - long-lived SSE stream.
// One connection per user id is tracked; subscribing again replaces the
// registry entry. The stream ends on client disconnect, delivery error,
// or the fixed idle timeout, and every path deregisters the user.
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if _, ok := w.(http.Flusher); !ok {
		// Handshake failure is the one delivery error the client sees.
		respondWithError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emitter := sse.NewEmitter(clerkID, w)
	h.registry.Save(clerkID, emitter)

	// Sentinel payload so upstream infrastructure does not treat a
	// silent new stream as a failed request.
	if err := emitter.Send(sse.EventName, "Connection completed"); err != nil {
		log.Printf("Subscribe: initial send failed for user %s: %v", clerkID, err)
		h.registry.Delete(clerkID)
		return
	}

	select {
	case <-r.Context().Done():
	case <-emitter.Done():
	case <-time.After(sse.DefaultTimeout):
	}

	emitter.Close()
	h.registry.Delete(clerkID)
	log.Printf("Subscribe: connection closed for user %s", clerkID)
}

// POST /api/v1/notifications/register-device
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req notification.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, clerkID, &req); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered successfully"})
}
