package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"studyLogAPI/internal/types/streak"
	"studyLogAPI/internal/types/user"
	"studyLogAPI/middleware"
	"studyLogAPI/services"
)

type UserHandler struct {
	userService   *services.UserService
	streakService *services.StreakService
}

func NewUserHandler(userService *services.UserService, streakService *services.StreakService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		streakService: streakService,
	}
}

// GET /api/v1/user - provisions the row on first sight of the identity
func (h *UserHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if _, err := h.userService.EnsureUser(ctx, clerkID, "New User"); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	info, err := h.userService.GetUserInfo(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, info)
}

// PUT /api/v1/user/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.userService.UpdateProfile(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// GET /api/v1/user/streak
func (h *UserHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	st, err := h.streakService.GetStreak(ctx, u.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, streak.StreakInfo{
		CurrentStreak: st.CurrentStreak,
		MaxStreak:     st.MaxStreak,
	})
}

// GET /api/v1/user/streak/calendar?year=&month= - current month default
func (h *UserHandler) GetStreakCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = m
	}

	u, err := h.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	data, err := h.streakService.GetMonthlyStreakData(ctx, u.ID, year, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, data)
}
