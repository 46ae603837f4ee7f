package handlers

import (
	"encoding/json"
	"net/http"

	"ticket-backend/internal/middleware"
	"ticket-backend/internal/models"
	"ticket-backend/internal/services"
)

type TOTPHandler struct {
	TOTP  *services.TOTPService
	Users *services.UserService
}

func NewTOTPHandler(totpService *services.TOTPService, userService *services.UserService) *TOTPHandler {
	return &TOTPHandler{TOTP: totpService, Users: userService}
}

// Setup generates a new enrolment secret and QR code for the caller
func (h *TOTPHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	resp, err := h.TOTP.GenerateSetup(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Enable confirms enrolment by verifying a code against the pending secret
func (h *TOTPHandler) Enable(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.TOTP.VerifyAndEnable(r.Context(), userID, req.Code); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "enabled"})
}

// Verify exchanges a pending login token plus a TOTP code for a full session
func (h *TOTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.TOTP.CompleteLogin(r.Context(), &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
