package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/uditb/resumesculpt/internal/db"
	"github.com/uditb/resumesculpt/internal/quota"
	"github.com/uditb/resumesculpt/internal/server/middleware"
	"github.com/uditb/resumesculpt/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	dbClient    DBClient
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, dbClient DBClient) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		dbClient:    dbClient,
		validator:   validator.New(),
	}
}

// Signup handles account creation requests.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	h.writeAuthResponse(w, r, user, http.StatusCreated)
}

// Login handles login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	h.writeAuthResponse(w, r, user, http.StatusOK)
}

// Me returns the authenticated user's profile and paywall status.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	usage, err := h.dbClient.WeeklyUsage(r.Context(), user.ID, quota.WeekStart(time.Now()))
	if err != nil {
		http.Error(w, "Failed to read usage", http.StatusInternalServerError)
		return
	}

	response := map[string]any{
		"user_id":            user.ID.String(),
		"email":              user.Email,
		"full_name":          user.FullName,
		"plan":               user.Plan,
		"has_resume":         user.HasResume(),
		"resume_filename":    user.ResumeFilename,
		"resume_uploaded_at": user.ResumeUploadedAt,
		"weekly_usage":       usage,
		"weekly_limit":       quota.LimitFor(user.Plan),
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *AuthHandler) writeAuthResponse(w http.ResponseWriter, r *http.Request, user *db.User, status int) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	usage, err := h.dbClient.WeeklyUsage(r.Context(), user.ID, quota.WeekStart(time.Now()))
	if err != nil {
		http.Error(w, "Failed to read usage", http.StatusInternalServerError)
		return
	}

	response := types.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID.String(),
		Email:       user.Email,
		FullName:    user.FullName,
		Plan:        user.Plan,
		HasResume:   user.HasResume(),
		WeeklyUsage: usage,
		WeeklyLimit: quota.LimitFor(user.Plan),
	}
	writeJSON(w, status, response)
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
