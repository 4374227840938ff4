package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 12 * time.Hour

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
	now         func() time.Time
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
		now:         time.Now,
	}
}

// IssueToken godoc
// @Summary Issue a match executor token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.TokenInput true "Executor credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401 {object} map[string]interface{}
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var input services.TokenInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ExecutorID == "" || input.Secret == "" {
		badRequestResponse(w, r, errors.New("executor_id and secret are required"))
		return
	}

	if err := h.authService.Authenticate(r.Context(), input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	now := h.now()
	expiresAt := now.Add(tokenTTL)
	claims := jwt.MapClaims{
		middleware.ClaimSubject: input.ExecutorID,
		middleware.ClaimRole:    middleware.RoleExecutor,
		"exp":                   expiresAt.Unix(),
		"iat":                   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := jsonResponse{
		"token":      tokenString,
		"expires_at": expiresAt.UTC(),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
