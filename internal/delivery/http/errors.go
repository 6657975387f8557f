package http

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/shopclip/backend/internal/domain"
)

// Error codes returned in the "code" field of error bodies
const (
	CodeNoToken           = "NO_TOKEN"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeAccountDisabled   = "ACCOUNT_DISABLED"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidURL        = "INVALID_URL"
	CodeEmailExists       = "EMAIL_EXISTS"
	CodeUserLimit         = "USER_LIMIT_REACHED"
	CodeBadCredentials    = "INVALID_CREDENTIALS"
	CodeProjectNotFound   = "PROJECT_NOT_FOUND"
	CodeProjectNameExists = "PROJECT_NAME_EXISTS"
	CodeQuotaExceeded     = "QUOTA_EXCEEDED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeRefreshFailed     = "REFRESH_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details []string        `json:"details,omitempty"`
	Quota   *quotaExhausted `json:"quota,omitempty"`
}

type quotaExhausted struct {
	Type      string `json:"type"`
	Current   int    `json:"current"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}

// respondError maps a usecase error onto a status code and error body
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Données invalides",
			Code:    CodeValidation,
			Details: verr.Details,
		})
		return
	}

	var qerr *domain.QuotaError
	if errors.As(err, &qerr) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "Limite de projets atteinte",
			Code:  CodeQuotaExceeded,
			Quota: &quotaExhausted{
				Type:      "projects",
				Current:   qerr.Quota.Used,
				Limit:     qerr.Quota.Limit,
				Remaining: qerr.Quota.Remaining,
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		abortWithError(c, http.StatusBadRequest, CodeInvalidURL, err.Error())
	case errors.Is(err, domain.ErrInvalidRequest):
		abortWithError(c, http.StatusBadRequest, CodeValidation, "Données invalides")
	case errors.Is(err, domain.ErrEmailTaken):
		abortWithError(c, http.StatusBadRequest, CodeEmailExists, "Un compte avec cet email existe déjà")
	case errors.Is(err, domain.ErrUserLimitReached):
		abortWithError(c, http.StatusBadRequest, CodeUserLimit, "Limite d'utilisateurs gratuits atteinte! Le service devient payant.")
	case errors.Is(err, domain.ErrInvalidCredentials):
		abortWithError(c, http.StatusUnauthorized, CodeBadCredentials, "Email ou mot de passe incorrect")
	case errors.Is(err, domain.ErrAccountDisabled):
		abortWithError(c, http.StatusForbidden, CodeAccountDisabled, "Compte désactivé")
	case errors.Is(err, domain.ErrTokenExpired):
		abortWithError(c, http.StatusForbidden, CodeTokenExpired, "Token expiré")
	case errors.Is(err, domain.ErrTokenInvalid):
		abortWithError(c, http.StatusForbidden, CodeInvalidToken, "Token invalide")
	case errors.Is(err, domain.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, CodeUserNotFound, "Utilisateur non trouvé")
	case errors.Is(err, domain.ErrProjectNotFound):
		abortWithError(c, http.StatusNotFound, CodeProjectNotFound, "Projet non trouvé")
	case errors.Is(err, domain.ErrProjectNameExists):
		abortWithError(c, http.StatusConflict, CodeProjectNameExists, "Un projet avec ce nom existe déjà")
	default:
		log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		abortWithError(c, http.StatusInternalServerError, CodeInternal, "Erreur serveur")
	}
}
