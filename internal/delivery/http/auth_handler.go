package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/shopclip/backend/internal/domain"
)

// Signup creates an account
func (h *Handler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	resp, err := h.auth.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Compte créé avec succès",
		"token":   resp.Token,
		"user":    resp.User,
	})
}

// Login exchanges credentials for a session token
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info("login", "email", resp.User.Email, "account", resp.User.AccountNumber)
	c.JSON(http.StatusOK, gin.H{
		"message": "Connexion réussie",
		"token":   resp.Token,
		"user":    resp.User,
	})
}

// Verify confirms the bearer token still maps to an active account
func (h *Handler) Verify(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  user.Public(),
	})
}

// Logout is stateless; clients drop the token
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// ChangePassword replaces the caller's password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req domain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidRequest)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), currentUser(c).ID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe changé avec succès"})
}
