package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"innoportal/internal/auth"
	"innoportal/internal/middleware"
	"innoportal/internal/services"
)

type AuthHandler struct {
	users  *services.UserService
	verify *services.VerificationService
	tokens *auth.TokenIssuer
	log    zerolog.Logger
}

func NewAuthHandler(users *services.UserService, verify *services.VerificationService, tokens *auth.TokenIssuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, verify: verify, tokens: tokens, log: log}
}

// Register creates an account and sends the verification mail.
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if _, err := h.verify.Issue(c.Request.Context(), user); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue verification token")
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials, starts a cookie session and returns a bearer token for
// non-browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		badRequest(c, "email and password are required")
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, h.log, err)
		return
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := h.verify.Verify(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	if _, err := h.verify.Issue(c.Request.Context(), currentUser(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
