package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"linkpulse/auth"
	"linkpulse/mailer"
	"linkpulse/models"
	"linkpulse/services"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// AuthHandler serves signup, OTP verification, login and password reset.
type AuthHandler struct {
	users  *services.UserService
	otp    *services.OTPService
	tokens *auth.Manager
	mail   mailer.EmailSender
	log    zerolog.Logger
}

func NewAuthHandler(users *services.UserService, otp *services.OTPService, tokens *auth.Manager, mail mailer.EmailSender, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, otp: otp, tokens: tokens, mail: mail, log: log}
}

// Register handles POST /api/auth/register. No user row is created yet; the
// registration is parked in redis until the emailed code is verified.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := h.users.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	user := models.User{}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	code, err := services.GenerateCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate verification code"})
		return
	}

	pending := services.PendingSignup{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: user.PasswordHash,
		Code:         code,
	}
	if err := h.otp.SaveSignup(c.Request.Context(), pending); err != nil {
		h.log.Error().Err(err).Msg("failed to store pending signup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start registration"})
		return
	}

	msg := mailer.Message{
		To:       req.Email,
		Subject:  "Verify your email",
		BodyHTML: fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires shortly.</p>", code),
		Tag:      "signup-otp",
	}
	if err := h.mail.Send(c.Request.Context(), msg); err != nil {
		h.log.Error().Err(err).Str("email", req.Email).Msg("failed to send verification email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification email"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Verification code sent"})
}

// Verify handles POST /api/auth/verify, creating the user on a matching code.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pending, err := h.otp.VerifySignup(c.Request.Context(), req.Email, req.Code)
	if errors.Is(err, services.ErrOTPNotFound) {
		c.JSON(http.StatusGone, gin.H{"error": "Verification code expired or missing"})
		return
	}
	if errors.Is(err, services.ErrOTPMismatch) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid verification code"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		return
	}

	user, err := h.users.CreateVerified(c.Request.Context(), pending.Username, pending.Email, pending.PasswordHash)
	if errors.Is(err, services.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"token": token,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"token": token,
	})
}

// ForgotPassword handles POST /api/auth/forgot-password. The response does
// not reveal whether the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := h.users.EmailExists(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
		return
	}

	if exists {
		code, err := services.GenerateCode()
		if err == nil {
			err = h.otp.SaveReset(c.Request.Context(), req.Email, code)
		}
		if err == nil {
			msg := mailer.Message{
				To:       req.Email,
				Subject:  "Reset your password",
				BodyHTML: fmt.Sprintf("<p>Your password reset code is <strong>%s</strong>. It expires shortly.</p>", code),
				Tag:      "reset-otp",
			}
			err = h.mail.Send(c.Request.Context(), msg)
		}
		if err != nil {
			h.log.Error().Err(err).Str("email", req.Email).Msg("failed to issue reset code")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset code"})
			return
		}
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "If the email is registered, a reset code was sent"})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.otp.VerifyReset(c.Request.Context(), req.Email, req.Code)
	if errors.Is(err, services.ErrOTPNotFound) {
		c.JSON(http.StatusGone, gin.H{"error": "Reset code expired or missing"})
		return
	}
	if errors.Is(err, services.ErrOTPMismatch) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid reset code"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify reset code"})
		return
	}

	if err := h.users.SetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
