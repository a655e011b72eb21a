package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/services"
)

const refreshCookieName = "jwt"

type AuthController struct {
	Auth       services.AuthService
	Logger     *zap.Logger
	Production bool
}

func NewAuthController(auth services.AuthService, logger *zap.Logger, production bool) *AuthController {
	return &AuthController{Auth: auth, Logger: logger, Production: production}
}

func (ac *AuthController) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, token, maxAge, "/", "", ac.Production, true)
}

// POST /api/auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, svcErr := ac.Auth.Signup(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, svcErr := ac.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ac.setRefreshCookie(c, result.Tokens.RefreshToken, int(services.RefreshTokenTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"accessToken": result.Tokens.AccessToken,
		"user":        result.User,
	})
}

// GET /api/auth/refresh
func (ac *AuthController) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No refresh token"})
		return
	}

	result, svcErr := ac.Auth.Refresh(c.Request.Context(), refreshToken)
	if svcErr != nil {
		// A token we cannot honor is also cleared from the client.
		ac.setRefreshCookie(c, "", -1)
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ac.setRefreshCookie(c, result.Tokens.RefreshToken, int(services.RefreshTokenTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"accessToken": result.Tokens.AccessToken})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)

	if svcErr := ac.Auth.Logout(c.Request.Context(), refreshToken); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ac.setRefreshCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}
