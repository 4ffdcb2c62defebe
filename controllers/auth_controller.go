package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/schoolsite/config"
	"github.com/cppla/schoolsite/middleware"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/utils"
)

// AuthController handles admin login, logout and captchas.
type AuthController struct {
	users *services.UserService
}

// NewAuthController creates an AuthController.
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// LoginPage renders the admin login form.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	utils.Page(ctx, "auth/Login", LoginProps{CanRegister: config.Get().RegistrationEnabled})
}

// Login verifies credentials, sets the session cookie and returns the token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `form:"email" json:"email" validate:"required,email"`
		Password string `form:"password" json:"password" validate:"required"`
	}
	if !bindForm(ctx, &req) {
		return
	}
	if fields := utils.ValidateStruct(req, nil); fields != nil {
		utils.ValidationFailed(ctx, fields)
		return
	}

	user, err := a.users.Authenticate(ctx.Request.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.ValidationFailed(ctx, map[string]string{"email": "These credentials do not match our records."})
		return
	}
	if err != nil {
		respondError(ctx, "login", err)
		return
	}

	ttl := utils.SessionTTL()
	token, expiresAt, err := utils.GenerateToken(user.ID, user.Email, ttl)
	if err != nil {
		respondError(ctx, "issue token", err)
		return
	}
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, token, int(ttl.Seconds()), "/", "", secureCookie(), true)
	utils.Sugar.Infow("admin login", "user_id", user.ID)
	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// Logout revokes the current token and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if token := ctx.GetString(middleware.ContextTokenKey); token != "" {
		if claims, err := utils.ParseToken(token); err == nil {
			utils.BlacklistToken(ctx.Request.Context(), token, utils.TokenExpiry(claims))
		}
	}
	ctx.SetCookie(middleware.SessionCookie, "", -1, "/", "", secureCookie(), true)
	utils.Success(ctx, gin.H{"logged_out": true})
}

// Captcha issues a digit captcha for the comment form.
func (a *AuthController) Captcha(ctx *gin.Context) {
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		respondError(ctx, "generate captcha", err)
		return
	}
	utils.Success(ctx, gin.H{"captcha_id": id, "image": b64})
}

func secureCookie() bool {
	return strings.HasPrefix(config.Get().AppURL, "https://")
}
