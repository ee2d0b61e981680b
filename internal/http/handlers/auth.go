package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/volunteerhub/internal/account"
	"github.com/geocoder89/volunteerhub/internal/auth"
	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const authTimeout = 3 * time.Second

type AccountService interface {
	Signup(ctx context.Context, in account.SignupInput) (user.Profile, error)
	Login(ctx context.Context, email, password string) (account.LoginResult, error)
	RequestReset(ctx context.Context, email string) error
	ConsumeReset(ctx context.Context, token, newPassword string) error
	DeleteAccount(ctx context.Context, p auth.Principal) error
	Profile(ctx context.Context, p auth.Principal) (user.User, error)
}

// CookieSettings controls the session cookie written on login.
type CookieSettings struct {
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	accounts AccountService
	cookie   CookieSettings
}

func NewAuthHandler(accounts AccountService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{accounts: accounts, cookie: cookie}
}

// LoginForm follows the OAuth2 password grant field names.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

const resetRequestedMessage = "If that email is registered, a password reset link has been sent."

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	interests := make([]category.Category, 0, len(req.Interests))
	for _, c := range req.Interests {
		interests = append(interests, category.Category(c))
	}

	profile, err := h.accounts.Signup(cctx, account.SignupInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Skills:    req.Skills,
		Interests: interests,
		Password:  req.Password,
	})
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, profile)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var form LoginForm

	if !BindForm(ctx, &form) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	res, err := h.accounts.Login(cctx, form.Username, form.Password)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, res.AccessToken)

	ctx.JSON(http.StatusOK, TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
	})
}

// Logout only clears the cookie. Tokens are stateless, so a copied bearer
// token stays valid until it expires.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) RequestReset(ctx *gin.Context) {
	var req RequestResetRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	// unknown emails return the same reply
	if err := h.accounts.RequestReset(cctx, req.Email); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": resetRequestedMessage})
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	if err := h.accounts.ConsumeReset(cctx, req.Token, req.NewPassword); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.accounts.Profile(cctx, p)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) DeleteAccount(ctx *gin.Context) {
	p, ok := middlewares.PrincipalFrom(ctx)
	if !ok {
		RespondUnauthorized(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	if err := h.accounts.DeleteAccount(cctx, p); err != nil {
		RespondServiceError(ctx, err)
		return
	}

	h.clearSessionCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		auth.SessionCookieName,
		token,
		int(h.cookie.TTL.Seconds()),
		"/",
		"",
		h.cookie.Secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		auth.SessionCookieName,
		"",
		-1,
		"/",
		"",
		h.cookie.Secure,
		true,
	)
}
