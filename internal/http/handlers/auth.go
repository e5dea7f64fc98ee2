package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rsharma-dev/attendhub/internal/auth"
	"github.com/rsharma-dev/attendhub/internal/cache"
	"github.com/rsharma-dev/attendhub/internal/config"
	"github.com/rsharma-dev/attendhub/internal/domain/user"
	"github.com/rsharma-dev/attendhub/internal/http/middlewares"
	"github.com/rsharma-dev/attendhub/internal/security"
)

// UserStore is the slice of the users repo the auth flows need.
type UserStore interface {
	Create(ctx context.Context, u user.User) error
	GetByUserName(ctx context.Context, userName string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	ExistsByNameOrUserName(ctx context.Context, fullName, userName string) (bool, error)
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	SwapRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error)
	ClearRefreshTokenHash(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAccount(ctx context.Context, id, fullName, userName string) (user.User, error)
}

type AuthHandler struct {
	users  UserStore
	jwt    *auth.Manager
	roster *cache.Cache
	cfg    config.Config
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager, roster *cache.Cache, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:  users,
		jwt:    jwtManager,
		roster: roster,
		cfg:    cfg,
	}
}

type RegisterRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	UserName   string `json:"userName" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"required,oneof=Student Faculty"`
	Semester   int    `json:"semester" binding:"omitempty"`
	Department string `json:"department" binding:"omitempty"`
}

type LoginRequest struct {
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName" binding:"required"`
	UserName string `json:"userName" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Role == string(user.RoleStudent) {
		if req.Semester == 0 {
			RespondBadRequest(ctx, "Semester is required for students", nil)
			return
		}
		if req.Department == "" {
			RespondBadRequest(ctx, "Department is required for students", nil)
			return
		}
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		slog.Default().Error("password hash failed", "err", err)
		RespondInternal(ctx, "Could not register user")
		return
	}

	var newUser user.User

	if req.Role == string(user.RoleStudent) {
		newUser, err = user.NewStudent(uuid.NewString(), req.FullName, req.UserName, hash, req.Semester, user.Department(req.Department))

		if err != nil {
			RespondBadRequest(ctx, err.Error(), nil)
			return
		}
	} else {
		newUser = user.NewFaculty(uuid.NewString(), req.FullName, req.UserName, hash)
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	exists, err := h.users.ExistsByNameOrUserName(cctx, req.FullName, req.UserName)

	if err != nil {
		slog.Default().Error("register conflict lookup failed", "err", err)
		RespondInternal(ctx, "Could not register user")
		return
	}

	if exists {
		RespondConflict(ctx, "user_exists", "User with same name and userName already exists")
		return
	}

	err = h.users.Create(cctx, newUser)

	if err != nil {
		slog.Default().Error("user insert failed", "err", err)
		RespondInternal(ctx, "Could not register user")
		return
	}

	// a new student changes the roster for their class
	if newUser.Student != nil && h.roster != nil {
		h.roster.Delete(RosterKey(string(newUser.Student.Department), newUser.Student.Semester))
	}

	// PasswordHash and RefreshTokenHash are json:"-", so the projection the
	// caller sees never carries either field.
	ctx.JSON(http.StatusCreated, gin.H{
		"user":    newUser,
		"message": "User registered successfully",
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.UserName == "" && req.FullName == "" {
		RespondBadRequest(ctx, "userName or fullName is required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// fullName is accepted in the body but lookup has always been by
	// userName only; kept that way so existing clients see no change.
	foundUser, err := h.users.GetByUserName(cctx, req.UserName)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User does not exist")
			return
		}

		slog.Default().Error("login lookup failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid user credentials")
		return
	}

	accessToken, refreshToken, err := h.issueTokenPair(cctx, foundUser)

	if err != nil {
		slog.Default().Error("token issue failed", "err", err)
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setAuthCookies(ctx, accessToken, refreshToken)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User logged in successfully",
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.users.ClearRefreshTokenHash(cctx, userID)

	if err != nil {
		slog.Default().Error("refresh token clear failed", "err", err)
		RespondInternal(ctx, "Could not log out")
		return
	}

	h.clearAuthCookies(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User logged out",
	})
}

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err != nil || raw == "" {
		var req RefreshRequest

		// body is a fallback transport for the refresh token
		_ = ctx.ShouldBindJSON(&req)
		raw = req.RefreshToken
	}

	if raw == "" {
		RespondUnAuthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByID(cctx, claims.UserID)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(identityOf(foundUser))

	if err != nil {
		slog.Default().Error("access token generation failed", "err", err)
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	newRefreshToken, _, err := h.jwt.GenerateRefreshToken(identityOf(foundUser))

	if err != nil {
		slog.Default().Error("refresh token generation failed", "err", err)
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	// one atomic compare-and-swap guards rotation: the stored hash must still
	// equal the presented token's hash, otherwise this token was already used
	swapped, err := h.users.SwapRefreshTokenHash(
		cctx,
		foundUser.ID,
		h.jwt.HashRefreshToken(raw),
		h.jwt.HashRefreshToken(newRefreshToken),
	)

	if err != nil {
		slog.Default().Error("refresh token swap failed", "err", err)
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	if !swapped {
		RespondUnAuthorized(ctx, "stale_refresh", "Refresh token is expired or used")
		return
	}

	h.setAuthCookies(ctx, accessToken, newRefreshToken)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": newRefreshToken,
		"message":      "Access token refreshed",
	})
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondUnAuthorized(ctx, "unauthorized", "Unknown user")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.OldPassword)

	if err != nil {
		RespondBadRequest(ctx, "Invalid old password", nil)
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		slog.Default().Error("password hash failed", "err", err)
		RespondInternal(ctx, "Could not change password")
		return
	}

	err = h.users.UpdatePassword(cctx, userID, hash)

	if err != nil {
		slog.Default().Error("password update failed", "err", err)
		RespondInternal(ctx, "Could not change password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

func (h *AuthHandler) UpdateAccount(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req UpdateAccountRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	_, err := h.users.UpdateAccount(cctx, userID, req.FullName, req.UserName)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User does not exist")
			return
		}

		slog.Default().Error("account update failed", "err", err)
		RespondInternal(ctx, "Could not update account")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Account details updated successfully",
	})
}

// Helper functions

func identityOf(u user.User) auth.Identity {
	return auth.Identity{
		ID:       u.ID,
		UserName: u.UserName,
		FullName: u.FullName,
		Role:     string(u.Role),
	}
}

// issueTokenPair signs both tokens and persists the refresh hash on the user
// row, overwriting any prior session (single session per user).
func (h *AuthHandler) issueTokenPair(ctx context.Context, u user.User) (accessToken, refreshToken string, err error) {
	accessToken, err = h.jwt.GenerateAccessToken(identityOf(u))

	if err != nil {
		return "", "", err
	}

	refreshToken, _, err = h.jwt.GenerateRefreshToken(identityOf(u))

	if err != nil {
		return "", "", err
	}

	err = h.users.SetRefreshTokenHash(ctx, u.ID, h.jwt.HashRefreshToken(refreshToken))

	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

func (h *AuthHandler) setAuthCookies(ctx *gin.Context, accessToken, refreshToken string) {
	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		accessCookieName,
		accessToken,
		int(h.jwt.AccessTTL().Seconds()),
		"/",
		"",
		true, // Secure
		true, // HttpOnly
	)

	ctx.SetCookie(
		refreshCookieName,
		refreshToken,
		int(h.jwt.RefreshTTL().Seconds()),
		"/",
		"",
		true,
		true,
	)
}

func (h *AuthHandler) clearAuthCookies(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(accessCookieName, "", -1, "/", "", true, true)
	ctx.SetCookie(refreshCookieName, "", -1, "/", "", true, true)
}
