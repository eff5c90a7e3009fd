package handler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/linqiu/bookmarket/internal/config"
	"github.com/linqiu/bookmarket/internal/repository"
	"github.com/linqiu/bookmarket/internal/utils"
)

// AuthHandler bundles dependencies for the user endpoints: registration,
// login, username lookup, verification mail and password reset.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
	Codes CodeStore
	Mail  Mailer
}

func NewAuthHandler(cfg config.Config, users UserStore, codes CodeStore, mail Mailer) *AuthHandler {
	if users == nil {
		panic("nil user store passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Users: users, Codes: codes, Mail: mail}
}

// ----- DTOs -----

type registerReq struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Email    string `form:"email"`
}

type loginReq struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Register handles POST /api/user/register.  Username and password are
// required; the email is optional but needed later for password reset.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "username and password must not be empty")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, req.Password, req.Email, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return fail(c, "registration failed: username already exists")
		}
		return fail(c, "registration failed")
	}
	return ok(c, "success", nil)
}

// Login handles POST /api/user/login.  A successful login answers with a
// bearer token in the data object.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "username and password must not be empty")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, "username or password incorrect")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, "login failed")
	}
	return ok(c, "login success", echo.Map{"token": access.Token})
}

// GetUserName handles GET /api/user/name/:id, a public username lookup.
func (h *AuthHandler) GetUserName(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return fail(c, "invalid user id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, "user does not exist")
	}
	return ok(c, "success", echo.Map{"username": u.Username})
}

// SendCode handles POST /api/user/code.  It checks that the username and
// email belong to the same user, caches a fresh 6-digit code for 120
// seconds and mails it.  Mail delivery is a single attempt.
func (h *AuthHandler) SendCode(c echo.Context) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	if username == "" {
		return fail(c, "username must not be empty")
	}
	if email == "" {
		return fail(c, "email must not be empty")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		return fail(c, "username does not exist")
	}
	if u.Email != email {
		return fail(c, "email does not match username")
	}

	code, err := utils.RandomDigits(6)
	if err != nil {
		return fail(c, "failed to generate verification code")
	}
	if err := h.Codes.Put(ctx, email, code); err != nil {
		return fail(c, "failed to store verification code")
	}
	if err := h.Mail.SendCode(email, code); err != nil {
		log.Printf("mail: send verification code failed: %v", err)
		return fail(c, "failed to send email, try again later")
	}
	return ok(c, "verification code sent, check your email", nil)
}

// ResetPassword handles POST /api/user/reset.  The cached code must match;
// it stays valid until its TTL runs out.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	email := c.FormValue("email")
	code := c.FormValue("code")
	newPassword := c.FormValue("new_password")
	if email == "" || code == "" || newPassword == "" {
		return fail(c, "missing parameters")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Codes.Verify(ctx, email, code); err != nil {
		return fail(c, "verification code invalid or expired")
	}
	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return fail(c, "user does not exist")
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, newPassword, h.Cfg.BcryptCost); err != nil {
		return fail(c, "password reset failed")
	}
	return ok(c, "password reset successful", nil)
}
