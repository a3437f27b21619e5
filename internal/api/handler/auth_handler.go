package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/onboarding-api/internal/api/metrics"
	"github.com/99minutos/onboarding-api/internal/api/middleware"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
	publicURL   string
}

// NewAuthHandler builds the auth endpoints. publicURL, when set, replaces the
// request origin in emailed links.
func NewAuthHandler(authService ports.AuthService, cookies CookieConfig, publicURL string) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, publicURL: publicURL}
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  Response
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Origin:          origin(c, h.publicURL),
	})
	metrics.AuthEventsTotal.WithLabelValues("register", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return h.sendSession(c, http.StatusCreated, session)
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Response
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	metrics.AuthEventsTotal.WithLabelValues("login", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return h.sendSession(c, http.StatusOK, session)
}

// Logout revokes the current session and clears the session cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	err := h.authService.Logout(c.Request().Context(), middleware.CurrentSession(c))
	metrics.AuthEventsTotal.WithLabelValues("logout", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	h.cookies.clear(c)
	return success(c, http.StatusOK, Response{})
}

// ForgotPassword emails a single-use password reset link.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  Response
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.authService.ForgotPassword(c.Request().Context(), req.Email, origin(c, h.publicURL))
	metrics.AuthEventsTotal.WithLabelValues("forgot_password", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return message(c, "token sent to email!")
}

// ResetPassword sets a new password using an emailed reset token.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  path      string                true  "Reset token"
// @Param        body   body      resetPasswordRequest  true  "New password"
// @Success      200    {object}  Response
// @Failure      400    {object}  ErrorResponse
// @Router       /auth/reset-password/{token} [patch]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.authService.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	metrics.AuthEventsTotal.WithLabelValues("reset_password", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return h.sendSession(c, http.StatusOK, session)
}

// UpdatePassword changes the password of the signed-in user.
//
// @Summary      Update password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Current and new password"
// @Success      200   {object}  Response
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /auth/update-password [patch]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.authService.UpdatePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.Password, req.PasswordConfirm)
	metrics.AuthEventsTotal.WithLabelValues("update_password", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return h.sendSession(c, http.StatusOK, session)
}

// VerifyEmail confirms the email address behind a verification token.
//
// @Summary      Verify email
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Verification token"
// @Success      200    {object}  Response
// @Failure      400    {object}  ErrorResponse
// @Router       /auth/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	user, err := h.authService.VerifyEmail(c.Request().Context(), c.Param("token"))
	metrics.AuthEventsTotal.WithLabelValues("verify_email", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	return sendUser(c, http.StatusOK, Response{Message: "email verified"}, toUserResponse(user))
}

func (h *AuthHandler) sendSession(c echo.Context, code int, session *ports.Session) error {
	h.cookies.set(c, session.Token)
	return sendUser(c, code, Response{Token: session.Token}, toUserResponse(session.User))
}
