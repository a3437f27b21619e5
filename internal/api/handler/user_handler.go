package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/onboarding-api/internal/api/metrics"
	"github.com/99minutos/onboarding-api/internal/core/domain"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

const sniffLen = 512

type UserHandler struct {
	userService ports.UserService
	cookies     CookieConfig
}

func NewUserHandler(userService ports.UserService, cookies CookieConfig) *UserHandler {
	return &UserHandler{userService: userService, cookies: cookies}
}

// GetMe returns the signed-in user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return sendUser(c, http.StatusOK, Response{}, toUserResponse(user))
}

// UpdateMe updates the profile fields of the signed-in user.
//
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateMeRequest  true  "Profile fields"
// @Success      200   {object}  Response
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users/update-me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateMeRequest
	if err := bindProfile(c, &req); err != nil {
		return err
	}

	updated, err := h.userService.UpdateProfile(c.Request().Context(), user.ID, req.toProfileUpdate())
	if err != nil {
		return err
	}
	return sendUser(c, http.StatusOK, Response{}, toUserResponse(updated))
}

// DeleteMe deactivates the signed-in account.
//
// @Summary      Deactivate account
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Router       /users/delete-me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.userService.Deactivate(c.Request().Context(), user.ID); err != nil {
		return err
	}
	h.cookies.clear(c)
	return c.NoContent(http.StatusNoContent)
}

// CompleteOnboarding stores the company profile and dashboard preferences.
//
// @Summary      Complete onboarding
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      completeOnboardingRequest  true  "Company and preferences"
// @Success      200   {object}  Response
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users/complete-onboarding [patch]
func (h *UserHandler) CompleteOnboarding(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req completeOnboardingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.userService.CompleteOnboarding(c.Request().Context(), user.ID, ports.OnboardingInput{
		Company: domain.Company{
			Name:     req.Company.Name,
			Industry: req.Company.Industry,
			Size:     req.Company.Size,
		},
		Theme:  req.Preferences.Theme,
		Layout: req.Preferences.Layout,
	})
	if err != nil {
		return err
	}

	metrics.OnboardingsCompletedTotal.WithLabelValues(req.Company.Size).Inc()
	return sendUser(c, http.StatusOK, Response{}, toUserResponse(updated))
}

// UpdatePreferences merges dashboard preferences.
//
// @Summary      Update preferences
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      preferencesPayload  true  "Theme and/or layout"
// @Success      200   {object}  Response
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /users/preferences [patch]
func (h *UserHandler) UpdatePreferences(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req preferencesPayload
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.userService.UpdatePreferences(c.Request().Context(), user.ID, req.Theme, req.Layout)
	if err != nil {
		return err
	}
	return sendUser(c, http.StatusOK, Response{}, toUserResponse(updated))
}

// UploadPhoto replaces the profile photo of the signed-in user.
//
// @Summary      Upload profile photo
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        photo  formData  file  true  "JPEG, PNG or WebP image up to 5MB"
// @Success      200    {object}  Response
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Router       /users/me/photo [put]
func (h *UserHandler) UploadPhoto(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "photo is required")
	}
	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return err
	}
	head = head[:n]

	updated, err := h.userService.UploadPhoto(c.Request().Context(), user.ID, ports.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: http.DetectContentType(head),
		Size:        fh.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	})
	metrics.PhotoUploadsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return sendUser(c, http.StatusOK, Response{}, toUserResponse(updated))
}

// ListUsers returns every user.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Response
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users/ [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	results := len(users)
	return success(c, http.StatusOK, Response{
		Results: &results,
		Data:    usersData{Users: toUserResponses(users)},
	})
}

// GetUser returns a user by id.
//
// @Summary      Get user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return sendUser(c, http.StatusOK, Response{}, toUserResponse(user))
}

// UpdateUser edits a user as an administrator.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "User id"
// @Param        body  body      adminUpdateUserRequest  true  "Fields to change"
// @Success      200   {object}  Response
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/{id} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req adminUpdateUserRequest
	if err := bindProfile(c, &req); err != nil {
		return err
	}

	in := ports.AdminUserUpdate{
		ProfileUpdate: req.toProfileUpdate(),
		IsOnboarded:   req.IsOnboarded,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		in.Role = &role
	}
	if req.AccountStatus != nil {
		status := domain.AccountStatus(*req.AccountStatus)
		in.Status = &status
	}

	updated, err := h.userService.AdminUpdate(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return sendUser(c, http.StatusOK, Response{}, toUserResponse(updated))
}

// DeleteUser permanently removes a user.
//
// @Summary      Delete user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.userService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (r updateMeRequest) toProfileUpdate() ports.ProfileUpdate {
	return ports.ProfileUpdate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Photo:     r.Photo,
	}
}

// bindProfile decodes a profile update. Password fields are refused before
// anything else is looked at; unknown fields are ignored.
func bindProfile(c echo.Context, req any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	// An empty body is an update with no fields.
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	for _, field := range passwordFields {
		if _, ok := raw[field]; ok {
			return domain.ErrPasswordUpdateNotAllowed
		}
	}

	if err := json.Unmarshal(body, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
