package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const statusSuccess = "success"

// Response is the success envelope shared by every endpoint.
type Response struct {
	Status  string `json:"status" example:"success"`
	Token   string `json:"token,omitempty"`
	Results *int   `json:"results,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the error envelope rendered by the HTTP error handler.
// Detail is only populated in development.
type ErrorResponse struct {
	Status string `json:"status" example:"error"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type userData struct {
	User userResponse `json:"user"`
}

type usersData struct {
	Users []userResponse `json:"users"`
}

func success(c echo.Context, code int, resp Response) error {
	resp.Status = statusSuccess
	return c.JSON(code, resp)
}

func sendUser(c echo.Context, code int, resp Response, user userResponse) error {
	resp.Data = userData{User: user}
	return success(c, code, resp)
}

func message(c echo.Context, msg string) error {
	return success(c, http.StatusOK, Response{Message: msg})
}
