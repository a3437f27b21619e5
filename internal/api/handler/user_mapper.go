package handler

import (
	"time"

	"github.com/99minutos/onboarding-api/internal/core/domain"
)

// userResponse is the outward representation of a user. Credential and token
// fields have no place here.
type userResponse struct {
	ID            string             `json:"id"`
	FirstName     string             `json:"firstName"`
	LastName      string             `json:"lastName"`
	Email         string             `json:"email"`
	Phone         string             `json:"phone,omitempty"`
	Photo         string             `json:"photo,omitempty"`
	Role          string             `json:"role"`
	AccountStatus string             `json:"accountStatus"`
	EmailVerified bool               `json:"emailVerified"`
	IsOnboarded   bool               `json:"isOnboarded"`
	Company       *companyPayload    `json:"company,omitempty"`
	Preferences   preferencesPayload `json:"preferences"`
	LastLogin     *time.Time         `json:"lastLogin,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type companyPayload struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Industry string `json:"industry" validate:"required,max=100"`
	Size     string `json:"size"     validate:"required,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
}

type preferencesPayload struct {
	Theme  string `json:"theme"  validate:"omitempty,oneof=light dark system"`
	Layout string `json:"layout" validate:"omitempty,oneof=default analytics minimal"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Phone:         u.Phone,
		Photo:         u.Photo,
		Role:          string(u.Role),
		AccountStatus: string(u.Status),
		EmailVerified: u.EmailVerified,
		IsOnboarded:   u.IsOnboarded,
		Preferences:   preferencesPayload{Theme: u.Preferences.Theme, Layout: u.Preferences.Layout},
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.Company != nil {
		resp.Company = &companyPayload{Name: u.Company.Name, Industry: u.Company.Industry, Size: u.Company.Size}
	}
	return resp
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
