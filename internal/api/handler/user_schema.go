package handler

type updateMeRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName"  validate:"omitempty,min=1,max=50"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Phone     *string `json:"phone"     validate:"omitempty,max=30"`
	Photo     *string `json:"photo"     validate:"omitempty,url"`
}

type adminUpdateUserRequest struct {
	updateMeRequest
	Role          *string `json:"role"          validate:"omitempty,oneof=user admin"`
	AccountStatus *string `json:"accountStatus" validate:"omitempty,oneof=active deactivated"`
	IsOnboarded   *bool   `json:"isOnboarded"`
}

type completeOnboardingRequest struct {
	Company     companyPayload     `json:"company"`
	Preferences preferencesPayload `json:"preferences"`
}

// passwordFields may not be sent to the profile endpoints.
var passwordFields = []string{"password", "passwordConfirm"}
