package domain

import "errors"

// Validation errors (400).
var (
	ErrPasswordMismatch         = errors.New("passwords do not match")
	ErrEmailTaken               = errors.New("email already in use")
	ErrMissingCredentials       = errors.New("please provide email and password")
	ErrPasswordUpdateNotAllowed = errors.New("this route is not for password updates. please use /update-password.")
	ErrResetTokenInvalid        = errors.New("token is invalid or has expired")
	ErrVerificationTokenInvalid = errors.New("verification token is invalid or has expired")
	ErrInvalidStatusTransition  = errors.New("invalid account status transition")
	ErrInvalidRole              = errors.New("invalid role")
	ErrInvalidPhoto             = errors.New("photo must be a jpeg, png or webp image up to 5MB")
)

// Authentication errors (401).
var (
	ErrInvalidCredentials   = errors.New("incorrect email or password")
	ErrNotLoggedIn          = errors.New("you are not logged in! please log in to get access")
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrSessionUserGone      = errors.New("the user belonging to this token no longer exists")
	ErrPasswordChanged      = errors.New("user recently changed password! please log in again")
	ErrWrongCurrentPassword = errors.New("your current password is wrong")
)

// Authorization errors (403).
var (
	ErrAccountInactive = errors.New("this account has been deactivated")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// Not-found errors (404).
var (
	ErrUserNotFound    = errors.New("no user found with that id")
	ErrNoUserWithEmail = errors.New("there is no user with that email address")
	ErrInvalidID       = errors.New("resource not found with id of")
)

// Server errors (500).
var (
	ErrMailDispatch = errors.New("there was an error sending the email. try again later!")
)
