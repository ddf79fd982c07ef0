package authapi

import "globchat/cmd/identity"

// Request/response shapes for the credential endpoints. Status values are
// tagged the way the public API has always spelled them: bare strings for
// plain outcomes, single-key objects for outcomes carrying data.

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ---- /auth/register ----

type registerResponse struct {
	Status string `json:"status"` // "success" | "user_exists"
}

const (
	registerStatusSuccess    = "success"
	registerStatusUserExists = "user_exists"
)

// ---- /auth/login ----

type loginResponse struct {
	// Status is either one of the failure strings ("user_not_found",
	// "invalid_password") or a loginLoggedIn object.
	Status any `json:"status"`
}

const (
	loginStatusUserNotFound    = "user_not_found"
	loginStatusInvalidPassword = "invalid_password"
)

type loginLoggedIn struct {
	LoggedIn loginToken `json:"logged_in"`
}

type loginToken struct {
	Token string `json:"token"`
}

// ---- /auth/status ----

type statusResponse struct {
	// Next is either the string "login" or a statusProceed object.
	Next any `json:"next"`
}

const statusNextLogin = "login"

type statusProceed struct {
	Proceed statusUID `json:"proceed"`
}

type statusUID struct {
	UID identity.UserID `json:"uid"`
}
