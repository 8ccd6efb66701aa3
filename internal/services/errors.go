package services

import "net/http"

// Error is a contract error carrying the machine code and HTTP status the API
// surfaces to the client. Anything else escaping a service is a 500.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

var (
	ErrUnauthorized       = &Error{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", Status: http.StatusUnauthorized}
	ErrUsernameTaken      = &Error{Code: "USERNAME_TAKEN", Message: "Username already taken", Status: http.StatusConflict}
	ErrTypeExists         = &Error{Code: "TYPE_EXISTS", Message: "Type already exists", Status: http.StatusConflict}
	ErrNotFound           = &Error{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
)

func errInvalidRequest(message string) *Error {
	return &Error{Code: "INVALID_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func errInvalidEnum(field string) *Error {
	return &Error{Code: "INVALID_ENUM", Message: "Invalid " + field, Status: http.StatusBadRequest}
}

func errInvalidType(message string) *Error {
	return &Error{Code: "INVALID_TYPE", Message: message, Status: http.StatusBadRequest}
}
