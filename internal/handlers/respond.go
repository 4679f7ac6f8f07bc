package handlers

import (
	"encoding/json"
	"net/http"
)

// Stable error codes with their user-facing messages. Handlers send the
// code; clients may show the message or map the code themselves.
var errText = map[string]string{
	"invalid_body":        "Request body could not be parsed.",
	"missing":             "Required fields are missing.",
	"invalid_email":       "Invalid email address.",
	"email_in_use":        "That email is already used by another account.",
	"invalid_credentials": "Email or password is incorrect.",
	"unauthorized":        "Login required.",
	"not_found":           "Not found.",
	"permission_denied":   "You do not have permission to do that.",
	"forbidden":           "You do not have access to this person.",
	"cyclic_dependency":   "This condition would create a circular dependency.",
	"invalid_code":        "Invalid or missing code.",
	"code_not_found":      "Code not found.",
	"invite_expired":      "This invite has expired.",
	"invite_used":         "This invite was already used.",
	"protected_routine":   "This routine is protected and cannot be deleted.",
	"db_error":            "Something went wrong. Try again.",
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code string) {
	writeErrDetail(w, status, code, nil)
}

func writeErrDetail(w http.ResponseWriter, status int, code string, detail any) {
	msg, ok := errText[code]
	if !ok {
		msg = code
	}
	writeJSON(w, status, apiError{Error: code, Message: msg, Detail: detail})
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_body")
		return false
	}
	return true
}
