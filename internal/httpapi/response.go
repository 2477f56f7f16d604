package httpapi

import (
	"encoding/json"
	"net/http"
)

// Response codes carried in the JSON envelope.
const (
	CodeSuccess = 0

	// client errors (1000-1999)
	CodeInvalidParams = 1000
	CodeMissingParams = 1001
	CodeNoSearch      = 1002
	CodeNotFound      = 1003

	// server errors (2000-2999)
	CodeServerError = 2000
	CodeIndexError  = 2001
)

var codeMessages = map[int]string{
	CodeSuccess:       "success",
	CodeInvalidParams: "invalid parameters",
	CodeMissingParams: "missing required parameter",
	CodeNoSearch:      "no search performed",
	CodeNotFound:      "not found",
	CodeServerError:   "internal server error",
	CodeIndexError:    "semantic index error",
}

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(body)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, APIResponse{Code: CodeSuccess, Message: codeMessages[CodeSuccess], Data: data})
}

// writeError uses the code's default message when message is empty.
func writeError(w http.ResponseWriter, status, code int, message string) {
	if message == "" {
		message = codeMessages[code]
	}
	writeJSON(w, status, APIResponse{Code: code, Message: message, Data: map[string]any{}})
}
