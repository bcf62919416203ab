package main

import (
	"encoding/json"
	"net/http"
)

// APIResponse handles consistent header setting and the success/error
// envelope all endpoints share.
type APIResponse struct {
	w           http.ResponseWriter
	r           *http.Request
	cacheStatus string
}

// Respond creates a response helper from request context
func Respond(w http.ResponseWriter, r *http.Request) *APIResponse {
	return &APIResponse{w: w, r: r}
}

// SetCacheStatus sets the X-Cache-Status header value
func (a *APIResponse) SetCacheStatus(status string) *APIResponse {
	a.cacheStatus = status
	return a
}

// writeHeaders sets all standard headers based on context
func (a *APIResponse) writeHeaders() {
	a.w.Header().Set("Content-Type", "application/json")

	if a.cacheStatus != "" {
		a.w.Header().Set("X-Cache-Status", a.cacheStatus)
	}

	if rateLimitType, ok := a.r.Context().Value(rateLimitTypeKey).(string); ok && rateLimitType != "" {
		a.w.Header().Set("X-RateLimit-Type", rateLimitType)
	}
}

// Success writes a {"success": true, "data": ...} envelope (200 OK)
func (a *APIResponse) Success(data interface{}) error {
	a.writeHeaders()
	return json.NewEncoder(a.w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// SuccessCached writes the success envelope with the cached flag
func (a *APIResponse) SuccessCached(data interface{}, cached bool) error {
	a.writeHeaders()
	return json.NewEncoder(a.w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
		"cached":  cached,
	})
}

// Error writes a {"success": false, "error": ...} envelope with status
func (a *APIResponse) Error(statusCode int, message string) error {
	a.writeHeaders()
	a.w.WriteHeader(statusCode)
	return json.NewEncoder(a.w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// JSON writes headers and encodes data without the envelope (200 OK)
func (a *APIResponse) JSON(data interface{}) error {
	a.writeHeaders()
	return json.NewEncoder(a.w).Encode(data)
}
