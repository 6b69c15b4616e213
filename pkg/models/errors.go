package models

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common error codes - HTTP focused but protocol-aware
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Common errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrVideoNotFound = errors.New("video not found")
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")

	// Access gate
	ErrAccessNotConfigured = errors.New("server not configured")
	ErrInvalidAccessCode   = errors.New("invalid code")
	ErrInvalidSession      = errors.New("invalid or expired session")

	// Chat
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrMessageTooLong  = fmt.Errorf("message exceeds %d characters", MaxChatMessageLength)
	ErrChatRateLimited = errors.New("chat send rate exceeded")
)

// AppError carries a protocol-aware failure from the data layer up to the handlers
type AppError struct {
	Code          string                 `json:"code"`
	Message       string                 `json:"message"`
	StatusCode    int                    `json:"status_code,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	Protocol      string                 `json:"protocol,omitempty"` // http, grpc, websocket
	GRPCCode      codes.Code             `json:"grpc_code,omitempty"`
	WebSocketCode int                    `json:"websocket_code,omitempty"`
	cause         error
}

func (e *AppError) Error() string {
	if e.Protocol != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Protocol, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying error to errors.Is/As
func (e *AppError) Unwrap() error {
	return e.cause
}

// ToGRPCError converts to gRPC status error
func (e *AppError) ToGRPCError() error {
	return status.Error(e.GRPCCode, e.Message)
}

// ToWebSocketError returns WebSocket close code and message
func (e *AppError) ToWebSocketError() (int, string) {
	if e.WebSocketCode != 0 {
		return e.WebSocketCode, e.Message
	}

	switch e.Code {
	case ErrCodeUnauthorized:
		return websocket.ClosePolicyViolation, "authentication required"
	case ErrCodeNotFound:
		return websocket.CloseNormalClosure, "resource not found"
	case ErrCodeValidation, ErrCodeBadRequest:
		return websocket.CloseUnsupportedData, e.Message
	default:
		return websocket.CloseInternalServerErr, e.Message
	}
}

// NewHTTPError builds an AppError for HTTP handlers
func NewHTTPError(code, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Protocol:   "http",
		Details:    details(err),
		cause:      err,
	}
}

// NewGRPCError builds an AppError for gRPC services
func NewGRPCError(grpcCode codes.Code, code, message string, err error) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		GRPCCode: grpcCode,
		Protocol: "grpc",
		Details:  details(err),
		cause:    err,
	}
}

// NewWebSocketError builds an AppError for the chat stream
func NewWebSocketError(wsCode int, code, message string, err error) *AppError {
	return &AppError{
		Code:          code,
		Message:       message,
		WebSocketCode: wsCode,
		Protocol:      "websocket",
		Details:       details(err),
		cause:         err,
	}
}

func details(err error) map[string]interface{} {
	if err == nil {
		return nil
	}
	return map[string]interface{}{"original_error": err.Error()}
}

// StatusCodeOf returns the HTTP status for an error, 500 when unknown
func StatusCodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrVideoNotFound), errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLong):
		return 400
	case errors.Is(err, ErrChatRateLimited):
		return 429
	}
	return 500
}
