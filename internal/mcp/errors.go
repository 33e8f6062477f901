// Package mcp exposes the probe engine over the Model Context Protocol.
package mcp

import (
	"errors"
	"fmt"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
)

// Custom MCP error codes.
const (
	// ErrCodeProviderUnavailable indicates no candidate source could answer.
	ErrCodeProviderUnavailable = -32001

	// ErrCodeDumpMissing indicates the offline dump is not loaded.
	ErrCodeDumpMissing = -32002

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an invalid-params protocol error.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// MapError converts internal errors to MCP protocol errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var pe *seqerrors.ProbeError
	if errors.As(err, &pe) {
		switch pe.Category {
		case seqerrors.CategoryValidation, seqerrors.CategoryConfig:
			return &MCPError{Code: ErrCodeInvalidParams, Message: pe.Message}
		case seqerrors.CategoryProvider:
			return &MCPError{Code: ErrCodeProviderUnavailable, Message: pe.Message}
		case seqerrors.CategoryIO:
			return &MCPError{Code: ErrCodeDumpMissing, Message: pe.Message}
		}
	}
	return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
}
