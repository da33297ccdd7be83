package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures crossing component boundaries.
type ErrorType string

const (
	ErrorTypeImageDecode    ErrorType = "image_decode"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeModelInference ErrorType = "model_inference"
	ErrorTypeGeneration     ErrorType = "generation"
	ErrorTypeSearch         ErrorType = "search"
	ErrorTypeConfig         ErrorType = "config"
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func ImageDecodeError(message string, err error) *DomainError {
	return NewError(ErrorTypeImageDecode, message, err)
}

func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func InferenceError(message string, err error) *DomainError {
	return NewError(ErrorTypeModelInference, message, err)
}

func GenerationError(message string, err error) *DomainError {
	return NewError(ErrorTypeGeneration, message, err)
}

func SearchError(message string, err error) *DomainError {
	return NewError(ErrorTypeSearch, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

// IsType reports whether any error in err's chain is a DomainError of type t.
func IsType(err error, t ErrorType) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type == t
	}
	return false
}

// IsClientError reports whether err was caused by bad caller input.
func IsClientError(err error) bool {
	return IsType(err, ErrorTypeImageDecode) || IsType(err, ErrorTypeValidation)
}
