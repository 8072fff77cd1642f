package adapter

import (
	"errors"
	"fmt"

	"github.com/ibero-data/duck-ui-sub001/pkg/dbcapabilities"
)

// Standard adapter errors
var (
	// ErrConnectionClosed is returned when attempting to use a closed connection
	ErrConnectionClosed = errors.New("connection is closed")

	// ErrConnectionFailed is returned when a connection attempt fails
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidConfiguration is returned when the configuration is invalid
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrAdapterNotFound is returned when an adapter is not registered
	ErrAdapterNotFound = errors.New("adapter not found")

	// ErrAuthenticationFailed is returned when the endpoint rejects the credentials
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrEndpointNotFound is returned when the endpoint answers but no SQL
	// service lives at the URL
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrNetworkFailure is returned when no HTTP response was received at all
	ErrNetworkFailure = errors.New("network failure")

	// ErrParseFailed is returned when a response body matches no known result shape
	ErrParseFailed = errors.New("failed to parse query result")

	// ErrDatabaseInUse is returned when a database file is already open in
	// another session
	ErrDatabaseInUse = errors.New("database file already in use")
)

// DatabaseError wraps backend-specific errors with additional context.
// This provides a consistent error structure across all backend kinds.
type DatabaseError struct {
	DatabaseType dbcapabilities.DatabaseID
	Operation    string
	Cause        error
	Context      map[string]interface{}
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if len(e.Context) > 0 {
		return fmt.Sprintf("[%s] %s: %v (context: %v)", e.DatabaseType, e.Operation, e.Cause, e.Context)
	}
	return fmt.Sprintf("[%s] %s: %v", e.DatabaseType, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error.
func (e *DatabaseError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(dbType dbcapabilities.DatabaseID, operation string, cause error) *DatabaseError {
	return &DatabaseError{
		DatabaseType: dbType,
		Operation:    operation,
		Cause:        cause,
		Context:      make(map[string]interface{}),
	}
}

// WithContext adds context to a DatabaseError.
func (e *DatabaseError) WithContext(key string, value interface{}) *DatabaseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// ConnectionError is returned when a connection attempt fails. Target is the
// endpoint URL for remote backends, the file path for persistent ones, and
// ":memory:" for embedded sessions.
type ConnectionError struct {
	DatabaseType dbcapabilities.DatabaseID
	Target       string
	Cause        error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s at %s: %v", e.DatabaseType, e.Target, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrConnectionFailed.
func (e *ConnectionError) Is(target error) bool {
	if errors.Is(target, ErrConnectionFailed) {
		return true
	}
	return errors.Is(e.Cause, target)
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(dbType dbcapabilities.DatabaseID, target string, cause error) *ConnectionError {
	return &ConnectionError{
		DatabaseType: dbType,
		Target:       target,
		Cause:        cause,
	}
}

// ConfigurationError is returned when a configuration error occurs.
type ConfigurationError struct {
	DatabaseType dbcapabilities.DatabaseID
	Field        string
	Reason       string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for %s: field '%s': %s", e.DatabaseType, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.DatabaseType, e.Reason)
}

// Is checks if the error is ErrInvalidConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidConfiguration)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(dbType dbcapabilities.DatabaseID, field string, reason string) *ConfigurationError {
	return &ConfigurationError{
		DatabaseType: dbType,
		Field:        field,
		Reason:       reason,
	}
}

// ConflictError is returned when a database file is already open in another
// session. Path carries the normalized file path so the message names the
// actual on-disk file.
type ConflictError struct {
	DatabaseType dbcapabilities.DatabaseID
	Path         string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("database file %q is already open in another session", e.Path)
}

// Is checks if the error is ErrDatabaseInUse.
func (e *ConflictError) Is(target error) bool {
	return errors.Is(target, ErrDatabaseInUse)
}

// NewConflictError creates a new ConflictError.
func NewConflictError(dbType dbcapabilities.DatabaseID, path string) *ConflictError {
	return &ConflictError{
		DatabaseType: dbType,
		Path:         path,
	}
}

// AuthError is returned when the endpoint answered with an authentication
// rejection. It is deliberately distinct from NetworkError: the server was
// reached and said no.
type AuthError struct {
	DatabaseType dbcapabilities.DatabaseID
	Endpoint     string
	StatusCode   int
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s at %s (HTTP %d): check username/password or API key",
		e.DatabaseType, e.Endpoint, e.StatusCode)
}

// Is checks if the error is ErrAuthenticationFailed.
func (e *AuthError) Is(target error) bool {
	return errors.Is(target, ErrAuthenticationFailed)
}

// NewAuthError creates a new AuthError.
func NewAuthError(dbType dbcapabilities.DatabaseID, endpoint string, statusCode int) *AuthError {
	return &AuthError{
		DatabaseType: dbType,
		Endpoint:     endpoint,
		StatusCode:   statusCode,
	}
}

// UnreachableError is returned when the endpoint answered HTTP 404: something
// is listening, but no SQL service lives at the URL.
type UnreachableError struct {
	DatabaseType dbcapabilities.DatabaseID
	Endpoint     string
}

// Error implements the error interface.
func (e *UnreachableError) Error() string {
	return fmt.Sprintf("no SQL endpoint found at %s (HTTP 404): check the URL and port", e.Endpoint)
}

// Is checks if the error is ErrEndpointNotFound.
func (e *UnreachableError) Is(target error) bool {
	return errors.Is(target, ErrEndpointNotFound)
}

// NewUnreachableError creates a new UnreachableError.
func NewUnreachableError(dbType dbcapabilities.DatabaseID, endpoint string) *UnreachableError {
	return &UnreachableError{
		DatabaseType: dbType,
		Endpoint:     endpoint,
	}
}

// NetworkError is returned when no HTTP response was received at all. The
// message states that explicitly so it cannot be confused with a status-code
// failure from a reachable server.
type NetworkError struct {
	DatabaseType dbcapabilities.DatabaseID
	Endpoint     string
	Cause        error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure reaching %s: no HTTP response received (%v); check the URL, TLS, or the server's CORS settings",
		e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrNetworkFailure.
func (e *NetworkError) Is(target error) bool {
	return errors.Is(target, ErrNetworkFailure)
}

// NewNetworkError creates a new NetworkError.
func NewNetworkError(dbType dbcapabilities.DatabaseID, endpoint string, cause error) *NetworkError {
	return &NetworkError{
		DatabaseType: dbType,
		Endpoint:     endpoint,
		Cause:        cause,
	}
}

// ParseErrorPreviewLimit bounds the input excerpt embedded in a ParseError.
const ParseErrorPreviewLimit = 200

// ParseError is returned when a response body matches no known result shape.
// Preview carries the offending input truncated to ParseErrorPreviewLimit
// characters so logs stay bounded.
type ParseError struct {
	Preview string
	Cause   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Failed to parse query result: %v (input preview: %q)", e.Cause, e.Preview)
	}
	return fmt.Sprintf("Failed to parse query result (input preview: %q)", e.Preview)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrParseFailed.
func (e *ParseError) Is(target error) bool {
	return errors.Is(target, ErrParseFailed)
}

// NewParseError creates a new ParseError, truncating the input preview.
func NewParseError(input string, cause error) *ParseError {
	preview := input
	if len(preview) > ParseErrorPreviewLimit {
		preview = preview[:ParseErrorPreviewLimit]
	}
	return &ParseError{
		Preview: preview,
		Cause:   cause,
	}
}

// WrapError wraps an error with backend context.
// If the error is already a DatabaseError, it returns it as-is.
func WrapError(dbType dbcapabilities.DatabaseID, operation string, err error) error {
	if err == nil {
		return nil
	}

	// Don't double-wrap
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}

	return NewDatabaseError(dbType, operation, err)
}

// IsConnectionError checks if an error is a connection error.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsConfigurationError checks if an error is a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsAuthenticationError checks if an error is an authentication error.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

// IsNetworkError checks if an error means no HTTP response was received.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetworkFailure)
}

// IsParseError checks if an error is a result parse failure.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParseFailed)
}

// IsConflict checks if an error means the database file is already open.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDatabaseInUse)
}
