package apperrors

type Type string

const (
	TypeValidation Type = "validation"
	TypeNotFound   Type = "not_found"
	TypeConflict   Type = "conflict"
	TypeInternal   Type = "internal"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// AppError is the single error shape crossing layer boundaries: a machine
// readable code, a human message and a details map for structured context.
type AppError struct {
	Type     Type           `json:"type"`
	Severity Severity       `json:"severity"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func NewInternal(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:     TypeInternal,
		Severity: SeverityCritical,
		Code:     code,
		Message:  message,
		Details:  details,
	}
}

func NewValidation(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:     TypeValidation,
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Details:  details,
	}
}

func NewNotFound(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:     TypeNotFound,
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Details:  details,
	}
}

func NewConflict(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:     TypeConflict,
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Details:  details,
	}
}

func (e *AppError) WithSeverity(severity Severity) *AppError {
	if e == nil {
		return nil
	}

	e.Severity = severity
	return e
}
