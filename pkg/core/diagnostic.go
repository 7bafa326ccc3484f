package core

import "fmt"

// Diagnostic is a single finding from extraction or validation.
type Diagnostic struct {
	RuleID   string   `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
}

// String formats the diagnostic as "severity: message (location)".
func (d Diagnostic) String() string {
	if d.Location == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Location)
}

// Errorf builds an error diagnostic.
func Errorf(location, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...), Location: location}
}

// Warnf builds a warning diagnostic.
func Warnf(location, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Location: location}
}

// ValidationResult separates validator findings by severity.
// IsValid is true iff Errors is empty; warnings never affect validity.
type ValidationResult struct {
	IsValid  bool         `json:"is_valid" yaml:"is_valid"`
	Errors   []Diagnostic `json:"errors" yaml:"errors"`
	Warnings []Diagnostic `json:"warnings" yaml:"warnings"`
}

// NewValidationResult splits diagnostics into errors and warnings, preserving order.
func NewValidationResult(diags []Diagnostic) ValidationResult {
	result := ValidationResult{
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}
	for _, d := range diags {
		if d.Severity == SeverityError {
			result.Errors = append(result.Errors, d)
		} else {
			result.Warnings = append(result.Warnings, d)
		}
	}
	result.IsValid = len(result.Errors) == 0
	return result
}
