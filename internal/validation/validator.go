// =============================================================================
// Auction JSON to DAT Converter - Validation Engine
// =============================================================================
//
// This module checks a loaded document without writing anything. Conversion
// stops at the first malformed item; validation walks every item so that all
// problems of a document can be fixed in one go.
//
// CHECKS:
//   Errors (the document would fail conversion):
//   - Required fields missing, null or of the wrong JSON shape
//   - ItemID or Number_of_Bids not an integer
//   - Timestamps that do not parse, or carry an unknown month
//   Warnings (the document converts, but the data looks off):
//   - Number_of_Bids differs from the length of the Bids list
//   - The same ItemID appears more than once in the document
//
// ERROR HANDLING:
//   - Errors are collected, not returned immediately
//   - Each error names the item position, item id and field path
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/auction-json-to-dat/internal/extractor"
	"github.com/ginjaninja78/auction-json-to-dat/internal/jsonparser"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single problem found in a document.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Index is the item's position in the "Items" array.
	Index int

	// ItemID is the item's id, when it could be read.
	ItemID string

	// Field is the path of the offending field.
	Field string

	// Message is a human-readable description.
	Message string

	// Err is the underlying extraction error, nil for warnings.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Item #%d", strings.ToUpper(e.Severity), e.Index)
	if e.ItemID != "" {
		fmt.Fprintf(&b, " (ItemID %s)", e.ItemID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ", Field '%s'", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	return b.String()
}

// Unwrap returns the underlying extraction error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// ItemsValidated is the number of items walked.
	ItemsValidated int
}

func (r *ValidationResult) add(e *ValidationError, warningsAreErrors bool) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
	if warningsAreErrors {
		r.IsValid = false
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// Extract is passed to the record extractor for every item.
	Extract extractor.Options

	// StopOnFirstError stops validation after the first fatal error.
	// Default: false
	StopOnFirstError bool

	// TreatWarningsAsErrors treats warnings as fatal errors.
	// Default: false
	TreatWarningsAsErrors bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		StopOnFirstError:      false,
		TreatWarningsAsErrors: false,
	}
}

// Validator performs validation on documents.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a new Validator with the default options.
func NewValidator() *Validator {
	return NewValidatorWithOptions(DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks every item of doc with the given extraction options.
func Validate(doc *jsonparser.Document, opts extractor.Options) *ValidationResult {
	options := DefaultValidationOptions()
	options.Extract = opts
	return NewValidatorWithOptions(options).ValidateDocument(doc)
}

// ValidateDocument walks every item of doc and returns a detailed result.
func (v *Validator) ValidateDocument(doc *jsonparser.Document) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]*ValidationError, 0),
	}
	seen := make(map[string]int)

	for i, raw := range doc.Items {
		result.ItemsValidated++

		part, err := extractor.ExtractItem(i, raw, v.options.Extract)
		if err != nil {
			result.add(fromExtractError(i, err), v.options.TreatWarningsAsErrors)
			if v.options.StopOnFirstError {
				return result
			}
			continue
		}

		item := part.Items[0]
		id := item.ID.Text

		if first, ok := seen[id]; ok {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Index:    i,
				ItemID:   id,
				Field:    "ItemID",
				Message:  fmt.Sprintf("duplicate of item #%d", first),
			}, v.options.TreatWarningsAsErrors)
		} else {
			seen[id] = i
		}

		declared, _ := strconv.Atoi(item.NumberOfBids.Text)
		if declared != len(part.Bids) {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Index:    i,
				ItemID:   id,
				Field:    "Number_of_Bids",
				Message:  fmt.Sprintf("declares %d bids but Bids holds %d", declared, len(part.Bids)),
			}, v.options.TreatWarningsAsErrors)
		}
	}

	return result
}

// fromExtractError turns an extraction failure into a fatal ValidationError.
func fromExtractError(index int, err error) *ValidationError {
	ve := &ValidationError{
		Severity: SeverityError,
		Index:    index,
		Message:  err.Error(),
		Err:      err,
	}

	var malformed *extractor.MalformedRecordError
	if errors.As(err, &malformed) {
		ve.ItemID = malformed.ItemID
		ve.Field = malformed.Field
		ve.Message = malformed.Err.Error()
	}
	return ve
}
