// Package schemas validates the role/skill weight table against an embedded
// JSON Schema.
package schemas

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed skill_weights.schema.json
var skillWeightsSchema string

const skillWeightsDocument = "skill_weights"

var compiledSkillWeights = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(skillWeightsSchema))
})

// FieldError is one schema violation. Field is a dotted path such as
// "Engineer.Go", or "(root)".
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document, ordered by field.
type ValidationError struct {
	Document string
	Errors   []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(ve.Document)
	sb.WriteString(" validation failed:\n")
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// SchemaLoadError means validation could not run: either the embedded schema
// does not compile or the document is not JSON.
type SchemaLoadError struct {
	Document string
	Cause    error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("cannot validate %s: %v", e.Document, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateSkillWeights checks a JSON {"role": {"skill": weight}} document.
// Weights must be non-negative numbers and the table must name at least one
// role.
func ValidateSkillWeights(data []byte) error {
	schema, err := compiledSkillWeights()
	if err != nil {
		return &SchemaLoadError{Document: skillWeightsDocument, Cause: err}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &SchemaLoadError{Document: skillWeightsDocument, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	return newValidationError(skillWeightsDocument, result.Errors())
}

func newValidationError(document string, results []gojsonschema.ResultError) *ValidationError {
	ve := &ValidationError{
		Document: document,
		Errors:   make([]FieldError, 0, len(results)),
	}
	for _, desc := range results {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	sort.SliceStable(ve.Errors, func(i, j int) bool {
		return ve.Errors[i].Field < ve.Errors[j].Field
	})
	return ve
}
