package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "advisory-workers/internal/common/errors"
	"advisory-workers/pkg/registry"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateDocument checks a JSON document against a JSON schema given as a Go map.
func ValidateDocument(document []byte, schema map[string]interface{}) (*ValidationResult, error) {
	if len(schema) == 0 {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out, nil
}

// ValidateJobVariables validates raw job variables against the input schema
// registered for taskType. Unknown task types pass.
func ValidateJobVariables(reg *registry.ActivityRegistry, taskType, variables string) error {
	activity := reg.FindByTaskType(taskType)
	if activity == nil {
		return nil
	}

	result, err := ValidateDocument([]byte(variables), activity.InputSchema)
	if err != nil {
		return apperrors.NewInvalidInputError("variables", err.Error())
	}
	if result.Valid {
		return nil
	}

	first := result.Errors[0]
	msgs := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return apperrors.NewInvalidInputError(first.Field, strings.Join(msgs, "; "))
}
