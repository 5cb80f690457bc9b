package core

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateArguments checks args against a tool's JSON Schema. A nil or empty
// schema accepts anything.
func ValidateArguments(schema map[string]any, args map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("invalid tool schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return fmt.Errorf("%s", strings.Join(violations, "; "))
}
