package storage

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// varPattern matches {{VAR_NAME}} or {{env:VAR_NAME}}
var varPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// LoadCredentials loads a provider → key map from a YAML file and resolves
// any {{env:VAR}} references in the values.
func LoadCredentials(filePath string) (map[string]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds map[string]string
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials YAML: %w", err)
	}

	for key, value := range creds {
		creds[key] = ResolveEnvRefs(value)
	}

	return creds, nil
}

// SubstituteVariables replaces {{VAR}} placeholders with values from vars
// and {{env:VAR}} placeholders with system environment variables. Unknown
// placeholders are left untouched.
func SubstituteVariables(text string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		// Extract variable name (remove {{ and }})
		varName := strings.TrimSpace(match[2 : len(match)-2])

		if sysVar, ok := strings.CutPrefix(varName, "env:"); ok {
			if val := os.Getenv(sysVar); val != "" {
				return val
			}
			return match
		}

		if val, ok := vars[varName]; ok {
			return val
		}

		return match
	})
}

// ResolveEnvRefs resolves {{env:VAR}} references in a string.
func ResolveEnvRefs(text string) string {
	return SubstituteVariables(text, nil)
}

// IsEnvRef reports whether s consists of a single {{env:VAR}} reference.
func IsEnvRef(s string) bool {
	m := varPattern.FindStringSubmatch(strings.TrimSpace(s))
	return m != nil && m[0] == strings.TrimSpace(s) && strings.HasPrefix(strings.TrimSpace(m[1]), "env:")
}
