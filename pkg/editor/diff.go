package editor

import (
	"fmt"

	"github.com/aymanbagabas/go-udiff"
	"gopkg.in/yaml.v3"
)

// Diff renders the change between two entity snapshots as a unified diff of
// their YAML form. It returns "" when nothing changed.
func Diff(name string, before, after any) string {
	original, err := yaml.Marshal(before)
	if err != nil {
		return ""
	}
	modified, err := yaml.Marshal(after)
	if err != nil {
		return ""
	}
	if string(original) == string(modified) {
		return ""
	}

	// Use go-udiff to generate unified diff with 3 lines of context
	edits := udiff.Strings(string(original), string(modified))
	unified, err := udiff.ToUnified("a/"+name, "b/"+name, string(original), edits, 3)
	if err != nil {
		return fmt.Sprintf("--- a/%s\n+++ b/%s\n(diff generation failed)\n", name, name)
	}
	return unified
}
