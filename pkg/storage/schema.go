package storage

// ManifestFile is the name of the project manifest inside a project directory.
const ManifestFile = "project.yaml"

// Document kinds. Each kind is stored as one YAML file per entity in a
// subdirectory of the project named after the kind.
const (
	KindScenes  = "scenes"
	KindLevels  = "levels"
	KindDialogs = "dialogs"
	KindQuests  = "quests"
	KindItems   = "items"
)

// Kinds lists every document kind in load order.
func Kinds() []string {
	return []string{KindScenes, KindLevels, KindDialogs, KindQuests, KindItems}
}

// Manifest describes a project as a whole.
type Manifest struct {
	Name       string `yaml:"name"`                  // Project name
	Version    int    `yaml:"version"`               // Format version
	StartLevel string `yaml:"start_level,omitempty"` // Level the game starts in
	StartScene string `yaml:"start_scene,omitempty"` // Scene the game starts in
}

// CurrentVersion is the manifest format version written by this package.
const CurrentVersion = 1
