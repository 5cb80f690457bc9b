// Package editor holds the level editor's game data and the undo stack the
// agent's tools record their changes on.
package editor

import "slices"

// Default scene geometry used when a tool creates a scene without it.
var (
	DefaultWalkArea    = WalkArea{MinX: 0, MaxX: 640, MinY: 260, MaxY: 400}
	DefaultPlayerSpawn = Point{X: 320, Y: 300}
)

// Point is a position in scene coordinates.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// WalkArea bounds where the player can walk in a scene.
type WalkArea struct {
	MinX float64 `yaml:"min_x" json:"min_x"`
	MaxX float64 `yaml:"max_x" json:"max_x"`
	MinY float64 `yaml:"min_y" json:"min_y"`
	MaxY float64 `yaml:"max_y" json:"max_y"`
}

// Hotspot is a clickable region of a scene.
type Hotspot struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Type        string  `yaml:"type" json:"type"` // npc, item, exit, examine
	X           float64 `yaml:"x" json:"x"`
	Y           float64 `yaml:"y" json:"y"`
	W           float64 `yaml:"w" json:"w"`
	H           float64 `yaml:"h" json:"h"`
	TargetScene string  `yaml:"target_scene,omitempty" json:"target_scene,omitempty"`
	DialogID    string  `yaml:"dialog_id,omitempty" json:"dialog_id,omitempty"`
	ExamineText string  `yaml:"examine_text,omitempty" json:"examine_text,omitempty"`
}

// Component is a typed bag of properties attached to an actor.
type Component struct {
	Type       string         `yaml:"type" json:"type"`
	Properties map[string]any `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Actor is an object placed in a scene.
type Actor struct {
	Name            string      `yaml:"name" json:"name"`
	Type            string      `yaml:"type" json:"type"` // interactive, npc, item, prop, sprite
	X               float64     `yaml:"x" json:"x"`
	Y               float64     `yaml:"y" json:"y"`
	Width           float64     `yaml:"width,omitempty" json:"width,omitempty"`
	Height          float64     `yaml:"height,omitempty" json:"height,omitempty"`
	Sprite          string      `yaml:"sprite,omitempty" json:"sprite,omitempty"`
	DialogID        string      `yaml:"dialog_id,omitempty" json:"dialog_id,omitempty"`
	ItemID          string      `yaml:"item_id,omitempty" json:"item_id,omitempty"`
	InteractionText string      `yaml:"interaction_text,omitempty" json:"interaction_text,omitempty"`
	Visible         bool        `yaml:"visible" json:"visible"`
	Active          bool        `yaml:"active" json:"active"`
	Components      []Component `yaml:"components,omitempty" json:"components,omitempty"`
}

// Scene is a room of the game.
type Scene struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Background  string    `yaml:"background,omitempty" json:"background,omitempty"`
	WalkArea    WalkArea  `yaml:"walk_area" json:"walk_area"`
	PlayerSpawn Point     `yaml:"player_spawn" json:"player_spawn"`
	Hotspots    []Hotspot `yaml:"hotspots,omitempty" json:"hotspots,omitempty"`
	Actors      []Actor   `yaml:"actors,omitempty" json:"actors,omitempty"`
}

// Hotspot returns the index of the hotspot with the given id, or -1.
func (s *Scene) Hotspot(id string) int {
	return slices.IndexFunc(s.Hotspots, func(h Hotspot) bool { return h.ID == id })
}

// Actor returns the index of the actor with the given name, or -1.
func (s *Scene) Actor(name string) int {
	return slices.IndexFunc(s.Actors, func(a Actor) bool { return a.Name == name })
}

// Clone returns a deep copy of the scene.
func (s Scene) Clone() Scene {
	s.Hotspots = slices.Clone(s.Hotspots)
	actors := make([]Actor, len(s.Actors))
	for i, a := range s.Actors {
		actors[i] = a.Clone()
	}
	if s.Actors == nil {
		actors = nil
	}
	s.Actors = actors
	return s
}

// Clone returns a deep copy of the actor.
func (a Actor) Clone() Actor {
	if a.Components == nil {
		return a
	}
	comps := make([]Component, len(a.Components))
	for i, c := range a.Components {
		comps[i] = Component{Type: c.Type, Properties: cloneMap(c.Properties)}
	}
	a.Components = comps
	return a
}

// Level groups scenes into a chapter or area.
type Level struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	MusicTrack  string   `yaml:"music_track,omitempty" json:"music_track,omitempty"`
	Scenes      []string `yaml:"scenes,omitempty" json:"scenes,omitempty"`
	StartScene  string   `yaml:"start_scene,omitempty" json:"start_scene,omitempty"`
}

// Clone returns a deep copy of the level.
func (l Level) Clone() Level {
	l.Scenes = slices.Clone(l.Scenes)
	return l
}

// DialogChoice is a player response leading to another node.
type DialogChoice struct {
	Text       string `yaml:"text" json:"text"`
	NextNodeID int    `yaml:"next_node_id" json:"next_node_id"`
	Condition  string `yaml:"condition,omitempty" json:"condition,omitempty"`
	Tone       string `yaml:"tone,omitempty" json:"tone,omitempty"`
}

// DialogNode is one line of a dialog tree. NextNodeID -1 ends the dialog.
type DialogNode struct {
	ID         int            `yaml:"id" json:"id"`
	Speaker    string         `yaml:"speaker" json:"speaker"`
	Text       string         `yaml:"text" json:"text"`
	Choices    []DialogChoice `yaml:"choices,omitempty" json:"choices,omitempty"`
	NextNodeID int            `yaml:"next_node_id" json:"next_node_id"`
	Action     string         `yaml:"action,omitempty" json:"action,omitempty"`
}

// Dialog is a conversation tree with an NPC.
type Dialog struct {
	ID          string       `yaml:"id" json:"id"`
	NPCName     string       `yaml:"npc_name" json:"npc_name"`
	StartNodeID int          `yaml:"start_node_id" json:"start_node_id"`
	Nodes       []DialogNode `yaml:"nodes" json:"nodes"`
}

// NextNodeID returns an unused node id.
func (d *Dialog) NextNodeID() int {
	next := 0
	for _, n := range d.Nodes {
		if n.ID >= next {
			next = n.ID + 1
		}
	}
	return next
}

// Clone returns a deep copy of the dialog.
func (d Dialog) Clone() Dialog {
	nodes := make([]DialogNode, len(d.Nodes))
	for i, n := range d.Nodes {
		n.Choices = slices.Clone(n.Choices)
		nodes[i] = n
	}
	if d.Nodes == nil {
		nodes = nil
	}
	d.Nodes = nodes
	return d
}

// Objective types accepted by quests.
var ObjectiveTypes = []string{"talk", "collect", "deliver", "goto", "examine", "kill", "use"}

// Objective is one step of a quest.
type Objective struct {
	ID            string `yaml:"id" json:"id"`
	Description   string `yaml:"description" json:"description"`
	Type          string `yaml:"type" json:"type"`
	TargetID      string `yaml:"target_id" json:"target_id"`
	RequiredCount int    `yaml:"required_count" json:"required_count"`
	Optional      bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Quest is a goal for the player.
type Quest struct {
	ID          string      `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Objectives  []Objective `yaml:"objectives,omitempty" json:"objectives,omitempty"`
	RewardItem  string      `yaml:"reward_item,omitempty" json:"reward_item,omitempty"`
	RewardXP    int         `yaml:"reward_xp,omitempty" json:"reward_xp,omitempty"`
	AutoStart   bool        `yaml:"auto_start,omitempty" json:"auto_start,omitempty"`
	Giver       string      `yaml:"giver,omitempty" json:"giver,omitempty"` // NPC actor name
	IntroDialog string      `yaml:"intro_dialog,omitempty" json:"intro_dialog,omitempty"`
}

// Clone returns a deep copy of the quest.
func (q Quest) Clone() Quest {
	q.Objectives = slices.Clone(q.Objectives)
	return q
}

// Item is an inventory object.
type Item struct {
	ID            string `yaml:"id" json:"id"`
	Name          string `yaml:"name" json:"name"`
	Description   string `yaml:"description" json:"description"`
	Icon          string `yaml:"icon,omitempty" json:"icon,omitempty"`
	Combinable    bool   `yaml:"combinable,omitempty" json:"combinable,omitempty"`
	CombinesWith  string `yaml:"combines_with,omitempty" json:"combines_with,omitempty"`
	CombineResult string `yaml:"combine_result,omitempty" json:"combine_result,omitempty"`
}

// Clone returns a copy of the item.
func (i Item) Clone() Item { return i }

// World holds the game's entry point.
type World struct {
	StartLevel string `yaml:"start_level,omitempty" json:"start_level,omitempty"`
	StartScene string `yaml:"start_scene,omitempty" json:"start_scene,omitempty"`
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
