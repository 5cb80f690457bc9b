package editor

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/storage"
)

const maxRecentActions = 10

// Selection is what the user has focused in the editor.
type Selection struct {
	Scene string `json:"scene,omitempty"`
	Actor string `json:"actor,omitempty"`
	Level string `json:"level,omitempty"`
}

// Project is the in-memory game being edited. It is safe for concurrent use.
type Project struct {
	mu      sync.RWMutex
	name    string
	scenes  *collection[Scene]
	levels  *collection[Level]
	dialogs *collection[Dialog]
	quests  *collection[Quest]
	items   *collection[Item]
	world   World

	selection Selection
	recent    []string
	dirty     bool
}

// NewProject creates an empty project.
func NewProject(name string) *Project {
	return &Project{
		name:    name,
		scenes:  newCollection(func(s Scene) string { return s.ID }, Scene.Clone),
		levels:  newCollection(func(l Level) string { return l.ID }, Level.Clone),
		dialogs: newCollection(func(d Dialog) string { return d.ID }, Dialog.Clone),
		quests:  newCollection(func(q Quest) string { return q.ID }, Quest.Clone),
		items:   newCollection(func(i Item) string { return i.ID }, Item.Clone),
	}
}

// Name returns the project name.
func (p *Project) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Dirty reports whether the project changed since it was loaded or saved.
func (p *Project) Dirty() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirty
}

// Scenes returns copies of all scenes in creation order.
func (p *Project) Scenes() []Scene {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scenes.all()
}

// Scene returns a copy of one scene.
func (p *Project) Scene(id string) (Scene, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scenes.get(id)
}

// Levels returns copies of all levels.
func (p *Project) Levels() []Level {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.levels.all()
}

// Level returns a copy of one level.
func (p *Project) Level(id string) (Level, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.levels.get(id)
}

// Dialogs returns copies of all dialogs.
func (p *Project) Dialogs() []Dialog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dialogs.all()
}

// Dialog returns a copy of one dialog.
func (p *Project) Dialog(id string) (Dialog, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dialogs.get(id)
}

// Quests returns copies of all quests.
func (p *Project) Quests() []Quest {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quests.all()
}

// Quest returns a copy of one quest.
func (p *Project) Quest(id string) (Quest, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quests.get(id)
}

// Items returns copies of all items.
func (p *Project) Items() []Item {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.items.all()
}

// Item returns a copy of one item.
func (p *Project) Item(id string) (Item, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.items.get(id)
}

// World returns the game entry point.
func (p *Project) World() World {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.world
}

// LevelOf returns the id of the first level containing the scene, or "".
func (p *Project) LevelOf(sceneID string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, l := range p.levels.items {
		if slices.Contains(l.Scenes, sceneID) {
			return l.ID
		}
	}
	return ""
}

// Selection returns the current editor selection.
func (p *Project) Selection() Selection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selection
}

// Select replaces the editor selection. When the level is empty it is
// derived from the scene.
func (p *Project) Select(sel Selection) {
	if sel.Level == "" && sel.Scene != "" {
		sel.Level = p.LevelOf(sel.Scene)
	}
	p.mu.Lock()
	p.selection = sel
	p.mu.Unlock()
}

// RecordAction remembers a short description of a change for the prompt context.
func (p *Project) RecordAction(desc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recent = append(p.recent, desc)
	if len(p.recent) > maxRecentActions {
		p.recent = p.recent[len(p.recent)-maxRecentActions:]
	}
}

// RecentActions returns the remembered change descriptions, oldest first.
func (p *Project) RecentActions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.recent)
}

// EditorContext builds the context the agent substitutes into its prompt.
func (p *Project) EditorContext() core.EditorContext {
	sel := p.Selection()
	ctx := core.EditorContext{
		CurrentRoom:   sel.Scene,
		CurrentLevel:  sel.Level,
		SelectedActor: sel.Actor,
		RecentActions: p.RecentActions(),
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	ctx.Additional = map[string]any{
		"project": p.name,
		"scenes":  len(p.scenes.items),
		"dialogs": len(p.dialogs.items),
		"quests":  len(p.quests.items),
		"items":   len(p.items.items),
	}
	return ctx
}

// Save writes the project to dir: a manifest plus one YAML file per entity.
// Files of entities that no longer exist are removed.
func (p *Project) Save(dir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := storage.Manifest{Name: p.name, StartLevel: p.world.StartLevel, StartScene: p.world.StartScene}
	if err := storage.SaveManifest(dir, m); err != nil {
		return err
	}
	if err := saveKind(dir, storage.KindScenes, p.scenes); err != nil {
		return err
	}
	if err := saveKind(dir, storage.KindLevels, p.levels); err != nil {
		return err
	}
	if err := saveKind(dir, storage.KindDialogs, p.dialogs); err != nil {
		return err
	}
	if err := saveKind(dir, storage.KindQuests, p.quests); err != nil {
		return err
	}
	if err := saveKind(dir, storage.KindItems, p.items); err != nil {
		return err
	}
	p.dirty = false
	return nil
}

func saveKind[T any](dir, kind string, c *collection[T]) error {
	stored, err := storage.ListDocuments(dir, kind)
	if err != nil {
		return err
	}
	live := c.ids()
	for _, id := range stored {
		if !slices.Contains(live, id) {
			if err := storage.RemoveDocument(dir, kind, id); err != nil {
				return err
			}
		}
	}
	for _, v := range c.items {
		if err := storage.SaveDocument(v, storage.DocumentPath(dir, kind, c.id(v))); err != nil {
			return fmt.Errorf("save %s/%s: %w", kind, c.id(v), err)
		}
	}
	return nil
}

// LoadProject reads a project saved with Save. A directory without a
// manifest yields an empty project named after fallbackName.
func LoadProject(dir, fallbackName string) (*Project, error) {
	m, err := storage.LoadManifest(dir)
	if errors.Is(err, os.ErrNotExist) {
		return NewProject(fallbackName), nil
	}
	if err != nil {
		return nil, err
	}

	p := NewProject(m.Name)
	p.world = World{StartLevel: m.StartLevel, StartScene: m.StartScene}
	if err := loadKind(dir, storage.KindScenes, p.scenes); err != nil {
		return nil, err
	}
	if err := loadKind(dir, storage.KindLevels, p.levels); err != nil {
		return nil, err
	}
	if err := loadKind(dir, storage.KindDialogs, p.dialogs); err != nil {
		return nil, err
	}
	if err := loadKind(dir, storage.KindQuests, p.quests); err != nil {
		return nil, err
	}
	if err := loadKind(dir, storage.KindItems, p.items); err != nil {
		return nil, err
	}
	return p, nil
}

func loadKind[T any](dir, kind string, c *collection[T]) error {
	ids, err := storage.ListDocuments(dir, kind)
	if err != nil {
		return err
	}
	for _, id := range ids {
		var v T
		if err := storage.LoadDocument(storage.DocumentPath(dir, kind, id), &v); err != nil {
			return fmt.Errorf("load %s/%s: %w", kind, id, err)
		}
		c.put(v)
	}
	return nil
}
