package editor

import "github.com/retroengine/retroai/pkg/core"

// change is a snapshot command: Execute installs the after state and Undo
// the before state, so applying it twice is harmless.
type change struct {
	desc   string
	apply  func()
	revert func()
}

func (c *change) Execute() error      { c.apply(); return nil }
func (c *change) Undo() error         { c.revert(); return nil }
func (c *change) Description() string { return c.desc }

// entityChange swaps one entity between two snapshots. A nil snapshot means
// the entity does not exist in that state.
func entityChange[T any](p *Project, c *collection[T], id string, before, after *T, desc string) core.Command {
	snap := func(v *T) *T {
		if v == nil {
			return nil
		}
		cp := c.clone(*v)
		return &cp
	}
	b, a := snap(before), snap(after)
	set := func(v *T) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if v == nil {
			c.remove(id)
		} else {
			c.put(*v)
		}
		p.dirty = true
	}
	return &change{
		desc:   desc,
		apply:  func() { set(a) },
		revert: func() { set(b) },
	}
}

// SceneChange returns a command moving one scene from before to after.
// Pass nil before for a creation and nil after for a deletion.
func (p *Project) SceneChange(before, after *Scene, desc string) core.Command {
	return entityChange(p, p.scenes, pickID(before, after, func(s *Scene) string { return s.ID }), before, after, desc)
}

// LevelChange is SceneChange for levels.
func (p *Project) LevelChange(before, after *Level, desc string) core.Command {
	return entityChange(p, p.levels, pickID(before, after, func(l *Level) string { return l.ID }), before, after, desc)
}

// DialogChange is SceneChange for dialogs.
func (p *Project) DialogChange(before, after *Dialog, desc string) core.Command {
	return entityChange(p, p.dialogs, pickID(before, after, func(d *Dialog) string { return d.ID }), before, after, desc)
}

// QuestChange is SceneChange for quests.
func (p *Project) QuestChange(before, after *Quest, desc string) core.Command {
	return entityChange(p, p.quests, pickID(before, after, func(q *Quest) string { return q.ID }), before, after, desc)
}

// ItemChange is SceneChange for items.
func (p *Project) ItemChange(before, after *Item, desc string) core.Command {
	return entityChange(p, p.items, pickID(before, after, func(i *Item) string { return i.ID }), before, after, desc)
}

// WorldChange returns a command replacing the game entry point.
func (p *Project) WorldChange(before, after World, desc string) core.Command {
	set := func(w World) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.world = w
		p.dirty = true
	}
	return &change{
		desc:   desc,
		apply:  func() { set(after) },
		revert: func() { set(before) },
	}
}

// Batch groups commands into one undo step. Undo runs in reverse order.
func Batch(desc string, cmds ...core.Command) core.Command {
	return &change{
		desc: desc,
		apply: func() {
			for _, c := range cmds {
				_ = c.Execute()
			}
		},
		revert: func() {
			for i := len(cmds) - 1; i >= 0; i-- {
				_ = cmds[i].Undo()
			}
		},
	}
}

func pickID[T any](before, after *T, id func(*T) string) string {
	if after != nil {
		return id(after)
	}
	if before != nil {
		return id(before)
	}
	return ""
}

// Apply executes cmd immediately and returns it, so tools can report the
// change and hand the same command to the undo stack.
func Apply(cmd core.Command) (core.Command, error) {
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	return cmd, nil
}
