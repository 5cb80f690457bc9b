package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/editor"
	"github.com/retroengine/retroai/pkg/editor/tools"
	"github.com/retroengine/retroai/pkg/llm"
)

const fallbackProjectName = "Untitled"

// workspace is the project, undo history, tool registry and agent that every
// command that talks to the editor shares.
type workspace struct {
	settings settings
	logger   *slog.Logger
	project  *editor.Project
	history  *editor.UndoStack
	registry *core.Registry
	agent    *core.Agent
}

// openWorkspace loads the project and registers the editor tools. The agent
// is created without a provider; see connect.
func openWorkspace(s settings, logger *slog.Logger) (*workspace, error) {
	project, err := editor.LoadProject(s.ProjectDir, defaultProjectName(os.Getwd, logger))
	if err != nil {
		return nil, err
	}

	w := &workspace{
		settings: s,
		logger:   logger,
		project:  project,
		history:  editor.NewUndoStack(s.UndoLimit),
		registry: core.NewRegistry(logger),
	}
	tools.RegisterAll(w.registry, w.project, w.history)

	if s.Autosave {
		w.history.OnChange(func() {
			if err := w.save(); err != nil {
				logger.Warn("autosave failed", "err", err)
			}
		})
	}

	cfg, err := s.agentConfig()
	if err != nil {
		return nil, err
	}
	w.agent = core.NewAgent(w.registry, core.WithLogger(logger), core.WithCommandManager(w.history))
	w.agent.SetConfig(cfg)
	w.agent.Initialize()
	return w, nil
}

// defaultProjectName names a new project after the working directory.
func defaultProjectName(getwd func() (string, error), logger *slog.Logger) string {
	cwd, err := getwd()
	if err != nil {
		logger.Warn("could not read working directory", "err", err)
		return fallbackProjectName
	}
	name := filepath.Base(cwd)
	if name == "." || name == string(filepath.Separator) {
		return fallbackProjectName
	}
	return name
}

// connect builds the configured provider and hands it to the agent.
func (w *workspace) connect() (llm.Provider, error) {
	ps, err := w.settings.providerSettings(w.settings.Provider, w.logger)
	if err != nil {
		return nil, err
	}
	p, err := llm.NewProvider(w.settings.Provider, ps)
	if err != nil {
		return nil, err
	}
	if !p.IsAvailable() {
		return nil, fmt.Errorf("provider %s has no API key (set api_keys.%s or %s)",
			p.Name(), p.Name(), apiKeyEnv[p.Name()])
	}
	w.agent.SetProvider(p)
	return p, nil
}

// save writes the project when it has unsaved changes.
func (w *workspace) save() error {
	if !w.project.Dirty() {
		return nil
	}
	if err := w.project.Save(w.settings.ProjectDir); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	w.logger.Debug("project saved", "dir", w.settings.ProjectDir)
	return nil
}

// close shuts the agent down and flushes the project.
func (w *workspace) close() error {
	w.agent.Shutdown()
	return w.save()
}
