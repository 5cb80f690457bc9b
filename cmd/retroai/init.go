package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/retroengine/retroai/pkg/llm"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .retroai/config.yaml with a setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if _, err := os.Stat(path); err == nil {
			overwrite := false
			err := huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite it?", path)).
				Value(&overwrite).
				Run()
			if err != nil {
				return err
			}
			if !overwrite {
				return nil
			}
		}

		s, err := runWizard(defaultSettings())
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := writeSettings(path, s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		return nil
	},
}

// runWizard asks for the provider first, then offers its models.
func runWizard(s settings) (settings, error) {
	providers := make([]huh.Option[string], 0, len(llm.ProviderNames()))
	for _, name := range llm.ProviderNames() {
		providers = append(providers, huh.NewOption(name, name))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which LLM provider do you want to use?").
				Options(providers...).
				Value(&s.Provider),
		),
	).Run()
	if err != nil {
		return s, err
	}

	p, err := llm.NewProvider(s.Provider, llm.Settings{})
	if err != nil {
		return s, err
	}
	models := p.AvailableModels()
	if len(models) > 0 {
		s.Model = models[0]
	}

	keyRef := ""
	if env, ok := apiKeyEnv[s.Provider]; ok {
		keyRef = "{{env:" + env + "}}"
	}
	baseURL := ""

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model").
				Options(huh.NewOptions(models...)...).
				Value(&s.Model),
			huh.NewInput().
				Title("API key").
				Description("A key, or {{env:VAR}} to read it from the environment").
				Value(&keyRef),
			huh.NewInput().
				Title("Base URL").
				Description("Leave empty for the provider default").
				Value(&baseURL),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Project directory").
				Value(&s.ProjectDir),
			huh.NewConfirm().
				Title("Ask before creating or deleting content?").
				Value(&s.RequireConfirmation),
			huh.NewConfirm().
				Title("Stream responses?").
				Value(&s.StreamResponses),
		),
	).Run()
	if err != nil {
		return s, err
	}

	if keyRef != "" {
		s.APIKeys = map[string]string{s.Provider: keyRef}
	}
	if baseURL != "" {
		s.BaseURLs = map[string]string{s.Provider: baseURL}
	}
	return s, nil
}
