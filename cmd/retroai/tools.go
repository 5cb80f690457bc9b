package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/retroengine/retroai/pkg/core"
	"github.com/retroengine/retroai/pkg/llm"
)

var (
	toolsCategory string
	toolsJSON     bool
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c6c6c"))
)

func init() {
	toolsCmd.Flags().StringVarP(&toolsCategory, "category", "c", "", "only list tools of this category")
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "print the tool definitions sent to the model")
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(modelsCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the editor tools available to the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		logger, err := stderrLogger()
		if err != nil {
			return err
		}
		w, err := openWorkspace(s, logger)
		if err != nil {
			return err
		}
		if toolsJSON {
			return printDefinitions(cmd.OutOrStdout(), w.registry)
		}
		printTools(cmd.OutOrStdout(), w.registry, toolsCategory)
		return nil
	},
}

func printDefinitions(out io.Writer, registry *core.Registry) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(registry.Definitions())
}

// printTools lists tools grouped by category. Tools that ask for
// confirmation are starred.
func printTools(out io.Writer, registry *core.Registry, category string) {
	for _, cat := range registry.Categories() {
		if category != "" && cat != category {
			continue
		}
		fmt.Fprintln(out, headingStyle.Render(strings.ToUpper(cat)))
		for _, t := range registry.ByCategory(cat) {
			name := t.Name()
			if core.RequiresConfirmation(t) {
				name += "*"
			}
			fmt.Fprintf(out, "  %s  %s\n", nameStyle.Render(fmt.Sprintf("%-22s", name)), t.Description())
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, dimStyle.Render("* asks for confirmation before running"))
}

var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List the models a provider offers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		names := llm.ProviderNames()
		if len(args) == 1 {
			names = args
		}
		for _, name := range names {
			ps, err := s.providerSettings(name, nil)
			if err != nil {
				return err
			}
			p, err := llm.NewProvider(name, ps)
			if err != nil {
				return err
			}
			status := "ready"
			if !p.IsAvailable() {
				status = "no API key"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", headingStyle.Render(p.Name()), dimStyle.Render("("+status+")"))
			for _, m := range p.AvailableModels() {
				marker := " "
				if name == s.Provider && m == s.Model {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), " %s %s\n", marker, m)
			}
		}
		return nil
	},
}
