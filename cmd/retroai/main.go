package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/retroengine/retroai/pkg/transcript"
	"github.com/retroengine/retroai/pkg/tui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile  string
	logLevel string
	rootCmd  = &cobra.Command{
		Use:   "retroai",
		Short: "retroai - an AI assistant for the Retro Engine level editor",
		Long: `retroai lets you build point-and-click adventure content by talking to it.
It edits scenes, hotspots, actors, dialogs, quests, items and levels of a
Retro Engine project through the same tools the in-editor assistant uses,
asking before it makes structural changes.`,
		SilenceUsage: true,
		RunE:         runChat,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .retroai/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("project", "", "project directory (overrides project_dir)")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	rootCmd.PersistentFlags().String("model", "", "model name")

	_ = viper.BindPFlag("project_dir", rootCmd.PersistentFlags().Lookup("project"))
	_ = viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))

	rootCmd.AddCommand(chatCmd)
}

func initConfig() {
	// Load .env file if it exists (optional, warn if malformed)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load .env file: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(FolderName)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("RETROAI")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// configPath is where init writes and the other commands read.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return filepath.Join(FolderName, "config.yaml")
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat (default)",
	RunE:  runChat,
}

// runChat starts the terminal chat. Logs go to a file so they do not draw
// over the screen.
func runChat(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return err
	}

	logFile, err := openLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger, err := newLogger(logFile, logLevel)
	if err != nil {
		return err
	}

	w, err := openWorkspace(s, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	if _, err := w.connect(); err != nil {
		return fmt.Errorf("%w\nRun 'retroai init' to configure a provider", err)
	}

	opts := tui.Options{
		Agent:     w.agent,
		Project:   w.project,
		History:   w.history,
		ModelName: s.Model,
		Save:      w.save,
		Logger:    logger,
	}

	if s.TranscriptDB != "" {
		store, err := transcript.Open(s.TranscriptDB)
		if err != nil {
			logger.Warn("transcript disabled", "err", err)
		} else {
			defer store.Close()
			sess, err := store.NewSession(w.project.Name(), s.Provider, s.Model)
			if err != nil {
				logger.Warn("transcript disabled", "err", err)
			} else {
				opts.Transcript = store
				opts.SessionID = sess.ID
			}
		}
	}

	return tui.Run(opts)
}

func openLogFile() (io.WriteCloser, error) {
	if err := os.MkdirAll(FolderName, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", FolderName, err)
	}
	f, err := os.OpenFile(filepath.Join(FolderName, "retroai.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// stderrLogger is the logger of non-interactive commands.
func stderrLogger() (*slog.Logger, error) {
	return newLogger(os.Stderr, logLevel)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
