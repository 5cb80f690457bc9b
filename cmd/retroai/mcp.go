package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/retroengine/retroai/pkg/mcpserver"
)

var mcpReadOnly bool

func init() {
	mcpCmd.Flags().BoolVar(&mcpReadOnly, "read-only", false, "leave out tools that create or delete content")
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the editor tools to MCP clients over stdio",
	Long: `Runs a Model Context Protocol server on stdin/stdout so other assistants
can drive the project with the same tools. Changes are recorded in the undo
history and saved like in the chat. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
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
		defer func() {
			if cerr := w.close(); err == nil {
				err = cerr
			}
		}()

		opts := []mcpserver.Option{
			mcpserver.WithLogger(logger),
			mcpserver.WithCommandManager(w.history),
		}
		if mcpReadOnly {
			opts = append(opts, mcpserver.SkipConfirmable())
		}
		srv := mcpserver.New("retroai", version, w.registry, opts...)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		logger.Info("mcp server starting", "project", w.project.Name())
		return srv.RunStdio(ctx)
	},
}
