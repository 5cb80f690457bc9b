package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/retroengine/retroai/pkg/transcript"
)

var (
	sessionsLimit  int
	sessionsAll    bool
	sessionsDelete bool
)

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "number of sessions to list")
	sessionsCmd.Flags().BoolVar(&sessionsAll, "all", false, "list sessions of every project")
	sessionsCmd.Flags().BoolVar(&sessionsDelete, "delete", false, "delete the given session")
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions [id]",
	Short: "List past chat sessions or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		if s.TranscriptDB == "" {
			return fmt.Errorf("transcripts are disabled (transcript_db is empty)")
		}
		store, err := transcript.Open(s.TranscriptDB)
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			project := ""
			if !sessionsAll {
				logger, err := stderrLogger()
				if err != nil {
					return err
				}
				w, err := openWorkspace(s, logger)
				if err != nil {
					return err
				}
				project = w.project.Name()
			}
			return listSessions(out, store, project, sessionsLimit)
		}

		if sessionsDelete {
			if err := store.DeleteSession(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(out, "Deleted", args[0])
			return nil
		}
		return printSession(out, store, args[0])
	},
}

func listSessions(out io.Writer, store *transcript.Store, project string, limit int) error {
	sessions, err := store.Sessions(project, limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions yet")
		return nil
	}
	for _, sess := range sessions {
		fmt.Fprintf(out, "%s  %s  %s  %s/%s\n",
			sess.ID, sess.CreatedAt.Local().Format("2006-01-02 15:04"),
			headingStyle.Render(sess.Project), sess.Provider, sess.Model)
	}
	return nil
}

func printSession(out io.Writer, store *transcript.Store, id string) error {
	sess, err := store.Session(id)
	if err != nil {
		return err
	}
	entries, err := store.Entries(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n\n", headingStyle.Render(sess.Project), dimStyle.Render(sess.CreatedAt.Local().Format("2006-01-02 15:04")))
	for _, e := range entries {
		switch e.Kind {
		case transcript.KindUser:
			fmt.Fprintln(out, nameStyle.Render("> "+e.Content))
		case transcript.KindError:
			fmt.Fprintln(out, dimStyle.Render(e.Content))
		default:
			fmt.Fprintln(out, e.Content)
		}
	}
	return nil
}
