package main

import (
	"fmt"
	"os"

	"github.com/blang/semver"
	"github.com/charmbracelet/huh"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const releaseRepo = "retroengine/retroai"

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the retroai version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "retroai", version)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update retroai to the latest release",
	RunE: func(cmd *cobra.Command, args []string) error {
		if version == "dev" {
			fmt.Println("You are running a development build. Update is not supported.")
			return nil
		}

		latest, found, err := selfupdate.DetectLatest(releaseRepo)
		if err != nil {
			return fmt.Errorf("detect latest version: %w", err)
		}

		v, err := semver.ParseTolerant(version)
		if err != nil {
			return fmt.Errorf("parse current version %q: %w", version, err)
		}

		if !found || latest.Version.LTE(v) {
			fmt.Println("Current version is the latest")
			return nil
		}

		confirm := false
		err = huh.NewConfirm().
			Title(fmt.Sprintf("Update from %s to %s?", v, latest.Version)).
			Value(&confirm).
			Run()
		if err != nil || !confirm {
			return err
		}

		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("could not locate executable path: %w", err)
		}
		if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
			return fmt.Errorf("update binary: %w", err)
		}
		fmt.Println("Successfully updated to version", latest.Version)
		return nil
	},
}
