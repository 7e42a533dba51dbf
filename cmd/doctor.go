package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/video-trim-cli/db"
	"github.com/user/video-trim-cli/deps"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  `Check that the external programs the trimmer drives (mpv, ffmpeg, ffprobe) are installed
and that the history database opens.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Checking dependencies...")
		fmt.Println()

		allGood := true
		for _, tool := range deps.Tools {
			path, err := deps.Check(tool)
			if err != nil {
				fmt.Printf("✗ %s: NOT FOUND (%s)\n", tool.Name, tool.Purpose)
				fmt.Printf("  Install from: %s\n", tool.InstallURL)
				allGood = false
				continue
			}
			fmt.Printf("✓ %s: %s\n", tool.Name, path)
		}

		if dbPath, err := db.DefaultPath(); err == nil {
			if database, err := db.OpenAt(dbPath); err != nil {
				fmt.Printf("✗ history database: %v\n", err)
			} else {
				version, _ := db.SchemaVersion(database)
				fmt.Printf("✓ history database: %s (schema %d)\n", dbPath, version)
				database.Close()
			}
		}

		fmt.Println()
		if !allGood {
			fmt.Println("Some dependencies are missing. Please install them to use all features.")
			os.Exit(1)
		}
		fmt.Println("All dependencies are installed!")
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
