// Package cli implements the engramctl CLI commands, a thin demonstration
// binary over the public engram API. Besides that API it uses a few
// internal/ helpers (config presets, model types for add/import, the
// chunker's Preview for get --excerpt).
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/engramhq/engram"
	"github.com/engramhq/engram/internal/config"
)

var (
	dbPath     string
	formatFlag string
	presetFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "engramctl",
	Short: "Embeddable cognitive memory engine",
	Long:  "A CLI demonstration of Engram: add/recall/consolidate/forget/reward a SQLite-backed memory store.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $ENGRAM_DB or ~/.engram/memory.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format (currently ignored: every command prints JSON)")
	RootCmd.PersistentFlags().StringVar(&presetFlag, "preset", "", "Config preset: chatbot, task-agent, personal-assistant, researcher")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("ENGRAM_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".engram", "memory.db")
}

func resolveConfig() config.Config {
	switch presetFlag {
	case "chatbot":
		return config.Chatbot()
	case "task-agent":
		return config.TaskAgent()
	case "personal-assistant":
		return config.PersonalAssistant()
	case "researcher":
		return config.Researcher()
	default:
		return config.Default()
	}
}

func openMemory() (*engram.Memory, error) {
	return engram.Open(getDBPath(), resolveConfig())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
