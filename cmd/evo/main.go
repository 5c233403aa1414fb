// Command evo runs the EVO decision core against stdin text input. The real
// voice pipeline (wake word, STT, TTS, overlay) lives outside this binary and
// feeds the same Decide entry point; here the executor is a relay that only
// reports what would happen.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"evo-v1/internal/config"
	"evo-v1/internal/logging"
	"evo-v1/internal/memory"
	"evo-v1/internal/state"
)

var (
	flagConfig  string
	flagDataDir string
)

func main() {
	root := &cobra.Command{
		Use:   "evo",
		Short: "EVO voice assistant decision core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runREPL(cfg)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override data directory")

	root.AddCommand(factsCmd(), notesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERR:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	return cfg, nil
}

func factsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facts",
		Short: "List stored fact keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := memory.Open(cfg.MemoryPath())
			if err != nil {
				return err
			}
			keys := store.ListFactKeys()
			if len(keys) == 0 {
				fmt.Println("(no facts stored)")
				return nil
			}
			for _, k := range keys {
				if f, ok := store.GetFact(k); ok {
					fmt.Printf("%s = %s (updated %s)\n", k, f.Value, f.UpdatedAt)
				}
			}
			return nil
		},
	}
}

func notesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Show recent notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := state.Open(cfg.StatePath())
			if err != nil {
				return err
			}
			defer db.Close()

			notes, err := db.RecentNotes(limit)
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Println("(no notes stored)")
				return nil
			}
			for _, n := range notes {
				fmt.Printf("[%s] %s\n", n.CreatedAt, firstLine(n.Text))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of notes to show")
	return cmd
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

func newLogger(cfg config.Config) (loggerHandle, error) {
	log, closer, err := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		File:    cfg.Logging.File,
		Console: true,
	})
	if err != nil {
		return loggerHandle{}, err
	}
	return loggerHandle{Log: log, Close: closer}, nil
}
