package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"example.com/ocean-notes/internal/app"
	"example.com/ocean-notes/internal/config"
	"example.com/ocean-notes/internal/logger"
	"example.com/ocean-notes/internal/store"
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// execute runs one command and always releases the session it opened, also
// when the command itself fails.
func execute(args []string, opts ...func(*cobra.Command)) error {
	rootCmd, closeSession := newRootCmd()
	rootCmd.SetArgs(args)
	for _, opt := range opts {
		opt(rootCmd)
	}

	err := rootCmd.Execute()
	if cerr := closeSession(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// newRootCmd returns the command tree and a func closing whatever session
// the pre-run hook opened.
func newRootCmd() (*cobra.Command, func() error) {
	var (
		dataDir string
		backend string
		session *app.App
	)

	rootCmd := &cobra.Command{
		Use:           "notes",
		Short:         "Local-first notes",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if backend != "" {
				cfg.Backend = backend
			}
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}

			a, err := app.Open(cmd.Context(), cfg, logger.NewFileOnly(cfg.LogPath()))
			if err != nil {
				return err
			}
			session = a
			cmd.SetContext(store.NewContext(cmd.Context(), a.Store))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "", "data directory (overrides NOTES_DIR)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: file, sqlite, postgres, memory")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(newCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(pinCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd(func() *app.App { return session }))

	closeSession := func() error {
		if session == nil {
			return nil
		}
		a := session
		session = nil
		err := a.Close()
		_ = a.Log.Sync()
		return err
	}
	return rootCmd, closeSession
}
