package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"example.com/ocean-notes/internal/app"
	"example.com/ocean-notes/internal/notes"
	"example.com/ocean-notes/internal/store"
)

func listCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, pinned first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.FromContext(cmd.Context())
			if err != nil {
				return err
			}

			s.SetQuery(query)
			items := s.FilteredNotes()
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching notes.")
				return nil
			}

			now := time.Now()
			for _, n := range items {
				fmt.Fprintln(cmd.OutOrStdout(), formatRow(n, now))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "only show notes whose title or content contains this text")
	return cmd
}

func newCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.FromContext(cmd.Context())
			if err != nil {
				return err
			}

			var t, c *string
			if cmd.Flags().Changed("title") {
				t = &title
			}
			if cmd.Flags().Changed("content") {
				c = &content
			}

			n := s.Create(t, c)
			printToast(cmd, s)
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", shortID(n.ID), n.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "note content")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.FromContext(cmd.Context())
			if err != nil {
				return err
			}
			n, err := findNote(s, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", n.ID)
			fmt.Fprintf(out, "Title:   %s\n", n.Title)
			fmt.Fprintf(out, "Updated: %s\n", notes.FormatUpdatedAt(n.UpdatedAt, time.Now()))
			fmt.Fprintf(out, "Pinned:  %t\n", n.Pinned)
			fmt.Fprintf(out, "\n%s\n", n.Content)
			return nil
		},
	}
}

func editCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Replace the title and/or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.FromContext(cmd.Context())
			if err != nil {
				return err
			}
			n, err := findNote(s, args[0])
			if err != nil {
				return err
			}

			var p notes.Patch
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("content") {
				p.Content = &content
			}
			if p.IsZero() {
				return errors.New("nothing to change: pass --title and/or --content")
			}

			s.Update(n.ID, p)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", shortID(n.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "new content")
	return cmd
}

func pinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin [id]",
		Short: "Pin or unpin a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.FromContext(cmd.Context())
			if err != nil {
				return err
			}
			n, err := findNote(s, args[0])
			if err != nil {
				return err
			}

			s.TogglePin(n.ID)
			if n.Pinned {
				fmt.Fprintf(cmd.OutOrStdout(), "Unpinned %s\n", shortID(n.ID))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s\n", shortID(n.ID))
			}
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.FromContext(cmd.Context())
			if err != nil {
				return err
			}
			n, err := findNote(s, args[0])
			if err != nil {
				return err
			}

			if !yes && !confirm(cmd, "Delete this note? This cannot be undone.") {
				fmt.Fprintln(cmd.OutOrStdout(), "Kept.")
				return nil
			}

			s.Delete(n.ID)
			printToast(cmd, s)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func exportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every note to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.FromContext(cmd.Context())
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s.Notes())
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(toYAML(s.Notes()))
			}
			return fmt.Errorf("unknown format %q (json or yaml)", format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	return cmd
}

func serveCmd(session func() *app.App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the notes API on localhost",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := session()
			if a == nil {
				return store.ErrNotInitialized
			}
			if addr == "" {
				addr = a.Config.HTTPAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           a.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			a.Log.Info("serving", zap.String("addr", addr))
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

// findNote resolves a unique id prefix.
func findNote(s *store.Store, prefix string) (notes.Note, error) {
	var found []notes.Note
	for _, n := range s.Notes() {
		if n.ID == prefix {
			return n, nil
		}
		if strings.HasPrefix(n.ID, prefix) {
			found = append(found, n)
		}
	}

	switch len(found) {
	case 0:
		return notes.Note{}, fmt.Errorf("note not found: %s", prefix)
	case 1:
		return found[0], nil
	}
	return notes.Note{}, fmt.Errorf("ambiguous id %s matches %d notes", prefix, len(found))
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
