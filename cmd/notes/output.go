package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"example.com/ocean-notes/internal/notes"
	"example.com/ocean-notes/internal/store"
	"example.com/ocean-notes/internal/stringsx"
)

const shortIDLen = 8

var (
	pinColor   = color.New(color.FgYellow, color.Bold)
	dimColor   = color.New(color.Faint)
	infoColor  = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

func shortID(id string) string {
	return stringsx.Clip(id, shortIDLen)
}

func formatRow(n notes.Note, now time.Time) string {
	marker := " "
	title := n.Title
	if n.Pinned {
		marker = pinColor.Sprint("*")
		title = pinColor.Sprint(title)
	}
	return fmt.Sprintf("%s %-8s  %s  %s  %s",
		marker,
		shortID(n.ID),
		title,
		dimColor.Sprint(notes.FormatUpdatedAt(n.UpdatedAt, now)),
		stringsx.Snippet(n.Content),
	)
}

func printToast(cmd *cobra.Command, s *store.Store) {
	t, ok := s.Toast()
	if !ok {
		return
	}
	c := infoColor
	switch t.Kind {
	case notes.ToastWarn:
		c = warnColor
	case notes.ToastError:
		c = errorColor
	}
	fmt.Fprintln(cmd.OutOrStdout(), c.Sprint(t.Message))
}

type yamlNote struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	Content   string    `yaml:"content"`
	UpdatedAt time.Time `yaml:"updatedAt"`
	Pinned    bool      `yaml:"pinned"`
}

func toYAML(ns []notes.Note) []yamlNote {
	out := make([]yamlNote, 0, len(ns))
	for _, n := range ns {
		out = append(out, yamlNote{
			ID:        n.ID,
			Title:     n.Title,
			Content:   n.Content,
			UpdatedAt: time.UnixMilli(n.UpdatedAt).UTC(),
			Pinned:    n.Pinned,
		})
	}
	return out
}
