package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/model"
	"github.com/Veraticus/spendmatch/internal/statement"
)

func (a *app) noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Record and list spending notes",
		Long: `Notes are short memos written when you pay for something ("coffee with
Anna", "gift for mom"). Each note is later paired with the expense closest
in time.`,
	}

	cmd.AddCommand(a.noteAddCmd())
	cmd.AddCommand(a.noteListCmd())

	return cmd
}

func (a *app) noteAddCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Record a note",
		Long: `Record a note now, or at the time given with --at. Without text
arguments the note is read from stdin.`,
		Example: `  spendmatch note add "обед с коллегами"
  spendmatch note add --at "15.01.2024 13:05" бизнес-ланч`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				line, err := cli.NewLineReader(a.in).ReadLine(ctx)
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				text = strings.TrimSpace(line)
			}
			if text == "" {
				return common.NewUserError("A note needs some text", nil)
			}

			when := time.Now()
			if at != "" {
				parsed, err := statement.ParseDate(at, time.Local)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("Could not understand the time %q", at), err)
				}
				when = parsed
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			note := model.NewNote(text, when)
			if err := store.AddNote(ctx, note); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(
				fmt.Sprintf("Note saved for %s", formatTime(note.Timestamp))))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "when the money was spent (default: now)")

	return cmd
}

func (a *app) noteListCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, err := parseDateFlag(from, false)
			if err != nil {
				return err
			}
			end, err := parseDateFlag(to, true)
			if err != nil {
				return err
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var notes []model.Note
			if start != nil && end != nil {
				notes, err = store.NotesBetween(ctx, *start, *end)
			} else {
				notes, err = store.GetNotes(ctx)
			}
			if err != nil {
				return common.NewUserError("Could not load notes", err)
			}

			rows := make([][]string, 0, len(notes))
			for _, note := range notes {
				if start != nil && note.Timestamp.Before(*start) {
					continue
				}
				if end != nil && note.Timestamp.After(*end) {
					continue
				}
				rows = append(rows, []string{formatTime(note.Timestamp), note.Text})
			}

			if len(rows) == 0 {
				_, _ = fmt.Fprintln(a.out, cli.FormatInfo("No notes found. Use 'spendmatch note add' to record one."))
				return nil
			}

			_, err = fmt.Fprintln(a.out, cli.RenderTable([]string{"When", "Note"}, rows))
			return err
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "only notes at or after this date")
	cmd.Flags().StringVar(&to, "to", "", "only notes up to this date (inclusive)")

	return cmd
}
