package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/stackslab/ide/internal/domain/workspace"
)

var errNoActiveProject = errors.New("no active project; run: ide project use <project>")

func itoa(n int) string { return strconv.Itoa(n) }

// contentSource reads file content from --content, --from or stdin ("-").
type contentSource struct {
	content string
	from    string
}

func (c *contentSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.content, "content", "", "file content")
	cmd.Flags().StringVar(&c.from, "from", "", "read content from a path, or - for stdin")
}

func (c *contentSource) read(cmd *cobra.Command) (string, bool, error) {
	switch {
	case c.from == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), true, nil
	case c.from != "":
		data, err := os.ReadFile(c.from)
		if err != nil {
			return "", false, err
		}
		return string(data), true, nil
	case cmd.Flags().Changed("content"):
		return c.content, true, nil
	}
	return "", false, nil
}

func newFileCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "file",
		Aliases: []string{"files", "f"},
		Short:   "Manage files and tabs of the active project",
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List files of the active project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := e.store.Snapshot()
			p, ok := e.store.Project(st.ActiveProject)
			if !ok {
				return errNoActiveProject
			}
			open := make(map[string]bool, len(st.OpenFiles))
			for _, id := range st.OpenFiles {
				open[id] = true
			}
			e.out.title(p.Name)
			rows := make([][]string, 0, len(p.Files))
			for _, f := range p.Files {
				tab := ""
				switch {
				case f.ID == st.ActiveFile:
					tab = "active"
				case open[f.ID]:
					tab = "open"
				}
				rows = append(rows, []string{f.Name, string(f.Language), tab, mark(f.IsModified), itoa(len(f.Content)), f.ID})
			}
			e.out.table([]string{"NAME", "LANGUAGE", "TAB", "MODIFIED", "SIZE", "ID"}, rows)
			return nil
		},
	}

	var createSrc contentSource
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a file in the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, _, err := createSrc.read(cmd)
			if err != nil {
				return err
			}
			f, err := e.store.CreateFile(cmd.Context(), args[0], content)
			if err != nil {
				return err
			}
			if f == nil {
				return errNoActiveProject
			}
			e.out.linef("Created %s (%s, %s)", f.Name, f.Language, f.ID)
			return nil
		},
	}
	createSrc.register(create)

	var editSrc contentSource
	edit := &cobra.Command{
		Use:   "edit <file>",
		Short: "Replace the buffer of a file; the change is unsaved until 'file save'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.resolveFile(args[0])
			if err != nil {
				return err
			}
			content, ok, err := editSrc.read(cmd)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("nothing to write; pass --content or --from")
			}
			if err := e.store.UpdateFileContent(cmd.Context(), f.ID, content); err != nil {
				return err
			}
			e.out.linef("Updated %s (unsaved)", f.Name)
			return nil
		},
	}
	editSrc.register(edit)

	cat := &cobra.Command{
		Use:   "cat <file>",
		Short: "Print the buffer of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.resolveFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), f.Content)
			return nil
		},
	}

	cmd.AddCommand(ls, create, edit, cat,
		fileAction(e, "open", "Open a file in a tab and focus it", "Opened %s", (*workspace.Store).OpenFile),
		fileAction(e, "close", "Close a file's tab", "Closed %s", (*workspace.Store).CloseFile),
		fileAction(e, "save", "Mark a file as saved", "Saved %s", (*workspace.Store).SaveFile),
		fileAction(e, "delete", "Delete a file", "Deleted %s", (*workspace.Store).DeleteFile),
	)
	return cmd
}

func fileAction(e *env, use, short, done string, fn func(*workspace.Store, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.resolveFile(args[0])
			if err != nil {
				return err
			}
			if err := fn(e.store, cmd.Context(), f.ID); err != nil {
				return err
			}
			e.out.linef(done, f.Name)
			return nil
		},
	}
}
