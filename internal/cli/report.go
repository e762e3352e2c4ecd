package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoArchive = errors.New("report archive is not configured (set artifact.endpoint)")

func newReportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Read AI analysis reports",
	}

	var raw bool
	show := &cobra.Command{
		Use:   "show <file>",
		Short: "Render a report file of the active project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.resolveFile(args[0])
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), f.Content)
				return nil
			}
			return e.out.markdown(f.Content)
		},
	}
	show.Flags().BoolVar(&raw, "raw", false, "print Markdown source")

	fetch := &cobra.Command{
		Use:   "fetch <name>",
		Short: "Download an archived report by file name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.app.Reports == nil {
				return errNoArchive
			}
			content, err := e.app.Reports.Fetch(cmd.Context(), e.tenant, args[0])
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}
			return e.out.markdown(content)
		},
	}
	fetch.Flags().BoolVar(&raw, "raw", false, "print Markdown source")

	cmd.AddCommand(show, fetch)
	return cmd
}
