package cli

import (
	"github.com/spf13/cobra"
)

func newProjectCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Manage projects",
	}

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.store.CreateProject(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			e.out.linef("Created project %s (%s)", p.Name, p.ID)
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "project description")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects := e.store.ListProjects()
			if len(projects) == 0 {
				e.out.linef("No projects. Create one with: ide project create <name>")
				return nil
			}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{mark(p.Active), p.Name, p.ID, itoa(p.FileCount), p.Description})
			}
			e.out.table([]string{"", "NAME", "ID", "FILES", "DESCRIPTION"}, rows)
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <project>",
		Short: "Switch the active project (closes all tabs)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.resolveProject(args[0])
			if err != nil {
				return err
			}
			if err := e.store.SetActiveProject(cmd.Context(), p.ID); err != nil {
				return err
			}
			e.out.linef("Active project: %s", p.Name)
			return nil
		},
	}

	del := &cobra.Command{
		Use:     "delete <project>",
		Aliases: []string{"rm"},
		Short:   "Delete a project and its files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.resolveProject(args[0])
			if err != nil {
				return err
			}
			if err := e.store.DeleteProject(cmd.Context(), p.ID); err != nil {
				return err
			}
			e.out.linef("Deleted project %s", p.Name)
			return nil
		},
	}

	cmd.AddCommand(create, list, use, del)
	return cmd
}
