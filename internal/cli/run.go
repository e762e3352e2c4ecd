package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackslab/ide/internal/domain/workspace"
)

func newCompileCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a Clarity contract and stream the terminal output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.resolveFile(args[0])
			if err != nil {
				return err
			}
			stop := e.follow()
			res, err := e.store.CompileContract(cmd.Context(), f.ID)
			stop()
			if err != nil {
				return err
			}
			if res != nil && !res.Success {
				return fmt.Errorf("compilation failed with %d error(s)", len(res.Errors))
			}
			return nil
		},
	}
}

func newDebugCmd(e *env) *cobra.Command {
	var (
		quick  bool
		apiKey string
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "debug <file>",
		Short: "Analyze a contract with AI and open the report",
		Long: `debug sends the contract to OpenRouter and stores the Markdown report as a
new file in the active project. The key comes from --api-key, then the key
saved with 'ide key set', then the configured OPENROUTER_API_KEY.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := e.resolveFile(args[0])
			if err != nil {
				return err
			}
			run := e.store.DebugWithAI
			if quick {
				run = e.store.QuickAnalyzeWithAI
			}
			stop := e.follow()
			report, err := run(cmd.Context(), f.ID, apiKey)
			stop()
			if err != nil {
				return err
			}
			if report == nil {
				return nil
			}
			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), report.Text)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return e.out.markdown(report.Text)
		},
	}
	cmd.Flags().BoolVar(&quick, "quick", false, "short analysis on the low-cost model")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenRouter API key for this call only")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the analysis without Markdown rendering")
	return cmd
}

func newTerminalCmd(e *env) *cobra.Command {
	var (
		clearBuf bool
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "terminal",
		Short: "Show the terminal buffer, oldest line first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearBuf {
				return e.store.ClearTerminal(cmd.Context())
			}
			entries := e.store.Terminal()
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			for i := len(entries) - 1; i >= 0; i-- {
				e.out.entry(entries[i])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearBuf, "clear", false, "clear the terminal buffer")
	cmd.Flags().IntVarP(&limit, "limit", "n", workspace.MaxTerminalEntries, "number of most recent lines")
	return cmd
}
