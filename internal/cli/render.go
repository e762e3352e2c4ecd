package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/stackslab/ide/internal/domain/workspace"
)

const markdownWordWrap = 100

type printer struct {
	w     io.Writer
	color bool

	types map[workspace.OutputType]lipgloss.Style
	faint lipgloss.Style
	bold  lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle()
	return &printer{
		w:     w,
		color: isTerminal(w),
		types: map[workspace.OutputType]lipgloss.Style{
			workspace.OutputInfo:    base.Foreground(lipgloss.Color("12")),
			workspace.OutputWarning: base.Foreground(lipgloss.Color("11")),
			workspace.OutputError:   base.Foreground(lipgloss.Color("9")).Bold(true),
			workspace.OutputSuccess: base.Foreground(lipgloss.Color("10")),
		},
		faint: base.Faint(true),
		bold:  base.Bold(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) linef(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) title(text string) {
	fmt.Fprintln(p.w, p.style(p.bold, text))
}

// entry prints one terminal line.
func (p *printer) entry(e workspace.TerminalEntry) {
	ts := p.style(p.faint, e.Timestamp.Local().Format("15:04:05"))
	fmt.Fprintf(p.w, "%s %s\n", ts, p.style(p.types[e.Type], e.Message))
}

func (p *printer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if p.color {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			return s
		})
	}
	fmt.Fprintln(p.w, t.String())
}

// markdown renders Markdown for the terminal; piped output gets the
// plain style.
func (p *printer) markdown(text string) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(markdownWordWrap)}
	if p.color {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(text)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	fmt.Fprint(p.w, out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Fprintln(p.w)
	}
	return nil
}

func mark(b bool) string {
	if b {
		return "*"
	}
	return ""
}
