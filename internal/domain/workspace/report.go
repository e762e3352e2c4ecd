package workspace

import (
	"fmt"
	"strings"
	"time"
)

const reportTimeLayout = "2006-01-02 15:04:05 MST"

// DebugReport renders the Markdown report of a full AI debugging run.
func DebugReport(file File, model, analysis string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# AI Debug Report for %s\n\n", file.Name)
	fmt.Fprintf(&b, "**Generated on:** %s  \n", at.Format(reportTimeLayout))
	fmt.Fprintf(&b, "**Model Used:** %s  \n", model)
	fmt.Fprintf(&b, "**File Size:** %d characters  \n\n", len(file.Content))
	writeReportBody(&b, "## Analysis Results", analysis, file.Content)
	b.WriteString("*This report was generated by StacksLab IDE using OpenRouter.ai*")
	return b.String()
}

// QuickReport renders the Markdown report of a quick analysis.
func QuickReport(file File, model, analysis string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Quick AI Analysis for %s\n\n", file.Name)
	fmt.Fprintf(&b, "**Generated on:** %s  \n", at.Format(reportTimeLayout))
	fmt.Fprintf(&b, "**Analysis Type:** Quick Analysis (%s)  \n", model)
	fmt.Fprintf(&b, "**File Size:** %d characters  \n\n", len(file.Content))
	writeReportBody(&b, "## Quick Analysis Results", analysis, file.Content)
	b.WriteString("*This quick analysis was generated by StacksLab IDE using OpenRouter.ai*")
	return b.String()
}

func writeReportBody(b *strings.Builder, heading, analysis, code string) {
	b.WriteString("---\n\n")
	b.WriteString(heading + "\n\n")
	b.WriteString(analysis + "\n\n")
	b.WriteString("---\n\n")
	b.WriteString("## Original Contract Code\n\n")
	b.WriteString("```clarity\n" + code + "\n```\n\n")
	b.WriteString("---\n\n")
}
