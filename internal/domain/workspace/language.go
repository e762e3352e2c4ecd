package workspace

import "strings"

// LanguageFor infers the editor language from a file name suffix.
func LanguageFor(name string) Language {
	switch {
	case strings.HasSuffix(name, ".clar"):
		return LanguageClarity
	case strings.HasSuffix(name, ".md"):
		return LanguageMarkdown
	case strings.HasSuffix(name, ".js"), strings.HasSuffix(name, ".ts"):
		return LanguageTypeScript
	case strings.HasSuffix(name, ".json"):
		return LanguageJSON
	default:
		return LanguageText
	}
}

// PathFor returns the workspace path of a file name.
func PathFor(name string) string {
	return "/" + name
}

// isGeneratedReport reports whether name belongs to an AI report file.
// Creation of those files is not narrated in the terminal.
func isGeneratedReport(name string) bool {
	return strings.Contains(name, "ai_debug") || strings.Contains(name, "quick_analysis")
}
