package openrouter

import "fmt"

const debugSystemPrompt = `You are an expert Clarity smart contract auditor and debugger. Analyze the provided Clarity smart contract code and provide a comprehensive debugging report.

Focus on:
1. Security vulnerabilities and potential exploits
2. Logic errors and edge cases
3. Gas optimization opportunities
4. Best practices violations
5. Code quality and maintainability issues
6. Potential runtime errors
7. Access control issues
8. Input validation problems
9. State management concerns
10. Integration risks

Provide specific line references where possible and suggest concrete fixes. Format your response as a detailed debugging report with clear sections and actionable recommendations.`

const quickSystemPrompt = "You are a Clarity smart contract analyzer. Provide a quick security and quality analysis in 3-5 bullet points."

func debugUserPrompt(fileName, code string) string {
	return fmt.Sprintf("Please analyze this Clarity smart contract for bugs, vulnerabilities, and improvements:\n\n"+
		"File: %s\n\n```clarity\n%s\n```\n\n"+
		"Provide a comprehensive debugging analysis with specific issues found and recommended fixes.", fileName, code)
}

func quickUserPrompt(code string) string {
	return fmt.Sprintf("Quickly analyze this Clarity contract for major issues:\n\n```clarity\n%s\n```", code)
}
