package prompt

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a business analyst writing for
// executives. Kept short so most of the token budget goes to the answer.
func SystemPrompt() string {
	return strings.TrimSpace(`
You are a senior business analyst. You write concise executive summaries
of data analysis findings. Plain business language, no bullet points,
no markdown, two to four sentences. Do not invent numbers that are not
present in the findings.`)
}

// SummaryPrompt lists the derived insight statements for one report.
func SummaryPrompt(title string, insights []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report: %s\n\nFindings:\n", title)
	for i, in := range insights {
		fmt.Fprintf(&b, "%d. %s\n", i+1, in)
	}
	b.WriteString("\nWrite the executive summary.")
	return b.String()
}
