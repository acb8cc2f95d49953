package prompt

import (
	"strings"

	"github.com/birmacher/ai-commit-generator/model"
)

const (
	diffInstruction = "Based on the actual code changes in the diff, provide one main commit message and 3 alternatives."
	textInstruction = "Provide one main commit message and 3 alternatives."
)

// GetCommitPrompt renders the per-request instruction. A non-blank diff takes
// precedence over the free-text description.
func GetCommitPrompt(req model.GenerationRequest) string {
	var b strings.Builder

	if req.HasDiff() {
		b.WriteString("Analyze this git diff and generate appropriate commit messages:\n\n")
		b.WriteString(GetDiffPrompt(req.GitDiff))
		b.WriteString("\n")
		if details := detailLines(
			labeled("Additional description", req.Changes),
			labeled("Preferred type", req.CommitType),
			labeled("Additional context", req.Context),
		); details != "" {
			b.WriteString(details + "\n")
		}
		b.WriteString(diffInstruction)
		return b.String()
	}

	b.WriteString("Generate commit messages for these changes:\n\n")
	b.WriteString("Changes: " + req.Changes + "\n")
	b.WriteString(detailLines(
		labeled("Preferred type", req.CommitType),
		labeled("Additional context", req.Context),
	))
	b.WriteString("\n" + textInstruction)
	return b.String()
}

// GetDiffPrompt fences the diff verbatim
func GetDiffPrompt(diff string) string {
	if !strings.HasSuffix(diff, "\n") {
		diff += "\n"
	}
	return "```diff\n" + diff + "```\n"
}

func labeled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

// detailLines joins the non-empty lines, each terminated by a newline
func detailLines(lines ...string) string {
	var b strings.Builder
	for _, line := range lines {
		if line != "" {
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
