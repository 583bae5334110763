package git

import "strings"

// Conventional Commit types used by recall.
const (
	CommitTypeFeat  = "feat"
	CommitTypeFix   = "fix"
	CommitTypeChore = "chore"
)

// Footer marks commits written by recall.
const Footer = "Recorded-by: recall"

// FormatCommitMessage builds a Conventional Commit message:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Recorded-by: recall
//
// An empty type defaults to chore and an empty body is omitted.
func FormatCommitMessage(ctype, scope, subject, body string) string {
	if ctype == "" {
		ctype = CommitTypeChore
	}
	header := ctype
	if scope != "" {
		header += "(" + scope + ")"
	}
	header += ": " + strings.TrimSpace(subject)

	parts := []string{header}
	if body = strings.TrimSpace(body); body != "" {
		parts = append(parts, body)
	}
	parts = append(parts, Footer)
	return strings.Join(parts, "\n\n")
}
