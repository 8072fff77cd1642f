package common

import (
	"fmt"
	"regexp"
	"strings"
)

// QuoteIdentifier makes a name safe for interpolation into a SQL statement.
func QuoteIdentifier(name string) string {
	// Replace any existing quotes with double quotes to escape them
	name = strings.Replace(name, `"`, `""`, -1)
	// Wrap the entire name in quotes
	return fmt.Sprintf(`"%s"`, name)
}

// QuoteStringSlice single-quotes each element for use in an IN (...) list.
func QuoteStringSlice(slice []string) []string {
	quoted := make([]string, len(slice))
	for i, s := range slice {
		quoted[i] = fmt.Sprintf("'%s'", strings.ReplaceAll(s, "'", "''"))
	}
	return quoted
}

var (
	ddlPattern          = regexp.MustCompile(`(?i)^\s*(CREATE|ALTER|DROP|ATTACH)\b`)
	lineCommentPattern  = regexp.MustCompile(`^\s*--[^\n]*\n?`)
	blockCommentPattern = regexp.MustCompile(`(?s)^\s*/\*.*?\*/`)
	aliasInvalidChars   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// IsDDLStatement reports whether the statement changes the catalog and so
// should trigger a schema refresh after it succeeds. Leading whitespace and
// SQL comments are skipped before the keyword check.
func IsDDLStatement(query string) bool {
	return ddlPattern.MatchString(stripLeadingComments(query))
}

func stripLeadingComments(query string) string {
	for {
		if m := lineCommentPattern.FindString(query); m != "" {
			query = query[len(m):]
			continue
		}
		if m := blockCommentPattern.FindString(query); m != "" {
			query = query[len(m):]
			continue
		}
		return query
	}
}

// SanitizeAlias derives a SQL-safe attach alias from a dataset file name.
// The extension is dropped, invalid characters become underscores, and a
// leading digit gets a prefix so the alias never needs quoting.
func SanitizeAlias(filename string) string {
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	alias := aliasInvalidChars.ReplaceAllString(base, "_")
	if alias == "" {
		return "dataset"
	}
	if alias[0] >= '0' && alias[0] <= '9' {
		alias = "t_" + alias
	}
	return alias
}
