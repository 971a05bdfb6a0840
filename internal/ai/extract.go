package ai

import (
	"regexp"
	"strings"
)

// ExtractSQL pulls a SQL statement out of model output using 4 strategies
// in order:
//  1. ```sql ... ``` code block (preferred)
//  2. ``` ... ``` generic code block whose content starts with SELECT/WITH
//  3. the whole reply when it is already a bare SELECT/WITH statement
//  4. SELECT ... FROM ... span inside prose as last resort
//
// Trailing semicolons are stripped; the validator rejects any that survive
// mid-statement.
func ExtractSQL(text string) string {
	// Strategy 1: ```sql block
	lower := strings.ToLower(text)
	if idx := strings.Index(lower, "```sql"); idx != -1 {
		body := text[idx+len("```sql"):]
		if len(body) > 0 && body[0] == '\n' {
			body = body[1:]
		}
		if end := strings.Index(body, "```"); end != -1 {
			if sql := cleanSQL(body[:end]); sql != "" {
				return sql
			}
		}
	}

	// Strategy 2: any ``` block starting with SELECT or WITH
	parts := strings.Split(text, "```")
	for i := 1; i < len(parts); i += 2 {
		candidate := strings.TrimSpace(parts[i])
		if nl := strings.Index(candidate, "\n"); nl != -1 {
			firstLine := strings.ToUpper(strings.TrimSpace(candidate[:nl]))
			if !strings.Contains(firstLine, "SELECT") && !strings.Contains(firstLine, "WITH") {
				candidate = strings.TrimSpace(candidate[nl:])
			}
		}
		up := strings.ToUpper(candidate)
		if strings.HasPrefix(up, "SELECT") || strings.HasPrefix(up, "WITH") {
			return cleanSQL(candidate)
		}
	}

	// Strategy 3: the whole reply is a bare statement
	if trimmed := cleanSQL(text); trimmed != "" {
		up := strings.ToUpper(trimmed)
		if strings.HasPrefix(up, "SELECT") || strings.HasPrefix(up, "WITH") {
			return trimmed
		}
	}

	// Strategy 4: SELECT span inside prose
	if m := reSelectSpan.FindString(text); m != "" {
		return cleanSQL(m)
	}
	return ""
}

var reSelectSpan = regexp.MustCompile(`(?is)\bSELECT\s+.+?\bFROM\b\s+.+?(?:;|\z)`)

func cleanSQL(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
}
