// Package utils holds small helpers shared across modules.
package utils

import "strings"

// ParseCSV splits a comma-separated string and returns trimmed non-empty values.
// Returns nil for empty/whitespace-only input.
func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	for _, v := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// ParseSymbols is ParseCSV with every value upper-cased, for ticker lists.
func ParseSymbols(s string) []string {
	result := ParseCSV(s)
	for i, v := range result {
		result[i] = strings.ToUpper(v)
	}
	return result
}
