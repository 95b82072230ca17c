package models

import "strings"

// Pagination describes list response metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NormalizeClass canonicalises a class tag for comparison and storage.
func NormalizeClass(class string) string {
	return strings.ToUpper(strings.TrimSpace(class))
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
