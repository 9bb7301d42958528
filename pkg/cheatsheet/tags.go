package cheatsheet

import "strings"

// NormalizeTag обрезает пробелы вокруг имени тега.
func NormalizeTag(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeTags обрезает имена, выбрасывает пустые и повторы, сохраняя порядок.
func NormalizeTags(names []string) []string {
	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeTag(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		result = append(result, n)
	}
	return result
}
