package main

import (
	"fmt"
	"strings"
)

func truncateList(values []string, limit int) []string {
	if limit <= 0 || len(values) <= limit {
		return values
	}
	out := append([]string(nil), values[:limit]...)
	return append(out, fmt.Sprintf("(+%d more)", len(values)-limit))
}

func joinList(values []string) string {
	return strings.Join(truncateList(values, 3), ", ")
}
