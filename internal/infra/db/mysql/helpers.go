package mysql

import "strings"

// stringOrDash keeps the non-nullable user_id column populated even if a
// caller slips through with blank input.
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
