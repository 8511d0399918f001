package bizconfig

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	h2Re       = regexp.MustCompile(`^##\s+(.+)$`)
	numberedRe = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	scoreRowRe = regexp.MustCompile(`^\|\s*(.+?)\s*\|\s*(\d+)\s*\|$`)
	tableSepRe = regexp.MustCompile(`^\|[\s\-|]+\|$`)
)

// fieldValue extracts the value of a "- **label:** value" line. The label
// match is case-insensitive. Returns "" when the line is not that field or
// the value is still a template placeholder like "[Your business name]".
func fieldValue(line, label string) string {
	re := regexp.MustCompile(`(?i)^\s*-\s*\*\*` + regexp.QuoteMeta(label) + `:\*\*\s*(.+)$`)
	m := re.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	val := strings.TrimSpace(m[1])
	if strings.HasPrefix(val, "[") && strings.HasSuffix(val, "]") {
		return ""
	}
	return val
}

// isListFieldLabel reports whether the line is a field label with no value,
// introducing an indented sub-list.
func isListFieldLabel(line, label string) bool {
	re := regexp.MustCompile(`(?i)^\s*-\s*\*\*` + regexp.QuoteMeta(label) + `:\*\*\s*$`)
	return re.MatchString(line)
}

// setIfEmpty assigns the field's value to dst only when dst is still unset,
// so the first occurrence in the document wins.
func setIfEmpty(dst *string, line, label string) {
	if *dst != "" {
		return
	}
	if v := fieldValue(line, label); v != "" {
		*dst = v
	}
}

// Slugify normalizes a display name into the identifier form used in score
// tables and lead records: lowercased, spaces to dashes.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// mustAtoi converts a string the score row regexp already matched as
// digits, so conversion cannot fail.
func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func setIntField(dst *int, line, label string) (bool, error) {
	v := fieldValue(line, label)
	if v == "" {
		return false, nil
	}
	// Tolerate trailing units like "48 hours" or "90 days".
	if idx := strings.IndexByte(v, ' '); idx > 0 {
		v = v[:idx]
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false, fmt.Errorf("bizconfig: field %s: %w", label, err)
	}
	*dst = n
	return true, nil
}
