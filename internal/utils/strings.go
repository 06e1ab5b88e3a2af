package utils

import "strings"

// StringConcat builds a string from the given parts without fmt overhead.
func StringConcat(strs ...string) string {
	var sb strings.Builder

	for _, str := range strs {
		sb.WriteString(str)
	}

	return sb.String()
}
