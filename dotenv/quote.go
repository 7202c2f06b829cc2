package dotenv

import (
	"strings"
	"unicode/utf8"
)

// IsKey reports whether key can be the key of an assignment.
func IsKey(key string) bool {
	if key == "" {
		return false
	}

	for i := range len(key) {
		if !isKeyByte(key[i]) {
			return false
		}
	}

	return true
}

// Quote returns val as the value of an assignment that [ParseString] reads
// back as val.
//
// Each '$' is escaped. Values with line breaks are double-quoted with each
// break written as `\n`; a carriage return is read back as a newline.
// Values with surrounding space or a leading quote are single-quoted.
// Anything else is left bare.
func Quote(val string) string {
	val = strings.ReplaceAll(val, "$", `\$`)

	if strings.ContainsAny(val, "\r\n") {
		val = strings.NewReplacer("\r\n", `\n`, "\r", `\n`, "\n", `\n`).
			Replace(val)

		return `"` + val + `"`
	}

	if val == "" {
		return val
	}

	first, _ := utf8.DecodeRuneInString(val)
	last, _ := utf8.DecodeLastRuneInString(val)

	if isSpace(first) || isSpace(last) || first == '"' || first == '\'' {
		return "'" + val + "'"
	}

	return val
}

// Marshal renders the pairs of v whose keys satisfy [IsKey] as assignments,
// one per line in insertion order. It returns the keys it skipped.
func Marshal(v *Vars) (text string, skipped []string) {
	var b strings.Builder

	for key, val := range v.All() {
		if !IsKey(key) {
			skipped = append(skipped, key)

			continue
		}

		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(Quote(val))
		b.WriteByte('\n')
	}

	return b.String(), skipped
}
