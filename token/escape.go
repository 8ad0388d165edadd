package token

import "strconv"

// decodeEscapes converts C-style escape sequences inside a string or char
// literal's body into their raw byte values. Unknown escapes pass the
// backslash and following character through unchanged.
//
// Supported: \n \t \r \0 \\ \" \' plus \xHH hex escapes and \NNN octal
// escapes (1-3 octal digits).
func decodeEscapes(s string) []byte {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			consumed, b, ok := parseEscapeAt(s, i)
			if ok {
				result = append(result, b)
				i += consumed
				continue
			}
			result = append(result, s[i], s[i+1])
			i += 2
			continue
		}
		result = append(result, s[i])
		i++
	}
	return result
}

func parseEscapeAt(s string, i int) (int, byte, bool) {
	switch s[i+1] {
	case 'n':
		return 2, '\n', true
	case 't':
		return 2, '\t', true
	case 'r':
		return 2, '\r', true
	case '\\':
		return 2, '\\', true
	case '"':
		return 2, '"', true
	case '\'':
		return 2, '\'', true
	case 'x':
		if i+3 >= len(s) {
			return 0, 0, false
		}
		val, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
		if err != nil {
			return 0, 0, false
		}
		return 4, byte(val), true
	default:
		if s[i+1] >= '0' && s[i+1] <= '7' {
			j := i + 1
			end := j + 1
			for end < len(s) && end < j+3 && s[end] >= '0' && s[end] <= '7' {
				end++
			}
			val, err := strconv.ParseUint(s[j:end], 8, 16)
			if err != nil || val > 0xFF {
				return 0, 0, false
			}
			return 1 + (end - j), byte(val), true
		}
		return 0, 0, false
	}
}
