package utils

// ToStringSlice returns the string elements of v, which may be a []any, a
// []string or a single string. Other values yield nil.
func ToStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	case string:
		return []string{s}
	case []any:
		stringSlice := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				stringSlice = append(stringSlice, str)
			}
		}
		return stringSlice
	}
	return nil
}
