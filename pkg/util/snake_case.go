package util

// SnakeCase converts a CamelCase identifier into snake_case, the form the
// database columns use. Runs of capitals stay together: "DryRun" becomes
// "dry_run" and "HTTPServer" becomes "http_server".
func SnakeCase(s string) string {
	out := make([]byte, 0, len(s)+4)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if isUpper(c) {
			if i > 0 && (!isUpper(s[i-1]) || (i+1 < len(s) && !isUpper(s[i+1]))) {
				out = append(out, '_')
			}
			out = append(out, c-'A'+'a')
			continue
		}

		out = append(out, c)
	}

	return string(out)
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
