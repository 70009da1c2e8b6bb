package logger

import "strings"

// MaskedLogin masks an account login for log output (e.g. "a*****").
func MaskedLogin(login string) string {
	if login == "" {
		return "[empty]"
	}
	if len(login) == 1 {
		return "*"
	}
	return string(login[0]) + strings.Repeat("*", len(login)-1)
}

// SanitizeQueryString reports whether a query string carries credential
// material and should be redacted from request logs.
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"login",
		"salt",
		"token",
		"secret",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
