package util

import "strings"

// AnonymizeEmail masks the local part of an email for display and storage:
// first three + "***" + last three characters when the local part is longer
// than six, otherwise first character + "***". It is a privacy convention, not
// a cryptographic transform. A one-character local part is kept in full.
func AnonymizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return maskLocal(email)
	}
	return maskLocal(email[:at]) + "@" + email[at+1:]
}

func maskLocal(local string) string {
	runes := []rune(local)
	if len(runes) > 6 {
		return string(runes[:3]) + "***" + string(runes[len(runes)-3:])
	}
	if len(runes) == 0 {
		return "***"
	}
	return string(runes[:1]) + "***"
}
