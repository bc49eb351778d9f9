package utils

import (
	"regexp"
)

// #nosec G101 -- False positive - no hardcoded credentials.
const CredentialsInUrlRegexp = `((?:http|https|git|ssh)://)[^/@\s]+@`

var credentialsInUrl = regexp.MustCompile(CredentialsInUrlRegexp)

// MaskCredentials hides the user-info part of a repository URL, so it can be logged.
func MaskCredentials(url string) string {
	return credentialsInUrl.ReplaceAllString(url, "${1}***@")
}
