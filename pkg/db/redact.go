package db

import (
	"net/url"
	"strings"
)

// Redact replaces every occurrence of secret in s with RedactedPassword,
// including the URL-escaped forms a driver may echo back from a DSN.
func Redact(s, secret string) string {
	if secret == "" || s == "" {
		return s
	}
	replacements := []string{secret, RedactedPassword}
	seen := map[string]bool{secret: true}
	for _, escaped := range escapedForms(secret) {
		if !seen[escaped] {
			seen[escaped] = true
			replacements = append(replacements, escaped, RedactedPassword)
		}
	}
	return strings.NewReplacer(replacements...).Replace(s)
}

// escapedForms lists the encodings of secret found in query strings, paths
// and the userinfo part of a URL built with url.UserPassword.
func escapedForms(secret string) []string {
	userinfo := url.UserPassword("", secret).String()
	return []string{
		url.QueryEscape(secret),
		url.PathEscape(secret),
		strings.TrimPrefix(userinfo, ":"),
	}
}

// Message returns the driver-level description of err with secret redacted.
// Sentinel prefixes added by this package are stripped so the text reads as
// the driver reported it.
func Message(err error, secret string) string {
	if err == nil {
		return ""
	}
	return Redact(causeText(err), secret)
}

// causeText drops the sentinel line errors.Join puts in front of the cause.
func causeText(err error) string {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err.Error()
	}
	var parts []string
	for _, e := range joined.Unwrap() {
		if isSentinel(e) {
			continue
		}
		parts = append(parts, e.Error())
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}

func isSentinel(err error) bool {
	switch err {
	case ErrInvalidConfig, ErrMissingDriver, ErrConnectionFailed, ErrAuthFailed, ErrQueryFailed, ErrUnexpectedResult:
		return true
	}
	return false
}
