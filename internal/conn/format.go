package conn

import (
	"net/url"
	"strings"
)

// FormatURI serializes a target back to a connection string:
//
//	scheme://[user:pass@]host:port[,host:port...]/[database]
//
// The database is written only when includeDatabase is true and the target
// has one; the trailing '/' is always written. Userinfo is RFC 3986 escaped
// so Resolve decodes it back unchanged. Options are never written, so the
// output round-trips only with strings this function produced.
func FormatURI(t Target, scheme string, includeDatabase bool) string {
	var b strings.Builder

	b.WriteString(scheme)
	b.WriteString("://")

	if t.auth.set {
		b.WriteString(url.UserPassword(t.auth.username, t.auth.password).String())
		b.WriteByte('@')
	}

	b.WriteString(strings.Join(t.Hosts(), ","))

	b.WriteByte('/')
	if includeDatabase && t.hasDatabase {
		b.WriteString(escapeDatabase(t.database))
	}

	return b.String()
}

// escapeDatabase also escapes the option delimiters '&' and '=', which
// url.PathEscape leaves alone but the options stage would split on.
func escapeDatabase(db string) string {
	escaped := url.PathEscape(db)
	escaped = strings.ReplaceAll(escaped, "&", "%26")
	return strings.ReplaceAll(escaped, "=", "%3D")
}
