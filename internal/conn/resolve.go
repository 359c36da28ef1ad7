package conn

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// Resolve turns a connection string and/or explicit fields into a Target.
//
// An empty uri returns the fields as-is. Otherwise the string is tokenized
// in fixed stages, each of which fails with a *MalformedError:
//
//	scheme://[user:pass@]host:port[,host:port...][/database][?options]
//
//  1. scheme: the token before the first ':' followed by "//" or "/"
//  2. split: metadata before the first '/', options after it ("/?" too)
//  3. options: '?'/'&' separated tokens; authSource=<db> and bare tokens
//     set the database, the last one wins; other key=value pairs and an
//     empty authSource are dropped; a token that is not a valid escape
//     sequence is taken literally
//  4. credentials: "user:pass" before the last '@' (percent-decoded);
//     either side may be empty
//  5. hosts: comma-separated host:port list; more than one selects Clustered
//  6. port: decimal, 1..65535
//
// Parts found in the URI override fields; fields fill in what the URI lacks
// (credentials, database). On error the zero Target is returned.
func Resolve(uri string, fields Fields) (Target, error) {
	if uri == "" {
		t := fields.target()
		logResolved(t, "fields")
		return t, nil
	}

	p, err := parse(uri)
	if err != nil {
		slog.Debug("connection string rejected", "error", err)
		return Target{}, err
	}

	t := p.reconcile(fields)
	logResolved(t, "uri")
	return t, nil
}

func logResolved(t Target, source string) {
	db, _ := t.Database()
	slog.Debug("connection target resolved",
		"source", source,
		"scheme", t.scheme,
		"kind", t.kind.String(),
		"endpoints", len(t.endpoints),
		"database", db,
		"auth", t.auth.set)
}

// parsed holds what the tokenizer extracted before reconciliation.
type parsed struct {
	scheme      string
	endpoints   []Endpoint
	clustered   bool
	auth        Credential
	database    string
	hasDatabase bool
}

func parse(uri string) (*parsed, error) {
	p := &parsed{}

	rest, err := p.parseScheme(uri)
	if err != nil {
		return nil, err
	}

	metadata, options, hasOptions := splitSegments(rest)
	if metadata == "" {
		return nil, malformed(StageSplit, "", "empty host segment")
	}

	if hasOptions {
		p.parseOptions(options)
	}

	if err := p.parseMetadata(metadata); err != nil {
		return nil, err
	}
	return p, nil
}

// parseScheme strips "scheme://" or "scheme:/" and returns the remainder.
func (p *parsed) parseScheme(uri string) (string, error) {
	i := strings.IndexByte(uri, ':')
	if i < 0 {
		return "", malformed(StageScheme, uri, "missing scheme")
	}
	scheme := uri[:i]
	if !validScheme(scheme) {
		return "", malformed(StageScheme, scheme, "invalid scheme")
	}

	rest := uri[i+1:]
	switch {
	case strings.HasPrefix(rest, "//"):
		rest = rest[2:]
	case strings.HasPrefix(rest, "/"):
		rest = rest[1:]
	default:
		return "", malformed(StageScheme, scheme+":", "expected // or / after scheme")
	}

	p.scheme = scheme
	return rest, nil
}

// validScheme follows RFC 3986: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// splitSegments cuts at the first '/' (a following '?' belongs to the separator).
func splitSegments(rest string) (metadata, options string, hasOptions bool) {
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return rest, "", false
	}
	options = strings.TrimPrefix(rest[i+1:], "?")
	return rest[:i], options, true
}

func (p *parsed) parseOptions(options string) {
	tokens := strings.FieldsFunc(options, func(r rune) bool {
		return r == '?' || r == '&'
	})

	for _, tok := range tokens {
		key, value, isPair := strings.Cut(tok, "=")
		if isPair {
			if !strings.EqualFold(key, "authSource") {
				continue
			}
			if value == "" {
				continue
			}
		} else {
			value = tok
		}

		db, err := url.PathUnescape(value)
		if err != nil {
			db = value
		}
		// Last qualifying token wins, see DESIGN.md.
		p.database = db
		p.hasDatabase = true
	}
}

func (p *parsed) parseMetadata(metadata string) error {
	hosts := metadata
	if at := strings.LastIndexByte(metadata, '@'); at >= 0 {
		if err := p.parseCredentials(metadata[:at]); err != nil {
			return err
		}
		hosts = metadata[at+1:]
	}

	if hosts == "" {
		return malformed(StageHost, "", "missing host")
	}

	parts := strings.Split(hosts, ",")
	p.endpoints = make([]Endpoint, 0, len(parts))
	for _, part := range parts {
		ep, err := parseEndpoint(part)
		if err != nil {
			return err
		}
		p.endpoints = append(p.endpoints, ep)
	}
	p.clustered = len(parts) > 1
	return nil
}

// parseCredentials never puts the password into an error.
func (p *parsed) parseCredentials(cred string) error {
	rawUser, rawPass, ok := strings.Cut(cred, ":")
	if !ok {
		return malformed(StageCredentials, "", "expected user:pass before @")
	}
	user, err := url.PathUnescape(rawUser)
	if err != nil {
		return &MalformedError{Stage: StageCredentials, Fragment: rawUser, Reason: "invalid escape in username", Err: err}
	}
	pass, err := url.PathUnescape(rawPass)
	if err != nil {
		return malformed(StageCredentials, user, "invalid escape in password")
	}

	p.auth = NewCredential(user, pass)
	return nil
}

func parseEndpoint(s string) (Endpoint, error) {
	if s == "" {
		return Endpoint{}, malformed(StageHost, s, "empty endpoint in host list")
	}

	var host, port string
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return Endpoint{}, malformed(StageHost, s, "unterminated IPv6 literal")
		}
		host = s[1:end]
		rest := s[end+1:]
		if !strings.HasPrefix(rest, ":") {
			return Endpoint{}, malformed(StageHost, s, "expected host:port")
		}
		port = rest[1:]
	} else {
		i := strings.LastIndexByte(s, ':')
		if i < 0 {
			return Endpoint{}, malformed(StageHost, s, "expected host:port")
		}
		host, port = s[:i], s[i+1:]
		if strings.Contains(host, ":") {
			return Endpoint{}, malformed(StageHost, s, "IPv6 hosts must be bracketed")
		}
	}

	if host == "" {
		return Endpoint{}, malformed(StageHost, s, "empty host")
	}

	n, err := parsePort(port)
	if err != nil {
		return Endpoint{}, &MalformedError{Stage: StagePort, Fragment: s, Reason: "port is not a number", Err: err}
	}
	if n < 1 || n > 65535 {
		return Endpoint{}, malformed(StagePort, s, "port out of range")
	}

	return Endpoint{Host: host, Port: n}, nil
}

// parsePort accepts decimal digits only; strconv.Atoi alone would take "+80".
func parsePort(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, &strconv.NumError{Func: "parsePort", Num: s, Err: strconv.ErrSyntax}
		}
	}
	return strconv.Atoi(s)
}

func (p *parsed) reconcile(fields Fields) Target {
	t := Target{
		kind:      KindSingle,
		scheme:    p.scheme,
		endpoints: p.endpoints,
		auth:      p.auth,
	}
	if p.clustered {
		t.kind = KindClustered
	}

	if !t.auth.set && fields.Username != "" {
		t.auth = NewCredential(fields.Username, fields.Password)
	}

	switch {
	case p.hasDatabase:
		t.database, t.hasDatabase = p.database, true
	case fields.Database != "":
		t.database, t.hasDatabase = fields.Database, true
	}
	return t
}
