package conn

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/typica/internal/ir"
)

// Defaults applied to explicit fields left at their zero value.
const (
	DefaultHost = "localhost"
	DefaultPort = 8000
)

// Endpoint is one reachable host/port pair.
type Endpoint struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// String formats the endpoint as host:port, bracketing IPv6 literals.
func (e Endpoint) String() string {
	host := e.Host
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	return host + ":" + strconv.Itoa(e.Port)
}

// Credential is a username/password pair. Either both are set or neither;
// either side may be empty once set, as in redis://:secret@host.
type Credential struct {
	username string
	password string
	set      bool
}

// NewCredential returns a set credential.
func NewCredential(username, password string) Credential {
	return Credential{username: username, password: password, set: true}
}

// Username returns the username ("" when unset).
func (c Credential) Username() string { return c.username }

// Password returns the password ("" when unset).
func (c Credential) Password() string { return c.password }

// IsSet reports whether the credential carries a username/password pair.
func (c Credential) IsSet() bool { return c.set }

// Kind selects the Target variant.
type Kind int

const (
	KindSingle Kind = iota
	KindClustered
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindClustered:
		return "clustered"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Target is a resolved connection target: either Single (one endpoint) or
// Clustered (an ordered list of endpoints), plus credentials and an
// optional database. Targets are immutable; accessors return copies.
type Target struct {
	kind        Kind
	scheme      string
	endpoints   []Endpoint
	auth        Credential
	database    string
	hasDatabase bool
}

// NewSingle builds a Single target.
func NewSingle(ep Endpoint, auth Credential) Target {
	return Target{kind: KindSingle, endpoints: []Endpoint{ep}, auth: auth}
}

// NewClustered builds a Clustered target. The endpoint order is kept.
func NewClustered(eps []Endpoint, auth Credential) (Target, error) {
	if len(eps) == 0 {
		return Target{}, fmt.Errorf("clustered target needs at least one endpoint")
	}
	return Target{kind: KindClustered, endpoints: slices.Clone(eps), auth: auth}, nil
}

// WithDatabase returns a copy of t addressing database.
func (t Target) WithDatabase(database string) Target {
	t.endpoints = slices.Clone(t.endpoints)
	t.database = database
	t.hasDatabase = true
	return t
}

// WithScheme returns a copy of t that remembers scheme for URI().
func (t Target) WithScheme(scheme string) Target {
	t.endpoints = slices.Clone(t.endpoints)
	t.scheme = scheme
	return t
}

// Kind returns the variant.
func (t Target) Kind() Kind { return t.kind }

// Scheme returns the scheme the target was resolved from ("" for explicit fields).
func (t Target) Scheme() string { return t.scheme }

// Endpoint returns the first endpoint; for Single targets, the only one.
func (t Target) Endpoint() Endpoint {
	if len(t.endpoints) == 0 {
		return Endpoint{}
	}
	return t.endpoints[0]
}

// Endpoints returns a copy of all endpoints in order.
func (t Target) Endpoints() []Endpoint { return slices.Clone(t.endpoints) }

// Auth returns the credential.
func (t Target) Auth() Credential { return t.auth }

// Database returns the database name and whether one is set.
func (t Target) Database() (string, bool) { return t.database, t.hasDatabase }

// URI formats the target with the scheme it was resolved from.
func (t Target) URI(includeDatabase bool) string {
	return FormatURI(t, t.scheme, includeDatabase)
}

// Hosts returns host:port strings in endpoint order.
func (t Target) Hosts() []string {
	hosts := make([]string, len(t.endpoints))
	for i, ep := range t.endpoints {
		hosts[i] = ep.String()
	}
	return hosts
}

// Fingerprint identifies what the target addresses: scheme, endpoints,
// username and database. The password is not part of it, so rotating a
// secret keeps the fingerprint.
func (t Target) Fingerprint() (string, error) {
	endpoints := make([]any, len(t.endpoints))
	for i, ep := range t.endpoints {
		endpoints[i] = ep.String()
	}
	doc := map[string]any{
		"kind":      t.kind.String(),
		"scheme":    strings.ToLower(t.scheme),
		"endpoints": endpoints,
	}
	if t.auth.set {
		doc["username"] = t.auth.username
	}
	if t.hasDatabase {
		doc["database"] = t.database
	}
	return ir.Fingerprint(ir.DomainTarget, doc)
}

// RedactedPassword replaces passwords in JSON output.
const RedactedPassword = "****"

type targetJSON struct {
	Kind      string     `json:"kind"`
	Scheme    string     `json:"scheme,omitempty"`
	Endpoints []Endpoint `json:"endpoints"`
	Username  *string    `json:"username,omitempty"`
	Password  *string    `json:"password,omitempty"`
	Database  *string    `json:"database,omitempty"`
}

// MarshalJSON renders the target with its password redacted.
// Use FormatURI to obtain the secret-bearing connection string.
func (t Target) MarshalJSON() ([]byte, error) {
	out := targetJSON{
		Kind:      t.kind.String(),
		Scheme:    t.scheme,
		Endpoints: t.Endpoints(),
	}
	if t.auth.set {
		user := t.auth.username
		pass := RedactedPassword
		out.Username = &user
		out.Password = &pass
	}
	if t.hasDatabase {
		db := t.database
		out.Database = &db
	}
	return json.Marshal(out)
}

// Fields are explicitly supplied connection parameters. They are used as-is
// when no URI is given and act as fallbacks for parts a URI does not carry.
type Fields struct {
	Host     string     `yaml:"host"`
	Port     int        `yaml:"port"`
	Username string     `yaml:"username"`
	Password string     `yaml:"password"`
	Database string     `yaml:"database"`
	Clusters []Endpoint `yaml:"clusters"`
}

// target builds a Target from the fields alone.
func (f Fields) target() Target {
	var auth Credential
	if f.Username != "" {
		auth = NewCredential(f.Username, f.Password)
	}

	var t Target
	if len(f.Clusters) > 0 {
		t = Target{kind: KindClustered, endpoints: slices.Clone(f.Clusters), auth: auth}
	} else {
		ep := Endpoint{Host: f.Host, Port: f.Port}
		if ep.Host == "" {
			ep.Host = DefaultHost
		}
		if ep.Port == 0 {
			ep.Port = DefaultPort
		}
		t = NewSingle(ep, auth)
	}

	if f.Database != "" {
		t.database = f.Database
		t.hasDatabase = true
	}
	return t
}
