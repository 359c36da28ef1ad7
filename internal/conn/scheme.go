package conn

import (
	"fmt"
	"slices"
	"strings"
)

// Family groups schemes by the kind of backend they address.
type Family string

const (
	FamilySQL           Family = "sql"
	FamilyDocument      Family = "document"
	FamilyCache         Family = "cache"
	FamilyCluster       Family = "cluster"
	FamilyObjectStorage Family = "object-storage"
)

// Families lists every family in a stable order.
var Families = []Family{FamilySQL, FamilyDocument, FamilyCache, FamilyCluster, FamilyObjectStorage}

// Known schemes. The resolver itself treats schemes as opaque labels;
// these only feed Allowlist.
const (
	SchemePostgreSQL    = "postgresql"
	SchemePostgres      = "postgres"
	SchemeMySQL         = "mysql"
	SchemeClickHouse    = "clickhouse"
	SchemeMongo         = "mongo"
	SchemeMongoDB       = "mongodb"
	SchemeMongoDBSRV    = "mongodb+srv"
	SchemeElasticsearch = "elasticsearch"
	SchemeRedis         = "redis"
	SchemeRedisTLS      = "rediss"
	SchemeKafka         = "kafka"
	SchemeAMQP          = "amqp"
	SchemeS3            = "s3"
	SchemeMinio         = "minio"
)

var schemeFamilies = map[string]Family{
	SchemePostgreSQL:    FamilySQL,
	SchemePostgres:      FamilySQL,
	SchemeMySQL:         FamilySQL,
	SchemeClickHouse:    FamilySQL,
	SchemeMongo:         FamilyDocument,
	SchemeMongoDB:       FamilyDocument,
	SchemeMongoDBSRV:    FamilyDocument,
	SchemeElasticsearch: FamilyDocument,
	SchemeRedis:         FamilyCache,
	SchemeRedisTLS:      FamilyCache,
	SchemeKafka:         FamilyCluster,
	SchemeAMQP:          FamilyCluster,
	SchemeS3:            FamilyObjectStorage,
	SchemeMinio:         FamilyObjectStorage,
}

// FamilyOf returns the family of a known scheme (case-insensitive).
func FamilyOf(scheme string) (Family, bool) {
	f, ok := schemeFamilies[strings.ToLower(scheme)]
	return f, ok
}

// ParseFamily parses a family name.
func ParseFamily(s string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Families, f) {
		return "", fmt.Errorf("unknown scheme family %q (expected one of %v)", s, Families)
	}
	return f, nil
}

// Allowlist accepts schemes whose family is listed. An empty Allowlist
// accepts every known scheme and rejects unknown ones.
type Allowlist []Family

// Check returns *UnsupportedSchemeError when scheme is not allowed.
func (a Allowlist) Check(scheme string) error {
	f, ok := FamilyOf(scheme)
	if !ok || (len(a) > 0 && !slices.Contains(a, f)) {
		return &UnsupportedSchemeError{Scheme: scheme, Allowed: a.families()}
	}
	return nil
}

func (a Allowlist) families() []Family {
	if len(a) == 0 {
		return Families
	}
	return a
}

// ResolveStrict resolves like Resolve and then checks the scheme.
// Targets built from fields alone carry no scheme and are rejected.
func ResolveStrict(uri string, fields Fields, allow Allowlist) (Target, error) {
	t, err := Resolve(uri, fields)
	if err != nil {
		return Target{}, err
	}
	if err := allow.Check(t.scheme); err != nil {
		return Target{}, err
	}
	return t, nil
}
