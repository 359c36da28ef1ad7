package conn

import (
	"fmt"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClientOptions builds mongo-driver client options for the target.
// Nothing is dialed; the caller passes the options to mongo.Connect.
// The database, when set, becomes the credential's auth source, which is
// how the authSource option fed it in the first place.
func MongoClientOptions(t Target) *options.ClientOptions {
	opts := options.Client().SetHosts(t.Hosts())

	if t.auth.set {
		cred := options.Credential{
			Username:    t.auth.username,
			Password:    t.auth.password,
			PasswordSet: true,
		}
		if db, ok := t.Database(); ok {
			cred.AuthSource = db
		}
		opts.SetAuth(cred)
	}

	if t.kind == KindSingle {
		opts.SetDirect(true)
	}

	return opts
}

// PostgresDSN converts a Single target into a lib/pq key/value DSN
// ("dbname=... host=... password=... port=... user=...").
func PostgresDSN(t Target) (string, error) {
	if t.kind == KindClustered {
		return "", fmt.Errorf("postgres DSN: %w", ErrClusteredTarget)
	}
	dsn, err := pq.ParseURL(FormatURI(t, SchemePostgres, true))
	if err != nil {
		return "", fmt.Errorf("postgres DSN: %w", err)
	}
	return dsn, nil
}
