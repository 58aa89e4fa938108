package postgres

import (
	"database/sql"
	"os"
	"strings"
)

// splitConnectionParams removes the schema= and prefix= options from
// params. They are handled by osmtables and must not be passed to the
// server.
func splitConnectionParams(params string) (rest, schema, prefix string) {
	var parts []string
	for _, p := range strings.Fields(params) {
		switch {
		case strings.HasPrefix(p, "schema="):
			schema = strings.TrimPrefix(p, "schema=")
		case strings.HasPrefix(p, "prefix="):
			prefix = strings.TrimPrefix(p, "prefix=")
		default:
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " "), schema, prefix
}

// disableDefaultSslOnLocalhost adds sslmode=disable for connections to
// localhost without explicit sslmode.
func disableDefaultSslOnLocalhost(params string) string {
	isLocalHost := false
	for _, p := range strings.Fields(params) {
		if strings.HasPrefix(p, "sslmode=") {
			return params
		}
		if p == "host=localhost" || p == "host=127.0.0.1" {
			isLocalHost = true
		}
	}
	if !isLocalHost {
		return params
	}
	if _, ok := os.LookupEnv("PGSSLMODE"); ok {
		return params
	}
	return params + " sslmode=disable"
}

func rollbackIfTx(tx **sql.Tx) {
	if *tx != nil {
		if err := (*tx).Rollback(); err != nil {
			log.Errorf("rollback failed: %s", err)
		}
		*tx = nil
	}
}
