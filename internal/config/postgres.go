package config

import (
	"net/url"
	"strings"
)

// DSN returns DB_URL when set, otherwise a postgres:// URL built from the
// individual DB_* settings.
func (p PostgresConfig) DSN() string {
	if raw := strings.TrimSpace(p.URL); raw != "" {
		return raw
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.Name,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}

// MigrationURL rewrites the DSN for the golang-migrate pgx/v5 driver.
func (p PostgresConfig) MigrationURL() string {
	dsn := p.DSN()
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}
