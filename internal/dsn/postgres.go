// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net"
	"net/url"
)

// buildPostgres produces a postgres:// URL. User and password are URL-escaped
// via url.UserPassword so special characters round-trip correctly.
func buildPostgres(info Info) (string, error) {
	port := info.Port
	if port == "" {
		port = "5432"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(info.Host, port),
		Path:   "/" + info.Database,
	}
	if info.Password != "" {
		u.User = url.UserPassword(info.User, info.Password)
	} else {
		u.User = url.User(info.User)
	}

	q := url.Values{}
	if info.SSLDisabled {
		q.Set("sslmode", "disable")
	} else {
		q.Set("sslmode", "prefer")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
