// Copyright (c) 2025 chatdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"net"

	"github.com/go-sql-driver/mysql"
)

// buildMySQL produces a go-sql-driver DSN of the form
// user:pass@tcp(host:port)/database?parseTime=true. The driver's own config
// type handles escaping, so passwords with special characters are safe.
func buildMySQL(info Info) (string, error) {
	port := info.Port
	if port == "" {
		port = "3306"
	}

	cfg := mysql.NewConfig()
	cfg.User = info.User
	cfg.Passwd = info.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(info.Host, port)
	cfg.DBName = info.Database
	cfg.ParseTime = true
	if !info.SSLDisabled {
		cfg.TLSConfig = "preferred"
	}

	return cfg.FormatDSN(), nil
}
