package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	_ "github.com/sijms/go-ora/v2"

	"landlords/internal/loader"
	"landlords/internal/types"
)

// dsn builds a properly encoded connection string for Oracle Autonomous Database
func dsn(username, password, host, port, service string, walletLocation string) string {
	if walletLocation != "" {
		// Use wallet-based mTLS connection
		return fmt.Sprintf(
			"oracle://%s:%s@%s:%s/%s?ssl=true&wallet_location=%s",
			url.PathEscape(username), url.PathEscape(password), host, port, service, url.PathEscape(walletLocation))
	}

	// Fallback to standard connection without wallet
	return (&url.URL{
		Scheme:   "oracle",
		User:     url.UserPassword(username, password), // escapes automatically
		Host:     host + ":" + port,
		Path:     "/" + service, // keep full service name
		RawQuery: "ssl=true",    // ADB requires TCPS on 1522
	}).String()
}

// DBConfig holds database connection configuration
type DBConfig struct {
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	Service        string `yaml:"service"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	WalletLocation string `yaml:"wallet_location"`
}

// Database holds the Oracle connection and configuration
type Database struct {
	db     *sql.DB
	config DBConfig
}

// NewDatabase opens and pings an Oracle connection.
func NewDatabase(ctx context.Context, config DBConfig) (*Database, error) {
	connStr := dsn(config.Username, config.Password, config.Host, config.Port, config.Service, config.WalletLocation)

	slog.Debug("connecting to oracle", "host", config.Host, "service", config.Service)

	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		db:     db,
		config: config,
	}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// LoadProperties reads every row of table, in ROWID order, as a Property.
func (d *Database) LoadProperties(ctx context.Context, table string, cols loader.Columns) ([]types.Property, error) {
	cols = cols.WithDefaults(loader.DefaultColumns)
	query, err := selectQuery(table, cols, "", "ROWID")
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []types.Property
	for rows.Next() {
		var addr, owner, ownerAddr, lat, lon sql.NullString
		if err := rows.Scan(&addr, &owner, &ownerAddr, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, cols.Property(map[string]string{
			cols.Address:      addr.String,
			cols.Owner:        owner.String,
			cols.OwnerAddress: ownerAddr.String,
			cols.Latitude:     lat.String,
			cols.Longitude:    lon.String,
		}))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}

	return properties, nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

// selectQuery builds the property SELECT. Identifiers are interpolated, so
// each one must be a plain (optionally schema-qualified) name. cast wraps
// each column, e.g. "%s::text"; empty means no cast.
func selectQuery(table string, cols loader.Columns, cast string, orderBy string) (string, error) {
	names := []string{cols.Address, cols.Owner, cols.OwnerAddress, cols.Latitude, cols.Longitude}
	for _, ident := range append([]string{table}, names...) {
		if !identPattern.MatchString(ident) {
			return "", fmt.Errorf("invalid identifier %q", ident)
		}
	}

	q := "SELECT "
	for i, n := range names {
		if i > 0 {
			q += ", "
		}
		if cast != "" {
			n = fmt.Sprintf(cast, n)
		}
		q += n
	}
	q += " FROM " + table
	if orderBy != "" {
		q += " ORDER BY " + orderBy
	}
	return q, nil
}
