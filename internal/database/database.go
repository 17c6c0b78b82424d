// Package database pushes shapefile attribute tables into Oracle.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	shp "github.com/jonas-p/go-shp"

	_ "github.com/sijms/go-ora/v2"
)

// DBConfig holds Oracle connection configuration.
type DBConfig struct {
	Host           string
	Port           string
	Service        string
	Username       string
	Password       string
	WalletLocation string
}

// dsn builds a properly encoded connection string. Wallet-based mTLS is
// used when a wallet location is configured (Autonomous Database requires
// TCPS), plain TCPS otherwise.
func dsn(cfg DBConfig) string {
	if cfg.WalletLocation != "" {
		return fmt.Sprintf(
			"oracle://%s:%s@%s:%s/%s?ssl=true&wallet_location=%s",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Service,
			url.PathEscape(cfg.WalletLocation))
	}

	return (&url.URL{
		Scheme:   "oracle",
		User:     url.UserPassword(cfg.Username, cfg.Password), // escapes automatically
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Service, // keep full service name
		RawQuery: "ssl=true",
	}).String()
}

// Database wraps the live connection.
type Database struct {
	db *sql.DB
}

// New opens a connection and verifies it with a ping.
func New(cfg DBConfig) (*Database, error) {
	db, err := sql.Open("oracle", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// TableNameFor derives an Oracle identifier from a shapefile path: the base
// name uppercased, with anything outside [A-Z0-9_] folded to underscores
// and clipped to Oracle's classic 30-byte limit.
func TableNameFor(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var b strings.Builder
	for _, r := range strings.ToUpper(base) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		name = "T_" + name
	}
	if len(name) > 30 {
		name = name[:30]
	}
	return name
}

// columnType maps a DBF field descriptor onto an Oracle column type.
func columnType(f shp.Field) string {
	switch f.Fieldtype {
	case 'N', 'F':
		if f.Precision > 0 {
			return fmt.Sprintf("NUMBER(%d,%d)", f.Size, f.Precision)
		}
		return fmt.Sprintf("NUMBER(%d)", f.Size)
	case 'D':
		return "VARCHAR2(8)" // YYYYMMDD as stored in the DBF
	case 'L':
		return "VARCHAR2(1)"
	default:
		return fmt.Sprintf("VARCHAR2(%d)", f.Size)
	}
}

// EnsureAttributeTable drops any existing table with the same name and
// creates a fresh one matching the DBF schema.
func (d *Database) EnsureAttributeTable(table string, fields []shp.Field) error {
	// The drop is best-effort; the table usually does not exist yet.
	d.db.Exec(fmt.Sprintf(`DROP TABLE "%s"`, table))

	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = fmt.Sprintf(`"%s" %s`, strings.ToUpper(f.String()), columnType(f))
	}
	ddl := fmt.Sprintf(`CREATE TABLE "%s" (%s)`, table, strings.Join(cols, ", "))
	if _, err := d.db.Exec(ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// Inserter streams rows into one table inside a single transaction.
type Inserter struct {
	tx   *sql.Tx
	stmt *sql.Stmt
}

// NewInserter begins a transaction and prepares the insert statement for
// the given schema.
func (d *Database) NewInserter(table string, fields []shp.Field) (*Inserter, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	cols := make([]string, len(fields))
	binds := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = fmt.Sprintf(`"%s"`, strings.ToUpper(f.String()))
		binds[i] = fmt.Sprintf(":%d", i+1)
	}
	stmt, err := tx.Prepare(fmt.Sprintf(
		`INSERT INTO "%s" (%s) VALUES (%s)`,
		table, strings.Join(cols, ", "), strings.Join(binds, ", ")))
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return &Inserter{tx: tx, stmt: stmt}, nil
}

// Insert writes one row.
func (ins *Inserter) Insert(values ...interface{}) error {
	_, err := ins.stmt.Exec(values...)
	return err
}

// Commit closes the statement and commits the transaction.
func (ins *Inserter) Commit() error {
	if err := ins.stmt.Close(); err != nil {
		ins.tx.Rollback()
		return fmt.Errorf("close insert statement: %w", err)
	}
	return ins.tx.Commit()
}

// Rollback discards everything inserted so far.
func (ins *Inserter) Rollback() error {
	ins.stmt.Close()
	return ins.tx.Rollback()
}
