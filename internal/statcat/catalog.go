// Package statcat is the statistics catalog: durable storage for the n-d
// histograms internal/selectivity builds, so a planner can load a
// previously computed histogram instead of resampling on every estimate.
//
// Grounded on the teacher's internal/db package for its storage shape —
// modernc.org/sqlite as the driver, golang-migrate/migrate/v4 for schema
// versioning, WAL-mode pragmas applied uniformly, and tailscale/tailsql
// mounted for ad-hoc SQL browsing — simplified for a catalog with a single
// table and no legacy-schema install base to detect or baseline against
// (internal/db's DetectSchemaVersion/BaselineAtVersion machinery solves a
// problem — multiple pre-migrations schema versions already deployed in the
// field — this catalog doesn't have).
package statcat

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"

	"github.com/kestrel-spatial/tempo/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Catalog is a handle on the statistics catalog database.
type Catalog struct {
	*sql.DB
}

// Open opens (creating if necessary) a statistics catalog at path and
// migrates it to the latest schema version.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("statcat: open %s: %w", path, err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	cat := &Catalog{db}
	if err := cat.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return cat, nil
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("statcat: apply %q: %w", pragma, err)
		}
	}
	return nil
}

func (c *Catalog) newMigrate() (*migrate.Migrate, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("statcat: migrations sub-filesystem: %w", err)
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("statcat: iofs source driver: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(c.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("statcat: sqlite migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
}

// migrateUp runs every pending migration. The returned *migrate.Migrate is
// intentionally not Close()'d: its sqlite driver's Close() would close the
// underlying *sql.DB, which the Catalog manages independently.
func (c *Catalog) migrateUp() error {
	m, err := c.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("statcat: migrate up: %w", err)
	}
	return nil
}

// Version reports the catalog's current schema version.
func (c *Catalog) Version() (uint, bool, error) {
	m, err := c.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if err != nil && errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// AttachAdminRoutes mounts a tailsql browser over the catalog for ad-hoc
// inspection of stored histograms, matching the teacher's db-debug mux
// mounting convention but without a tsweb debug-mux dependency (this
// catalog has no existing debug mux to share; it gets its own route
// prefix directly).
func (c *Catalog) AttachAdminRoutes(mux *http.ServeMux, routePrefix string) error {
	tsql, err := tailsql.NewServer(tailsql.Options{RoutePrefix: routePrefix})
	if err != nil {
		return fmt.Errorf("statcat: create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://statcat", c.DB, &tailsql.DBOptions{Label: "Temporal statistics catalog"})
	mux.Handle(routePrefix, tsql.NewMux())
	monitoring.Debugf("statcat: admin routes mounted at %s", routePrefix)
	return nil
}
