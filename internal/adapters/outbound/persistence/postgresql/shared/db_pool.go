package shared

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 30 * time.Minute
)

// NewDatabasePool opens the shared connection pool used by the ledger,
// run, and schedule repositories. Connection sizing keeps enough headroom
// for the scheduler worker claiming rows alongside API traffic.
func NewDatabasePool(databaseURL string, logger *log.Logger) *sql.DB {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		panic(err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	db.SetConnMaxLifetime(connMaxLifetime)

	if logger != nil {
		logger.Printf("database pool initialized max_open=%d max_idle=%d", maxOpenConns, maxIdleConns)
	}

	return db
}
