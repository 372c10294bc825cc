package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var conn *sqlx.DB

// Open connects to a SQLite database and turns on foreign key enforcement.
func Open(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := database.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func InitDB(path string) *sqlx.DB {
	database, err := Open(fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on", path))
	if err != nil {
		log.Fatalln("Failed to connect to DB:", err)
	}

	conn = database
	log.Println("Database connected.")
	return database
}

// GetDB returns the connection opened by InitDB.
func GetDB() *sqlx.DB {
	return conn
}

// RunMigrations applies every pending migration from sourceURL, e.g. "file://migrations".
func RunMigrations(database *sql.DB, sourceURL string) error {
	driver, err := sqlite3.WithInstance(database, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
