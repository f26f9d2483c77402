package db

import (
	"database/sql"
	"fmt"
	"time"

	"elections/config"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// GetConnection returns a connection pool to the PostgreSQL database.
func GetConnection() (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(30 * time.Minute)
	return conn, nil
}
