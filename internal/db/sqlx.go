package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// InitSQLX returns a sqlx handle for hand-written queries. Postgres gets its
// own lib/pq pool; sqlite shares the connection GORM already holds, since an
// in-memory database only exists on that connection.
func InitSQLX(dsn string, orm *gorm.DB) (*sqlx.DB, error) {
	if IsSQLite(dsn) {
		return WrapSQLX(orm)
	}

	var (
		conn *sqlx.DB
		err  error
	)
	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect sqlx to postgres: %w", err)
}

// WrapSQLX exposes the GORM connection pool through sqlx.
func WrapSQLX(orm *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	driver := "sqlite3"
	if orm.Dialector.Name() == "postgres" {
		driver = "postgres"
	}
	return sqlx.NewDb(sqlDB, driver), nil
}
