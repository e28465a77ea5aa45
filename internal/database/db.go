package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables on startup when they do not exist yet.
// Deleting a user cascades to the courses they authored; deleting a
// category is blocked while courses still reference it.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			name VARCHAR(120) NOT NULL,
			bio VARCHAR(160) NOT NULL DEFAULT '',
			email VARCHAR(120) NOT NULL,
			role VARCHAR(20) NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uq_user_email (email),
			KEY idx_user_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS category (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			name VARCHAR(30) NOT NULL,
			PRIMARY KEY (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE IF NOT EXISTS course (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			title VARCHAR(120) NOT NULL,
			description TEXT NOT NULL,
			video_id VARCHAR(255) NOT NULL,
			created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			category_id BIGINT UNSIGNED NOT NULL,
			author_id BIGINT UNSIGNED NOT NULL,
			PRIMARY KEY (id),
			KEY idx_course_title (title),
			CONSTRAINT fk_course_category FOREIGN KEY (category_id) REFERENCES category (id),
			CONSTRAINT fk_course_author FOREIGN KEY (author_id) REFERENCES user (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
