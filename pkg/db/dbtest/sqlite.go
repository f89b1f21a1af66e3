// Package dbtest opens throwaway SQLite databases carrying the directory schema.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		google_id TEXT UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		username TEXT,
		phone TEXT,
		profile_image TEXT,
		short_bio TEXT,
		role TEXT NOT NULL DEFAULT 'user',
		reset_password_token TEXT,
		reset_password_expires DATETIME,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE listings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_by TEXT,
		website_url TEXT NOT NULL,
		contact_email TEXT,
		owner_email TEXT,
		access_model TEXT NOT NULL,
		pricing_model TEXT NOT NULL,
		category TEXT NOT NULL,
		industry TEXT NOT NULL,
		tagline TEXT,
		short_description TEXT,
		description TEXT,
		key_features TEXT,
		use_cases TEXT,
		tags TEXT,
		gallery TEXT,
		use_role TEXT,
		logo TEXT,
		thumbnail TEXT,
		video_url TEXT,
		is_hiring INTEGER NOT NULL DEFAULT 0,
		featured INTEGER NOT NULL DEFAULT 0,
		likes INTEGER NOT NULL DEFAULT 0,
		tried_by INTEGER NOT NULL DEFAULT 0,
		saved_by_count INTEGER NOT NULL DEFAULT 0,
		popularity_score INTEGER NOT NULL DEFAULT 0,
		review_ratings REAL NOT NULL DEFAULT 0,
		votes_this_month INTEGER NOT NULL DEFAULT 0,
		integration_support TEXT NOT NULL DEFAULT 'None',
		price TEXT,
		individual_plan TEXT,
		enterprise_plan TEXT,
		free_trial INTEGER NOT NULL DEFAULT 0,
		subscription_model TEXT,
		refund_policy TEXT,
		company_resources TEXT,
		status TEXT NOT NULL DEFAULT 'requested',
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE pending_changes (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		collection TEXT NOT NULL,
		target_id TEXT,
		proposed_data TEXT,
		requested_by TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reviewed_by TEXT,
		reviewed_at DATETIME,
		rejection_reason TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE wishlist_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (user_id, listing_id)
	)`,
	`CREATE TABLE listing_likes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (user_id, listing_id)
	)`,
	`CREATE TABLE search_history_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		query TEXT NOT NULL,
		results TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE blogs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		tags TEXT,
		category TEXT NOT NULL,
		sections TEXT,
		image TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE contacts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE subscribers (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		created_at DATETIME
	)`,
	`CREATE TABLE use_cases (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME
	)`,
}

// Open returns an in-memory database private to t with every table created.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}
