// Package configs holds the explicit runtime configuration. Everything
// is read from the environment exactly once in main and passed down by
// value; no component does ambient lookups.
package configs

import (
	"os"

	"forumapi/internal/store"
)

type Config struct {
	// Environment gates stack traces in error responses; anything other
	// than "production" counts as development.
	Environment string
	Port        string
	JWTSecret   string

	// StoreDriver selects the store backend: "mongo", "dynamo" or
	// "memory".
	StoreDriver string

	MongoURI      string
	MongoDatabase string

	PostsTable    string
	CommentsTable string
	UsersTable    string
}

func Load() Config {
	return Config{
		Environment:   getenv("APP_ENV", "development"),
		Port:          getenv("PORT", "8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		StoreDriver:   getenv("STORE_DRIVER", "mongo"),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("DB_NAME", "forum"),
		PostsTable:    getenv("POSTS_TABLE", "forum-posts"),
		CommentsTable: getenv("COMMENTS_TABLE", "forum-comments"),
		UsersTable:    getenv("USERS_TABLE", "forum-users"),
	}
}

func (c Config) DevMode() bool {
	return c.Environment != "production"
}

// Tables maps logical collections to DynamoDB table names.
func (c Config) Tables() map[string]string {
	return map[string]string{
		store.Posts:    c.PostsTable,
		store.Comments: c.CommentsTable,
		store.Users:    c.UsersTable,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
