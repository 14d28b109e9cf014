package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsDSN(t *testing.T) {
	dsn := Options{User: "app", Password: "s3cret", Host: "db", Port: "3306", Name: "events"}.DSN()
	assert.Contains(t, dsn, "app:s3cret@tcp(db:3306)/events?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestOptionsDSNWithoutPassword(t *testing.T) {
	dsn := Options{User: "root", Host: "127.0.0.1", Port: "3307", Name: "events"}.DSN()
	assert.Contains(t, dsn, "root@tcp(127.0.0.1:3307)/events?")
}
