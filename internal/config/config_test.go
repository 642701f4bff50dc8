package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTrackedOrderType(t *testing.T) {
	cfg := &Config{
		Store: StoreConfig{
			TrackedOrderTypes: []string{"FOOD"},
		},
	}

	assert.True(t, cfg.IsTrackedOrderType("FOOD"))
	assert.True(t, cfg.IsTrackedOrderType("food"))
	assert.False(t, cfg.IsTrackedOrderType("SHOES"))
	assert.False(t, cfg.IsTrackedOrderType(""))
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			Name:     "storefront_db",
			User:     "storefront_user",
			Password: "secret",
			SSLMode:  "disable",
		},
	}

	dsn := cfg.GetDatabaseDSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=storefront_db")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestGetRedisAddr(t *testing.T) {
	cfg := &Config{
		Redis: RedisConfig{Host: "localhost", Port: "6379"},
	}
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}
