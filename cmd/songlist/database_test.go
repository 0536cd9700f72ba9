package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"songlist/internal/config"
)

func unreachableDatabase(connectTimeout time.Duration) config.DatabaseConfig {
	return config.DatabaseConfig{
		URL:             "postgres://songs:pw@127.0.0.1:1/songs?sslmode=disable&connect_timeout=1",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnectTimeout:  connectTimeout,
	}
}

func TestOpenDatabaseStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	db, err := openDatabase(ctx, unreachableDatabase(time.Minute))
	if err == nil {
		_ = db.Close()
		t.Fatal("expected error for canceled context")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("openDatabase took %v after cancellation", elapsed)
	}
	if !strings.Contains(err.Error(), "ping database") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestOpenDatabaseGivesUpAfterConnectTimeout(t *testing.T) {
	start := time.Now()
	db, err := openDatabase(context.Background(), unreachableDatabase(300*time.Millisecond))
	if err == nil {
		_ = db.Close()
		t.Fatal("expected error for unreachable database")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("openDatabase ignored connect timeout, took %v", elapsed)
	}
}
