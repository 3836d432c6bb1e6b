// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides the Valkey (Redis-compatible) client and the
// settings read-through cache.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Valkey client timeouts.
const (
	valkeyDialTimeout = 5 * time.Second
	valkeyIOTimeout   = 2 * time.Second
)

// ConnectValkey opens a client for the given database and pings it. A
// failed ping closes the client.
func ConnectValkey(ctx context.Context, host, port, password string, db int) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:         net.JoinHostPort(host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  valkeyDialTimeout,
		ReadTimeout:  valkeyIOTimeout,
		WriteTimeout: valkeyIOTimeout,
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, valkeyDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", opts.Addr, err)
	}

	slog.Info("valkey connected", "addr", opts.Addr, "db", db)
	return client, nil
}
