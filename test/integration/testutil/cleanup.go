//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll empties every calendar table.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"TRUNCATE events, admin_users, event_outbox, login_attempts RESTART IDENTITY CASCADE")
	if err != nil {
		env.t.Fatalf("CleanAll: %v", err)
	}
}
