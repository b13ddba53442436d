package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type flakyMigrator struct {
	failures int
	calls    int
}

func (f *flakyMigrator) Migrate(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("dial tcp 127.0.0.1:3306: connection refused")
	}
	return nil
}

func TestEnsureSchemaRetriesUntilReachable(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := &flakyMigrator{failures: 2}

	ensureSchema(context.Background(), m, zap.New(core).Sugar(), time.Millisecond)

	if m.calls != 3 {
		t.Fatalf("Migrate calls = %d; want 3", m.calls)
	}
	if n := logs.FilterMessage("schema check failed, will retry").Len(); n != 2 {
		t.Fatalf("retry warnings = %d; want 2", n)
	}
	if logs.FilterMessage("schema ready").Len() != 1 {
		t.Fatal("missing schema ready log")
	}
}

func TestEnsureSchemaStopsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &flakyMigrator{failures: 1 << 30}

	done := make(chan struct{})
	go func() {
		ensureSchema(ctx, m, zap.NewNop().Sugar(), time.Hour)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ensureSchema ignored cancelled context")
	}
	if m.calls != 1 {
		t.Fatalf("Migrate calls = %d; want 1", m.calls)
	}
}
