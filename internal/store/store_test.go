package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formrelay/internal/config"
	"github.com/yanizio/formrelay/internal/database"
	"github.com/yanizio/formrelay/internal/submission"
)

var fastOpts = database.Options{MaxOpenConns: 2, MaxIdleConns: 1, RetryBackoff: time.Millisecond}

func TestOpenUnreachableStoreStillServes(t *testing.T) {
	cases := map[string]config.Database{
		"mysql":    {Driver: "mysql", DSN: "forms:pw@tcp(127.0.0.1:1)/forms"},
		"postgres": {Driver: "postgres", DSN: "postgres://forms:pw@127.0.0.1:1/forms?connect_timeout=1"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			be, err := open(ctx, cfg, fastOpts)
			require.NoError(t, err)
			t.Cleanup(func() { _ = be.Close() })
			assert.Equal(t, name, be.Driver())

			rec, err := submission.NewContact(submission.ContactFields{Name: "Ada", Email: "ada@example.com", Message: "hi"}, "", time.Now())
			require.NoError(t, err)

			assert.NotPanics(t, func() { err = be.Insert(ctx, rec) })
			assert.Error(t, err)

			_, err = be.EmailExists(ctx, submission.CategoryWaitlist, "ada@example.com")
			assert.Error(t, err)
		})
	}
}

func TestOpenRejectsConfigMistakes(t *testing.T) {
	ctx := context.Background()

	_, err := open(ctx, config.Database{Driver: "sqlite", DSN: "x"}, fastOpts)
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = open(ctx, config.Database{Driver: "mysql", DSN: "not a dsn"}, fastOpts)
	assert.ErrorContains(t, err, "mysql dsn")
}
