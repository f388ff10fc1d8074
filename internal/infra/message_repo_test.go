package infra

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/Vovarama1992/voicerelay/internal/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Runs against a live server only. Each store gets its own schema, dropped
// on cleanup, so existing tables are never touched.
func TestPostgresMessageStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	runMessageStoreSuite(t, func(t *testing.T) ports.MessageStore {
		ctx := context.Background()

		admin, err := pgxpool.New(ctx, dsn)
		require.NoError(t, err)
		t.Cleanup(admin.Close)

		schema := "voicerelay_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		ident := pgx.Identifier{schema}.Sanitize()

		_, err = admin.Exec(ctx, "CREATE SCHEMA "+ident)
		require.NoError(t, err)
		t.Cleanup(func() {
			_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+ident+" CASCADE")
		})

		pool, err := NewPgxPool(ctx, withSearchPath(t, dsn, schema))
		require.NoError(t, err)

		store := NewPostgresMessageStore(pool)
		t.Cleanup(store.Close)
		return store
	})
}

func withSearchPath(t *testing.T, dsn, schema string) string {
	t.Helper()
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema
	}

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}
