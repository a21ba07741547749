package store

import (
	"context"
	"testing"

	"db_migrator/internal/config"
	"db_migrator/internal/connectors"
	"db_migrator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func targetDB(t *testing.T) *connectors.SQLiteConnector {
	t.Helper()
	c := connectors.NewSQLiteConnector(config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Disconnect() })
	require.NoError(t, c.Exec(context.Background(), "CREATE TABLE app_users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, email TEXT)"))
	return c
}

func user(name, email string) *domain.Row {
	row := domain.NewRow("User")
	row.Set("name", name)
	row.Set("email", email)
	return row
}

func TestSQLStorePersistFlush(t *testing.T) {
	ctx := context.Background()
	db := targetDB(t)
	s := NewSQLStore(db, WithTable("User", "app_users"))

	john := user("John", "john@example.com")
	require.NoError(t, s.Persist(ctx, "User", john))
	assert.Nil(t, john.ID())

	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, int64(1), john.ID())

	jane := user("Jane", "jane@example.com")
	require.NoError(t, s.Persist(ctx, "User", jane))
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, int64(2), jane.ID())
	s.Detach()

	// повторный Flush без очереди ничего не пишет
	require.NoError(t, s.Flush(ctx))

	records, err := db.ExecuteSelect(ctx, "SELECT id, name, email FROM app_users ORDER BY id")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.Record{"id": int64(2), "name": "Jane", "email": "jane@example.com"}, records[1])

	require.NoError(t, s.Purge(ctx, "User"))
	records, err = db.ExecuteSelect(ctx, "SELECT * FROM app_users")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(targetDB(t))

	assert.Error(t, s.Persist(ctx, "User", nil))

	// таблицы User нет, имя вида используется как имя таблицы
	require.NoError(t, s.Persist(ctx, "User", user("John", "j@example.com")))
	assert.Error(t, s.Flush(ctx))
	assert.Error(t, s.Purge(ctx, "User"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	john := user("John", "john@example.com")
	post := domain.NewRow("Post")
	require.NoError(t, m.Persist(ctx, "User", john))
	require.NoError(t, m.Persist(ctx, "Post", post))
	assert.Equal(t, 0, m.Count("User"))

	require.NoError(t, m.Flush(ctx))
	assert.Equal(t, int64(1), john.ID())
	assert.Equal(t, int64(1), post.ID())
	assert.Equal(t, 1, m.Count("User"))

	jane := user("Jane", "jane@example.com")
	require.NoError(t, m.Persist(ctx, "User", jane))
	require.NoError(t, m.Flush(ctx))
	m.Detach()
	assert.Equal(t, int64(2), jane.ID())
	assert.Equal(t, []domain.Entity{john, jane}, m.All("User"))

	require.NoError(t, m.Purge(ctx, "User"))
	assert.Equal(t, 0, m.Count("User"))
	assert.Equal(t, 1, m.Count("Post"))

	next := user("Max", "max@example.com")
	require.NoError(t, m.Persist(ctx, "User", next))
	require.NoError(t, m.Flush(ctx))
	assert.Equal(t, int64(3), next.ID())

	assert.Error(t, m.Persist(ctx, "User", nil))
}
