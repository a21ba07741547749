package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"db_migrator/internal/config"
	"db_migrator/internal/connectors"
	"db_migrator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func legacyDB(t *testing.T) *connectors.SQLiteConnector {
	t.Helper()
	ctx := context.Background()
	c := connectors.NewSQLiteConnector(config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Disconnect() })

	require.NoError(t, c.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, email TEXT)"))
	require.NoError(t, c.Exec(ctx, "CREATE TABLE user_files (id INTEGER PRIMARY KEY, user_id INTEGER, path TEXT)"))
	require.NoError(t, c.Exec(ctx, "INSERT INTO users (id, name, email) VALUES (1, 'John', 'john@example.com'), (2, 'Jane', 'jane@example.com')"))
	require.NoError(t, c.Exec(ctx, "INSERT INTO user_files (id, user_id, path) VALUES (1, 1, 'a.png'), (2, 1, 'b.png'), (3, 2, 'c.png')"))
	return c
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDatabaseSourceFetchAll(t *testing.T) {
	ctx := context.Background()
	src := NewDatabaseSource(legacyDB(t))

	records, err := src.FetchAll(ctx, "users", nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = src.FetchAll(ctx, "users", domain.Criteria{"name": "Jane"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0]["id"])
	assert.Equal(t, "jane@example.com", records[0]["email"])

	_, err = src.FetchAll(ctx, "users; DROP TABLE users", nil)
	assert.Error(t, err)

	_, err = src.FetchAll(ctx, "users", domain.Criteria{"name = name OR 1": 1})
	assert.Error(t, err)

	_, err = src.FetchAll(ctx, "missing", nil)
	assert.Error(t, err)
}

func TestDatabaseSourceAdvanced(t *testing.T) {
	ctx := context.Background()
	src := NewDatabaseSource(legacyDB(t))

	paths, err := src.FetchColumn(ctx, "user_files", "path", domain.Criteria{"user_id": 1})
	require.NoError(t, err)
	assert.ElementsMatch(t, []interface{}{"a.png", "b.png"}, paths)

	paths, err = src.FetchColumn(ctx, "user_files", "path", domain.Criteria{"user_id": 42})
	require.NoError(t, err)
	assert.Empty(t, paths)

	email, err := src.FetchOne(ctx, "users", "email", domain.Criteria{"id": 2})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", email)

	email, err = src.FetchOne(ctx, "users", "email", domain.Criteria{"id": 99})
	require.NoError(t, err)
	assert.Nil(t, email)

	records, err := src.FetchAllByQuery(ctx, "SELECT u.name, COUNT(f.id) AS files FROM users u JOIN user_files f ON f.user_id = u.id GROUP BY u.name ORDER BY u.name")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.Record{"name": "Jane", "files": int64(1)}, records[0])
	assert.Equal(t, domain.Record{"name": "John", "files": int64(2)}, records[1])
}

func TestJSONSource(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "export.json", []byte(`{
		"data": {
			"users": [
				{"id": 1, "name": "John", "active": true},
				{"id": 2, "name": "Jane", "active": false}
			],
			"owner": {"id": 7, "name": "Root"}
		},
		"tags": [1, 2]
	}`))
	src := NewJSONSource(path)

	records, err := src.FetchAll(ctx, "data.users", nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, float64(1), records[0]["id"])
	assert.Equal(t, "John", records[0]["name"])
	assert.Equal(t, true, records[0]["active"])

	records, err = src.FetchAll(ctx, "data.users", domain.Criteria{"id": 2})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane", records[0]["name"])

	records, err = src.FetchAll(ctx, "data.owner", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Root", records[0]["name"])

	records, err = src.FetchAll(ctx, "data.missing", nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = src.FetchAll(ctx, "tags", nil)
	assert.Error(t, err)
}

func TestJSONSourceKeyedObject(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "keyed.json", []byte(`{
		"users": {
			"10": {"id": 10, "name": "a"},
			"11": {"id": 11, "name": "b"}
		},
		"settings": {"theme": {"color": "red"}, "lang": "ru"}
	}`))
	src := NewJSONSource(path)

	records, err := src.FetchAll(ctx, "users", nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, float64(10), records[0]["id"])
	assert.Equal(t, "a", records[0]["name"])
	assert.Equal(t, "b", records[1]["name"])

	records, err = src.FetchAll(ctx, "users", domain.Criteria{"id": 11})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0]["name"])

	// смешанный объект остается одной записью
	records, err = src.FetchAll(ctx, "settings", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ru", records[0]["lang"])
}

func TestJSONSourceWholeDocument(t *testing.T) {
	path := writeFile(t, "users.json", []byte(`[{"id": 1}, {"id": 2}, {"id": 3}]`))

	records, err := NewJSONSource(path).FetchAll(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestJSONSourceErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewJSONSource(filepath.Join(t.TempDir(), "nope.json")).FetchAll(ctx, "", nil)
	assert.Error(t, err)

	path := writeFile(t, "broken.json", []byte(`{"users": [`))
	_, err = NewJSONSource(path).FetchAll(ctx, "users", nil)
	assert.Error(t, err)
}

func TestCSVSource(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "users.csv", []byte("\xEF\xBB\xBFid,name,email\n1,John,john@example.com\n2,Jane,jane@example.com\n"))
	src := NewCSVSource(path)

	records, err := src.FetchAll(ctx, "ignored", nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.Record{"id": "1", "name": "John", "email": "john@example.com"}, records[0])

	records, err = src.FetchAll(ctx, "", domain.Criteria{"id": 2})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane", records[0]["name"])
}

func TestCSVSourceDelimiterAndEncoding(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("id;name\n1;Иван\n")
	require.NoError(t, err)
	path := writeFile(t, "users.csv", []byte(encoded))

	src := NewCSVSource(path, WithDelimiter(';'), WithEncoding("windows-1251"))
	records, err := src.FetchAll(context.Background(), "", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Иван", records[0]["name"])
}

func TestCSVSourceErrors(t *testing.T) {
	ctx := context.Background()

	empty := writeFile(t, "empty.csv", nil)
	_, err := NewCSVSource(empty).FetchAll(ctx, "", nil)
	assert.Error(t, err)

	ragged := writeFile(t, "ragged.csv", []byte("id,name\n1\n"))
	_, err = NewCSVSource(ragged).FetchAll(ctx, "", nil)
	assert.Error(t, err)

	ok := writeFile(t, "ok.csv", []byte("id\n1\n"))
	_, err = NewCSVSource(ok, WithEncoding("koi8-r")).FetchAll(ctx, "", nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	conn := legacyDB(t)
	conns := map[string]connectors.DatabaseConnector{"legacy": conn}

	src, err := New(config.DataSourceConfig{Type: config.SourceDatabase, Connection: "legacy"}, config.TableConfig{Entity: "User"}, conns)
	require.NoError(t, err)
	_, advanced := src.(AdvancedDataSource)
	assert.True(t, advanced)

	_, err = New(config.DataSourceConfig{Type: config.SourceDatabase, Connection: "other"}, config.TableConfig{}, conns)
	assert.Error(t, err)

	src, err = New(config.DataSourceConfig{Type: config.SourceJSON}, config.TableConfig{Entity: "User", SourcePath: "users.json"}, nil)
	require.NoError(t, err)
	_, advanced = src.(AdvancedDataSource)
	assert.False(t, advanced)

	_, err = New(config.DataSourceConfig{Type: config.SourceCSV}, config.TableConfig{Entity: "User"}, nil)
	assert.Error(t, err)

	src, err = New(config.DataSourceConfig{Type: config.SourceCSV, Delimiter: ";"}, config.TableConfig{Entity: "User", SourcePath: "users.csv"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ';', src.(*CSVSource).delimiter)

	_, err = New(config.DataSourceConfig{Type: "xml"}, config.TableConfig{}, nil)
	assert.Error(t, err)
}
