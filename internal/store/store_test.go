package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// Both local implementations must behave identically.
func testStores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": newTestSQLiteStore(t),
	}
}

func TestStore_SnapshotLifecycle(t *testing.T) {
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			data, err := st.GetSnapshot(ctx, "s1")
			require.NoError(t, err)
			assert.Nil(t, data)

			require.NoError(t, st.PutSnapshot(ctx, "s1", []byte(`{"v":1}`)))
			require.NoError(t, st.PutSnapshot(ctx, "s1", []byte(`{"v":2}`)))
			require.NoError(t, st.PutSnapshot(ctx, "s2", []byte(`{"v":9}`)))

			data, err = st.GetSnapshot(ctx, "s1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":2}`, string(data))

			require.NoError(t, st.DeleteSnapshot(ctx, "s1"))
			require.NoError(t, st.DeleteSnapshot(ctx, "missing"))

			data, err = st.GetSnapshot(ctx, "s1")
			require.NoError(t, err)
			assert.Nil(t, data)

			data, err = st.GetSnapshot(ctx, "s2")
			require.NoError(t, err)
			assert.NotNil(t, data)
		})
	}
}

func TestStore_UsageFiltering(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			recs := []model.UsageRecord{
				{Service: model.ServiceApollo, Endpoint: "/mixed_people/search", Method: "POST", StatusCode: 200, Timestamp: base.Add(-48 * time.Hour)},
				{Service: model.ServiceApollo, Endpoint: "/people/bulk_match", Method: "POST", StatusCode: 200, Credits: 10, Timestamp: base.Add(-time.Hour)},
				{Service: model.ServiceInstantly, Endpoint: "/leads/add", Method: "POST", StatusCode: 201, Timestamp: base},
			}
			for _, r := range recs {
				require.NoError(t, st.RecordUsage(ctx, r))
			}

			all, err := st.ListUsage(ctx, UsageFilter{})
			require.NoError(t, err)
			assert.Len(t, all, 3)

			apollo, err := st.ListUsage(ctx, UsageFilter{Service: model.ServiceApollo, Since: base.Add(-24 * time.Hour)})
			require.NoError(t, err)
			require.Len(t, apollo, 1)
			assert.Equal(t, "/people/bulk_match", apollo[0].Endpoint)
			assert.Equal(t, 10, apollo[0].Credits)
			assert.NotEmpty(t, apollo[0].ID)
			assert.True(t, apollo[0].Timestamp.Equal(base.Add(-time.Hour)))
		})
	}
}

func TestMemoryStore_GetSnapshotReturnsCopy(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	require.NoError(t, st.PutSnapshot(ctx, "s", []byte("abc")))

	data, err := st.GetSnapshot(ctx, "s")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := st.GetSnapshot(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestNewSQLite_BadPath(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	assert.Error(t, err)
}
