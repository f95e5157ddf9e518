package schema

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/dynquery/internal/qerr"
)

func testCache() *Cache {
	users := NewTable("Users",
		[]Column{{Name: "Id"}, {Name: "Name"}, {Name: "Password"}, {Name: "Age"}},
		[]string{"Id"}, nil)
	people := NewTable("person", []Column{{Name: "id"}}, nil, nil)
	return NewCacheFromTables(SQLServer, users, people)
}

func TestFindTable(t *testing.T) {
	c := testCache()

	tests := []struct {
		name string
		want string
	}{
		{"Users", "Users"},
		{"users", "Users"},
		{"USERS", "Users"},
		{"User", "Users"},
		{"person", "person"},
		{"people", "person"},
	}
	for _, tt := range tests {
		tbl, err := c.FindTable(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, tbl.ActualName, tt.name)
	}

	_, err := c.FindTable("orders")
	assert.True(t, errors.Is(err, qerr.ErrUnknownTable))
}

func TestFindColumn(t *testing.T) {
	tbl, err := testCache().FindTable("users")
	require.NoError(t, err)

	col, ok := tbl.FindColumn("PASSWORD")
	require.True(t, ok)
	assert.Equal(t, "Password", col.Name)

	_, ok = tbl.FindColumn("email")
	assert.False(t, ok)
}

func TestKeyColumnNames(t *testing.T) {
	c := testCache()
	keys, err := c.KeyColumnNames("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"Id"}, keys)

	keys, err = c.KeyColumnNames("person")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestForeignKeysTo(t *testing.T) {
	orders := NewTable("Orders", []Column{{Name: "Id"}, {Name: "UserId"}}, []string{"Id"}, []ForeignKey{
		{Name: "fk_orders_users", MasterTable: "Users", MasterColumns: []string{"Id"}, DetailTable: "Orders", DetailColumns: []string{"UserId"}},
	})
	assert.Len(t, orders.ForeignKeysTo("users"), 1)
	assert.Empty(t, orders.ForeignKeysTo("items"))
}

func TestCacheConcurrentReads(t *testing.T) {
	c := testCache()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, err := c.FindTable("users")
				assert.NoError(t, err)
			}
		}()
	}
	c.Replace(c.Tables())
	wg.Wait()
	assert.Equal(t, 2, c.TableCount())
}

func TestForeignKeysToSkipsUnpaired(t *testing.T) {
	orders := NewTable("orders", []Column{{Name: "id"}, {Name: "user_id"}}, []string{"id"}, []ForeignKey{
		{Name: "fk_ok", MasterTable: "users", MasterColumns: []string{"id"}, DetailTable: "orders", DetailColumns: []string{"user_id"}},
		{Name: "fk_short", MasterTable: "Users", MasterColumns: []string{"id", "tenant"}, DetailTable: "orders", DetailColumns: []string{"user_id"}},
		{Name: "fk_empty", MasterTable: "users", DetailTable: "orders"},
	})
	fks := orders.ForeignKeysTo("USERS")
	require.Len(t, fks, 1)
	assert.Equal(t, "fk_ok", fks[0].Name)
}
