package e2e_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/dynquery/internal/command"
	"github.com/atlekbai/dynquery/internal/exec"
	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/filter"
	"github.com/atlekbai/dynquery/internal/intent"
	"github.com/atlekbai/dynquery/internal/qerr"
	"github.com/atlekbai/dynquery/internal/schema"
	"github.com/atlekbai/dynquery/internal/schema/schematest"
)

var sqlServer *command.Dispatcher

func TestMain(m *testing.M) {
	cache, err := schema.ParseYAML([]byte(schematest.YAML), "")
	if err != nil {
		panic(err)
	}
	sqlServer = command.New(cache)
	os.Exit(m.Run())
}

// compile runs the full pipeline: name + args → dispatcher → SQL.
func compile(t *testing.T, d *command.Dispatcher, table, method string, args ...intent.Arg) (string, []any) {
	t.Helper()
	st, err := d.Dispatch(context.Background(), table, method, args)
	require.NoError(t, err)
	return strings.ToLower(st.SQL), st.Args
}

func TestFindByKey(t *testing.T) {
	query, args := compile(t, sqlServer, "Users", "Find", intent.Value(expr.Ref("Users", "Id").Eq(1)))
	assert.Equal(t, "select [users].* from [users] where [users].[id] = @p1", query)
	assert.Equal(t, []any{1}, args)
}

func TestFindByNameAndPassword(t *testing.T) {
	query, args := compile(t, sqlServer, "Users", "FindByNameAndPassword", intent.Args("Foo", "secret")...)
	assert.Equal(t, "select [users].* from [users] where ([users].[name] like @p1 and [users].[password] like @p2)", query)
	assert.Equal(t, []any{"Foo", "secret"}, args)
}

func TestInsertNamed(t *testing.T) {
	query, args := compile(t, sqlServer, "Users", "Insert", intent.Named("Name", "Steve"), intent.Named("Age", 50))
	assert.Equal(t, "insert into [users] ([name],[age]) values (@p0,@p1)", query)
	assert.Equal(t, []any{"Steve", 50}, args)
}

func TestUpdateById(t *testing.T) {
	query, args := compile(t, sqlServer, "Users", "UpdateById",
		intent.Named("Id", 1), intent.Named("Name", "Steve"), intent.Named("Age", 50))
	assert.Equal(t, "update [users] set [name] = @p1, [age] = @p2 where [users].[id] = @p3", query)
	assert.Equal(t, []any{"Steve", 50, 1}, args)
}

func TestSingularTableName(t *testing.T) {
	query, _ := compile(t, sqlServer, "User", "FindById", intent.Args(1)...)
	assert.Equal(t, "select [users].* from [users] where [users].[id] = @p1", query)
}

func TestFilterThroughTwoJoins(t *testing.T) {
	e, err := filter.Parse(`orders.order_lines.qty > 1 and name like "S%"`, "users")
	require.NoError(t, err)
	query, args := compile(t, sqlServer, "users", "FindAll", intent.Value(e))
	assert.Equal(t, "select [users].* from [users]"+
		" join [orders] on ([users].[id] = [orders].[user_id])"+
		" join [order_lines] on ([orders].[id] = [order_lines].[order_id])"+
		" where ([order_lines].[qty] > @p1 and [users].[name] like @p2)", query)
	assert.Equal(t, []any{int64(1), "S%"}, args)
}

func TestUnrelatedTables(t *testing.T) {
	_, err := sqlServer.Dispatch(context.Background(), "users", "FindAll",
		intent.Args(expr.Ref("logs", "message").Eq("x")))
	var rerr *qerr.SchemaResolutionError
	require.True(t, errors.As(err, &rerr), err)
	assert.Equal(t, "users", rerr.Left)
	assert.Equal(t, "logs", rerr.Right)
}

var ddl = []string{
	`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, password TEXT, age INTEGER)`,
	`CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER REFERENCES users(id), total REAL)`,
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := exec.OpenDB(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range ddl {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

// TestSQLiteRoundTrip runs compiled statements against an in-memory
// database.
func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, err := schema.ParseYAML([]byte(schematest.YAML), "sqlite")
	require.NoError(t, err)
	d := command.New(cache, command.WithLikeStrings(false))
	ex := exec.NewSQLExecutor(openSQLite(t))

	run := func(table, method string, args ...intent.Arg) *exec.Result {
		t.Helper()
		st, err := d.Dispatch(ctx, table, method, args)
		require.NoError(t, err)
		res, err := ex.Exec(ctx, st)
		require.NoError(t, err, st.SQL)
		return res
	}

	run("users", "Insert", intent.Named("id", 1), intent.Named("name", "Steve"), intent.Named("age", 50))
	run("users", "Insert", intent.Value(expr.NewFields(expr.F("id", 2), expr.F("name", "Sue"), expr.F("age", 31))))
	run("orders", "Insert", intent.Named("id", 10), intent.Named("user_id", 1), intent.Named("total", 250.0))
	run("orders", "Insert", intent.Named("id", 11), intent.Named("user_id", 2), intent.Named("total", 5.0))

	res := run("users", "FindAllByAge", intent.Args(50)...)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Steve", res.Rows[0]["name"])

	res = run("users", "FindAll", intent.Value(expr.Ref("orders", "total").Gt(100)))
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(1), res.Rows[0]["id"])

	res = run("users", "UpdateById", intent.Named("id", 2), intent.Named("age", 32))
	assert.Equal(t, int64(1), res.RowsAffected)
	res = run("users", "Update", intent.Value(expr.NewFields(expr.F("id", 1), expr.F("password", "secret"))))
	assert.Equal(t, int64(1), res.RowsAffected)

	res = run("users", "FindByNameAndPassword", intent.Args("Steve", "secret")...)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(50), res.Rows[0]["age"])

	res = run("users", "FindById", intent.Args(2)...)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(32), res.Rows[0]["age"])

	res = run("orders", "DeleteById", intent.Args(11)...)
	assert.Equal(t, int64(1), res.RowsAffected)
	res = run("users", "Delete", intent.Named("name", "Sue"))
	assert.Equal(t, int64(1), res.RowsAffected)

	res = run("users", "findall")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Steve", res.Rows[0]["name"])
	res = run("orders", "FindAll")
	assert.Len(t, res.Rows, 1)
}
