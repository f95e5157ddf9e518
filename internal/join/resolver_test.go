package join

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/dynquery/internal/expr"
	"github.com/atlekbai/dynquery/internal/qerr"
	"github.com/atlekbai/dynquery/internal/schema"
	"github.com/atlekbai/dynquery/internal/schema/schematest"
)

func ref(t *testing.T, s string) expr.ColumnRef {
	t.Helper()
	r, err := expr.ParseRef(s)
	require.NoError(t, err)
	return r
}

func newResolver(jt Type) *Resolver {
	return NewResolver(schematest.Cache(schema.SQLServer), jt)
}

func TestResolveMainTableOnly(t *testing.T) {
	r := newResolver(Inner)
	plan, err := r.Resolve("users", expr.Ref("users", "id").Eq(1))
	require.NoError(t, err)
	assert.False(t, plan.NeedsJoins())
	assert.Equal(t, "", plan.String())
	assert.Equal(t, "users", plan.Main().ActualName)

	plan, err = r.Resolve("users", nil)
	require.NoError(t, err)
	assert.False(t, plan.NeedsJoins())
}

func TestResolveDetailTable(t *testing.T) {
	plan, err := newResolver(Inner).Resolve("users", expr.Ref("orders", "total").Gt(100))
	require.NoError(t, err)
	assert.Equal(t, "JOIN [orders] ON ([users].[id] = [orders].[user_id])", plan.String())
	assert.True(t, plan.Has("Orders"))
}

func TestResolveMasterTable(t *testing.T) {
	plan, err := newResolver(Inner).Resolve("orders", expr.Ref("users", "name").Eq("Foo"))
	require.NoError(t, err)
	assert.Equal(t, "JOIN [users] ON ([users].[id] = [orders].[user_id])", plan.String())
}

func TestResolveLeftJoin(t *testing.T) {
	plan, err := newResolver(Left).Resolve("users", expr.Ref("orders", "total").Gt(100))
	require.NoError(t, err)
	assert.Equal(t, "LEFT JOIN [orders] ON ([users].[id] = [orders].[user_id])", plan.String())
}

func TestResolveOwnerChain(t *testing.T) {
	e := expr.And(
		ref(t, "orders.order_lines.qty").Gt(1),
		ref(t, "users.orders.order_lines.products.title").Like("A%"),
	)
	plan, err := newResolver(Inner).Resolve("users", e)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"JOIN [orders] ON ([users].[id] = [orders].[user_id])",
		"JOIN [order_lines] ON ([orders].[id] = [order_lines].[order_id])",
		"JOIN [products] ON ([products].[id] = [order_lines].[product_id])",
	}, plan.Clauses())
}

func TestResolveCompositeKey(t *testing.T) {
	plan, err := newResolver(Inner).Resolve("order_lines", expr.Ref("shipments", "carrier").Eq("UPS"))
	require.NoError(t, err)
	assert.Equal(t,
		"JOIN [shipments] ON ([order_lines].[order_id] = [shipments].[order_id] AND [order_lines].[line] = [shipments].[line])",
		plan.String())
}

func TestResolveJoinsEachTableOnce(t *testing.T) {
	total := expr.Ref("orders", "total")
	e := expr.Or(total.Gt(100), expr.And(total.Lt(5), expr.Ref("orders", "id").Ne(nil)))
	plan, err := newResolver(Inner).Resolve("users", e)
	require.NoError(t, err)
	assert.Len(t, plan.Clauses(), 1)
	assert.Len(t, plan.Tables(), 2)
}

func TestResolveAnchorsOnJoinedTable(t *testing.T) {
	e := expr.And(expr.Ref("orders", "total").Gt(1), expr.Ref("order_lines", "qty").Gt(1))
	plan, err := newResolver(Inner).Resolve("users", e)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"JOIN [orders] ON ([users].[id] = [orders].[user_id])",
		"JOIN [order_lines] ON ([orders].[id] = [order_lines].[order_id])",
	}, plan.Clauses())

	e = expr.And(e, expr.Ref("products", "title").Eq("x"))
	plan, err = newResolver(Inner).Resolve("users", e)
	require.NoError(t, err)
	assert.Equal(t, "JOIN [products] ON ([products].[id] = [order_lines].[product_id])", plan.Clauses()[2])
}

func TestResolveAnchorsOnlyOnResolvedTables(t *testing.T) {
	// order_lines comes first, before orders is joined
	e := expr.And(expr.Ref("order_lines", "qty").Gt(1), expr.Ref("orders", "total").Gt(1))
	_, err := newResolver(Inner).Resolve("users", e)
	var rerr *qerr.SchemaResolutionError
	require.True(t, errors.As(err, &rerr), err)
	assert.Equal(t, "users", rerr.Left)
	assert.Equal(t, "order_lines", rerr.Right)

	e = expr.And(expr.Ref("orders", "total").Gt(1), expr.Ref("logs", "message").Eq("x"))
	_, err = newResolver(Inner).Resolve("users", e)
	require.True(t, errors.As(err, &rerr), err)
	assert.Equal(t, "users", rerr.Left)
	assert.Equal(t, "logs", rerr.Right)
}

func TestResolveSkipsUnpairedForeignKey(t *testing.T) {
	cache := schema.NewCacheFromTables(schema.SQLServer,
		schema.NewTable("users", []schema.Column{{Name: "id"}}, []string{"id"}, nil),
		schema.NewTable("orders", []schema.Column{{Name: "id"}, {Name: "user_id"}}, []string{"id"}, []schema.ForeignKey{
			{Name: "fk_broken", MasterTable: "users", MasterColumns: []string{"id", "tenant"}, DetailTable: "orders", DetailColumns: []string{"user_id"}},
		}),
	)
	var (
		plan *Plan
		err  error
	)
	require.NotPanics(t, func() {
		plan, err = NewResolver(cache, Inner).Resolve("users", expr.Ref("orders", "id").Eq(1))
	})
	assert.Nil(t, plan)
	var rerr *qerr.SchemaResolutionError
	assert.True(t, errors.As(err, &rerr), err)
}

func TestResolveIsIdempotent(t *testing.T) {
	r := newResolver(Inner)
	e := expr.Ref("orders", "total").Gt(100)
	first, err := r.Resolve("users", e)
	require.NoError(t, err)
	second, err := r.Resolve("users", e)
	require.NoError(t, err)
	assert.Equal(t, first.String(), second.String())
}

func TestResolveNoForeignKey(t *testing.T) {
	_, err := newResolver(Inner).Resolve("users", expr.Ref("logs", "message").Eq("x"))
	var rerr *qerr.SchemaResolutionError
	require.True(t, errors.As(err, &rerr), err)
	assert.Equal(t, "users", rerr.Left)
	assert.Equal(t, "logs", rerr.Right)
	assert.Empty(t, rerr.Reason)
}

func TestResolveAmbiguousForeignKeys(t *testing.T) {
	_, err := newResolver(Inner).Resolve("users", expr.Ref("messages", "body").Eq("hi"))
	var rerr *qerr.SchemaResolutionError
	require.True(t, errors.As(err, &rerr), err)
	assert.Contains(t, rerr.Reason, "ambiguous")
}

func TestResolveUnknownTable(t *testing.T) {
	_, err := newResolver(Inner).Resolve("users", expr.Ref("nope", "x").Eq(1))
	assert.True(t, errors.Is(err, qerr.ErrUnknownTable), err)

	_, err = newResolver(Inner).Resolve("nope", nil)
	assert.True(t, errors.Is(err, qerr.ErrUnknownTable), err)
}

func TestResolveConcurrent(t *testing.T) {
	r := newResolver(Inner)
	e := expr.And(expr.Ref("orders", "total").Gt(1), expr.Ref("order_lines", "qty").Gt(1))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve("orders", e)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestParseType(t *testing.T) {
	jt, err := ParseType("LEFT")
	require.NoError(t, err)
	assert.Equal(t, Left, jt)

	jt, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, Inner, jt)

	_, err = ParseType("cross")
	assert.Error(t, err)
}
