// Package command routes a request name to the handler that compiles it.
package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/atlekbai/dynquery/internal/intent"
	"github.com/atlekbai/dynquery/internal/join"
	"github.com/atlekbai/dynquery/internal/render"
)

// Env carries the collaborators a handler compiles with. Handlers keep no
// state of their own.
type Env struct {
	Parser   *intent.Parser
	Resolver *join.Resolver
	Renderer *render.Renderer
	Log      *zap.Logger
}

// Command compiles the requests whose names it recognizes.
type Command interface {
	IsCommandFor(method string) bool
	Execute(ctx context.Context, env *Env, table, method string, args []intent.Arg) (*render.Statement, error)
}

// verbOf reports the parsed method when name is well formed.
func verbOf(name string) (intent.Method, bool) {
	m, err := intent.ParseMethod(name)
	return m, err == nil
}

type findCommand struct{}

func (findCommand) IsCommandFor(method string) bool {
	m, ok := verbOf(method)
	return ok && m.Verb == intent.VerbFind
}

func (findCommand) Execute(_ context.Context, env *Env, table, method string, args []intent.Arg) (*render.Statement, error) {
	in, err := env.Parser.Parse(table, method, args)
	if err != nil {
		return nil, err
	}
	where, err := in.Filter()
	if err != nil {
		return nil, err
	}
	plan, err := env.Resolver.Resolve(table, where)
	if err != nil {
		return nil, err
	}
	st, err := env.Renderer.Select(table, where, plan)
	if err != nil {
		return nil, err
	}
	st.Single = in.Kind == intent.Find
	return st, nil
}

type insertCommand struct{}

func (insertCommand) IsCommandFor(method string) bool {
	m, ok := verbOf(method)
	return ok && m.Verb == intent.VerbInsert
}

func (insertCommand) Execute(_ context.Context, env *Env, table, method string, args []intent.Arg) (*render.Statement, error) {
	in, err := env.Parser.Parse(table, method, args)
	if err != nil {
		return nil, err
	}
	return env.Renderer.Insert(table, in.Record)
}

// updateCommand handles a bare update; the key columns come from the schema.
type updateCommand struct{}

func (updateCommand) IsCommandFor(method string) bool {
	m, ok := verbOf(method)
	return ok && m.Verb == intent.VerbUpdate && !m.HasBy()
}

func (updateCommand) Execute(_ context.Context, env *Env, table, method string, args []intent.Arg) (*render.Statement, error) {
	return update(env, table, method, args)
}

type updateByCommand struct{}

func (updateByCommand) IsCommandFor(method string) bool {
	m, ok := verbOf(method)
	return ok && m.Verb == intent.VerbUpdate && m.HasBy()
}

func (updateByCommand) Execute(_ context.Context, env *Env, table, method string, args []intent.Arg) (*render.Statement, error) {
	return update(env, table, method, args)
}

func update(env *Env, table, method string, args []intent.Arg) (*render.Statement, error) {
	in, err := env.Parser.Parse(table, method, args)
	if err != nil {
		return nil, err
	}
	where, err := in.Filter()
	if err != nil {
		return nil, err
	}
	return env.Renderer.Update(table, in.Record, where)
}

// deleteCommand serves both delete and deleteby<fields>.
type deleteCommand struct{}

func (deleteCommand) IsCommandFor(method string) bool {
	m, ok := verbOf(method)
	return ok && m.Verb == intent.VerbDelete
}

func (deleteCommand) Execute(_ context.Context, env *Env, table, method string, args []intent.Arg) (*render.Statement, error) {
	in, err := env.Parser.Parse(table, method, args)
	if err != nil {
		return nil, err
	}
	where, err := in.Filter()
	if err != nil {
		return nil, err
	}
	return env.Renderer.Delete(table, where)
}
