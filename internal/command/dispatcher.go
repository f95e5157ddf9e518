package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atlekbai/dynquery/internal/intent"
	"github.com/atlekbai/dynquery/internal/join"
	"github.com/atlekbai/dynquery/internal/qerr"
	"github.com/atlekbai/dynquery/internal/render"
	"github.com/atlekbai/dynquery/internal/schema"
)

// Schema is what the dispatcher needs from the metadata provider.
type Schema interface {
	schema.Source
	intent.KeySource
}

// Dispatcher tries its commands in order; the first that recognizes the
// request name compiles it.
type Dispatcher struct {
	env      *Env
	commands []Command
}

type options struct {
	joinType    join.Type
	likeStrings bool
	log         *zap.Logger
}

type Option func(*options)

func WithJoinType(t join.Type) Option { return func(o *options) { o.joinType = t } }

// WithLikeStrings toggles rendering equality against strings as LIKE.
func WithLikeStrings(on bool) Option { return func(o *options) { o.likeStrings = on } }

func WithLogger(log *zap.Logger) Option { return func(o *options) { o.log = log } }

func New(src Schema, opts ...Option) *Dispatcher {
	o := options{joinType: join.Inner, likeStrings: true, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Dispatcher{
		env: &Env{
			Parser:   intent.NewParser(src),
			Resolver: join.NewResolver(src, o.joinType),
			Renderer: render.New(src, render.WithLikeStrings(o.likeStrings)),
			Log:      o.log,
		},
		commands: []Command{
			findCommand{},
			insertCommand{},
			updateCommand{},
			updateByCommand{},
			deleteCommand{},
		},
	}
}

// Env exposes the dispatcher's collaborators.
func (d *Dispatcher) Env() *Env { return d.env }

// Dispatch compiles method on table into a statement.
func (d *Dispatcher) Dispatch(ctx context.Context, table, method string, args []intent.Arg) (*render.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, c := range d.commands {
		if !c.IsCommandFor(method) {
			continue
		}
		st, err := c.Execute(ctx, d.env, table, method, args)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", table, method, err)
		}
		d.env.Log.Debug("compiled statement",
			zap.Stringer("id", st.ID),
			zap.Stringer("op", st.Op),
			zap.String("table", st.Table),
			zap.String("method", method),
			zap.String("sql", st.SQL),
			zap.Int("args", len(st.Args)),
		)
		return st, nil
	}
	if _, err := intent.ParseMethod(method); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %q", qerr.ErrUnknownOperation, method)
}
