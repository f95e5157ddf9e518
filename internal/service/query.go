package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atlekbai/dynquery/internal/command"
	"github.com/atlekbai/dynquery/internal/exec"
	"github.com/atlekbai/dynquery/internal/qerr"
	"github.com/atlekbai/dynquery/internal/render"
)

const (
	ServiceName      = "dynquery.v1.QueryService"
	CompileProcedure = "/" + ServiceName + "/Compile"
	ExecuteProcedure = "/" + ServiceName + "/Execute"
)

// QueryService compiles method-style requests to SQL and optionally runs
// them. Messages are google.protobuf.Struct, so the JSON form of a request
// is a plain object.
type QueryService struct {
	dispatcher *command.Dispatcher
	executor   exec.Executor
	log        *zap.Logger
}

// NewQueryService returns a service. executor may be nil, in which case
// Execute fails with FailedPrecondition.
func NewQueryService(d *command.Dispatcher, executor exec.Executor, log *zap.Logger) *QueryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryService{dispatcher: d, executor: executor, log: log}
}

func (s *QueryService) RegisterHandler(interceptors ...connect.Interceptor) (string, http.Handler) {
	opts := []connect.HandlerOption{connect.WithInterceptors(interceptors...)}
	mux := http.NewServeMux()
	mux.Handle(CompileProcedure, connect.NewUnaryHandler(CompileProcedure, s.Compile, opts...))
	mux.Handle(ExecuteProcedure, connect.NewUnaryHandler(ExecuteProcedure, s.Execute, opts...))
	return "/" + ServiceName + "/", mux
}

func (s *QueryService) Compile(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	out, err := s.Run(ctx, req.Msg, false)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(out), nil
}

func (s *QueryService) Execute(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	out, err := s.Run(ctx, req.Msg, true)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(out), nil
}

// Run compiles msg and, when execute is set, runs it. Errors are
// *connect.Error values carrying the code the failure maps to.
func (s *QueryService) Run(ctx context.Context, msg *structpb.Struct, execute bool) (*structpb.Struct, error) {
	if execute && s.executor == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("no database configured"))
	}
	st, err := s.compile(ctx, msg)
	if err != nil {
		return nil, err
	}
	if !execute {
		return statementStruct(st), nil
	}

	res, err := s.executor.Exec(ctx, st)
	if err != nil {
		s.log.Error("statement failed", zap.Stringer("id", st.ID), zap.Error(err))
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("query failed: %w", err))
	}
	s.log.Debug("statement executed",
		zap.Stringer("id", st.ID),
		zap.Int64("rows", res.RowsAffected),
	)
	return resultStruct(st, res), nil
}

func (s *QueryService) compile(ctx context.Context, msg *structpb.Struct) (*render.Statement, error) {
	req, err := decodeRequest(msg)
	if err != nil {
		return nil, connectError(err)
	}
	st, err := s.dispatcher.Dispatch(ctx, req.Table, req.Method, req.Args)
	if err != nil {
		return nil, connectError(err)
	}
	return st, nil
}

// connectError maps engine errors to connect codes. Anything unrecognized
// is a bad request unless it comes from the context.
func connectError(err error) error {
	var rerr *qerr.SchemaResolutionError
	switch {
	case errors.Is(err, qerr.ErrUnknownOperation):
		return connect.NewError(connect.CodeUnimplemented, err)
	case errors.Is(err, qerr.ErrUnknownTable):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, qerr.ErrUnsupportedOperation), errors.As(err, &rerr):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
}
