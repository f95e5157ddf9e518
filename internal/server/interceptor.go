package server

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"go.uber.org/zap"
)

// LoggingInterceptor logs every unary call with its procedure, duration and
// error code.
func LoggingInterceptor(log *zap.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			fields := []zap.Field{
				zap.String("procedure", req.Spec().Procedure),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, zap.Stringer("code", connect.CodeOf(err)), zap.Error(err))
				log.Warn("rpc failed", fields...)
				return nil, err
			}
			log.Info("rpc", fields...)
			return resp, nil
		}
	}
}
