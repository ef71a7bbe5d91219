package interceptors

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingUnary attaches a request-scoped logger to ctx and logs each unary call with its
// status and duration. Run it first in the chain so later interceptors and handlers can use zerolog.Ctx.
func LoggingUnary(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		started := time.Now()

		ctx = logger.With().
			Str("method", info.FullMethod).
			Str("addr", ClientIP(ctx)).
			Logger().WithContext(ctx)

		resp, err := handler(ctx, req)

		if err != nil {
			zerolog.Ctx(ctx).Error().
				Err(err).
				Str("code", status.Code(err).String()).
				Dur("duration", time.Since(started)).
				Msg("rpc call")
			return resp, err
		}

		zerolog.Ctx(ctx).Info().
			Dur("duration", time.Since(started)).
			Msg("rpc call")
		return resp, nil
	}
}
