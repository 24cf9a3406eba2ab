package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/nestegg-backend/internal/identity"
)

// TokenVerifier resolves a bearer token to a user id
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the user id stored in the context.
func AuthInterceptor(verifier TokenVerifier) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		userID, err := verifier.Verify(authHeaders[0])
		if err != nil {
			if errors.Is(err, identity.ErrMissingToken) {
				return nil, status.Error(codes.Unauthenticated, "missing authorization header")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(identity.WithUserID(ctx, userID), req)
	}
}

// LoggingInterceptor logs every unary call with its method, code and duration
func LoggingInterceptor(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := logger.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start).String(),
		})
		if userID, ok := identity.UserID(ctx); ok {
			entry = entry.WithField("owner_id", userID)
		}

		switch status.Code(err) {
		case codes.OK:
			entry.Debug("grpc call")
		case codes.Internal, codes.Unknown:
			entry.WithError(err).Error("grpc call failed")
		default:
			entry.Info("grpc call rejected")
		}
		return resp, err
	}
}
