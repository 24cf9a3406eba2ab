package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/nestegg-backend/internal/domain"
)

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, errorMsg)

	// Checked before Unauthorized so ownership mismatches read as NotFound
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, errorMsg)

	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, errorMsg)

	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrIrreversibleState),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrReferenced):
		return status.Error(codes.FailedPrecondition, errorMsg)

	case errors.Is(err, domain.ErrStorageFailure):
		return status.Error(codes.Internal, "storage failure")
	}

	// Default to Internal error for unknown errors
	return status.Error(codes.Internal, errorMsg)
}
