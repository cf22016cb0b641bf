package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"maintenance-app/tracking-service/internal/models"
)

// Mongo server error codes the adapter distinguishes.
const (
	codeUnauthorized      = 13 // Unauthorized
	codeIndexNotFound     = 27 // IndexNotFound
	codeNoQueryExecPlans  = 291
	codeFailedPrecondFind = 9000 // atlas search / index precondition failures
)

// translateError maps driver errors onto the service's own error kinds so
// nothing above the repository ever inspects backend-specific codes.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}

	if isMissingIndex(err) {
		return fmt.Errorf("%w: %v", models.ErrMissingIndex, err)
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && srvErr.HasErrorCode(codeUnauthorized) {
		return fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrTransient, err)
	}

	return fmt.Errorf("%w: %v", models.ErrTransient, err)
}

// isMissingIndex reports whether the error is the specific recoverable
// "no index available for this query shape" case.
func isMissingIndex(err error) bool {
	if errors.Is(err, models.ErrMissingIndex) {
		return true
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		return srvErr.HasErrorCode(codeIndexNotFound) ||
			srvErr.HasErrorCode(codeNoQueryExecPlans) ||
			srvErr.HasErrorCode(codeFailedPrecondFind)
	}

	return false
}
