package handler

import (
	"context"
	"errors"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/labstack/gommon/log"
)

// TokenRotator rotates the stored refresh credential of one scope.
type TokenRotator interface {
	Keys() []string
	Refresh(ctx context.Context, key string) (string, error)
}

type TokenRotationHandler struct {
	Tokens TokenRotator
}

func NewTokenRotationHandler(tokens TokenRotator) *TokenRotationHandler {
	return &TokenRotationHandler{Tokens: tokens}
}

// TokenRotationExecution refreshes every scope so unused refresh tokens never expire.
// Every scope is attempted; failures are returned together.
func (h *TokenRotationHandler) TokenRotationExecution(ctx context.Context) error {
	keys := h.Tokens.Keys()
	if len(keys) == 0 {
		return errors.New("no credentials configured")
	}
	sort.Strings(keys)

	var result *multierror.Error
	for _, key := range keys {
		if _, err := h.Tokens.Refresh(ctx, key); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		log.Infof("[TokenRotation] Rotated %s", key)
	}
	return result.ErrorOrNil()
}
