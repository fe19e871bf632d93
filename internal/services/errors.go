package services

import (
	"errors"
	"fmt"

	"github.com/nimasrn/paywise/internal/insight"
	"github.com/nimasrn/paywise/internal/repository"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrClientNotFound  = fmt.Errorf("client %w", ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)
)

// AIRefreshError is returned when the insight provider fails.
type AIRefreshError = insight.RefreshError

// ProviderError wraps a failed call to an external provider.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// mapRepoError translates repository sentinels into service errors.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrClientNotFound):
		return ErrClientNotFound
	case errors.Is(err, repository.ErrPaymentNotFound):
		return ErrPaymentNotFound
	}
	return err
}
