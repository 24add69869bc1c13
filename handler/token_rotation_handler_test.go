package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRotator struct {
	mock.Mock
}

func (m *mockRotator) Keys() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockRotator) Refresh(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func TestTokenRotationExecution(t *testing.T) {
	t.Run("rotates every key even after a failure", func(t *testing.T) {
		rotator := &mockRotator{}
		rotator.On("Keys").Return([]string{"REGION", "BE", "CH"})
		rotator.On("Refresh", mock.Anything, "BE").Return("", errors.New("invalid_grant"))
		rotator.On("Refresh", mock.Anything, "CH").Return("tok", nil)
		rotator.On("Refresh", mock.Anything, "REGION").Return("tok", nil)

		err := NewTokenRotationHandler(rotator).TokenRotationExecution(context.Background())

		assert.ErrorContains(t, err, "invalid_grant")
		rotator.AssertNumberOfCalls(t, "Refresh", 3)
	})

	t.Run("nothing configured", func(t *testing.T) {
		rotator := &mockRotator{}
		rotator.On("Keys").Return([]string{})

		err := NewTokenRotationHandler(rotator).TokenRotationExecution(context.Background())
		assert.Error(t, err)
	})
}
