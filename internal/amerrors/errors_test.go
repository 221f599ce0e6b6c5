package amerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesClassificationOnRewrap(t *testing.T) {
	base := errors.New("sample function panicked")
	first := WrapWithType(ComponentSampling, "dry-run", ErrorTypeSampling, base)

	wrapped := Wrap(ComponentDecision, "optimize", first)

	decErr, ok := wrapped.(*DecisionError)
	assert.True(t, ok)
	assert.Equal(t, ErrorTypeSampling, decErr.Type)
	assert.Equal(t, ComponentDecision, decErr.Component)
	assert.False(t, decErr.Retryable)
}

func TestIsRetryable_OnlyTransientType(t *testing.T) {
	transient := New(ComponentCache, "distributed-load", ErrorTypeTransient, errors.New("timeout"))
	validation := New(ComponentDecision, "validate", ErrorTypeValidation, errors.New("bad sample size"))

	assert.True(t, IsRetryable(transient))
	assert.False(t, IsRetryable(validation))
}

func TestGetRootCause_WalksChain(t *testing.T) {
	root := errors.New("disk full")
	mid := WrapWithType(ComponentCache, "save", ErrorTypeCache, root)
	top := Wrap(ComponentDecision, "optimize", mid)

	assert.Equal(t, root, GetRootCause(top))
}

func TestErrorContext_BuildsWithContext(t *testing.T) {
	err := NewErrorContext(ComponentSampling, "dry-run").
		WithType(ErrorTypeSampling).
		WithContext("sample_size", 5).
		New("function raised during sampling")

	decErr, ok := err.(*DecisionError)
	assert.True(t, ok)
	assert.Equal(t, 5, decErr.Context["sample_size"])
	assert.Contains(t, decErr.Error(), "sampling")
}
