package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationResult_Err(t *testing.T) {
	res := newValidationResult()
	assert.True(t, res.Valid)
	assert.NoError(t, res.Err())

	res.add(CodeMissingName, "name", "name is required")
	assert.False(t, res.Valid)

	err := res.Err()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Issues, 1)
	assert.Equal(t, "validation failed: MissingName: name is required", err.Error())
}

func TestHasIssue(t *testing.T) {
	err := fmt.Errorf("commit configuration %q: %w", "web", invalid(CodeInsufficientFunds, "billing_mode", "too expensive"))

	assert.True(t, HasIssue(err, CodeInsufficientFunds))
	assert.False(t, HasIssue(err, CodeMissingName))
	assert.False(t, HasIssue(errors.New("boom"), CodeInsufficientFunds))
	assert.False(t, HasIssue(nil, CodeInsufficientFunds))
}

func TestValidationError_JoinsMessages(t *testing.T) {
	res := newValidationResult()
	res.add(CodeMissingName, "name", "name is required")
	res.add(CodeInvalidQuantity, "quantity", "quantity must be at least %d, got %d", 1, 0)

	err := res.Err()
	assert.Contains(t, err.Error(), "MissingName: name is required; InvalidQuantity: quantity must be at least 1, got 0")
}
