package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationErrorsIs(t *testing.T) {
	validation := &ValidationErrors{}
	validation.Add("pattern", ErrEmptyPattern)

	err := validation.Err()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEmptyPattern))
}

func TestValidationErrorsNestedFields(t *testing.T) {
	nested := &ValidationErrors{}
	nested.AddMessage("threading", "length 3 does not match 4 warps")

	validation := &ValidationErrors{}
	validation.Add("looms[0]", nested)

	err := validation.Err()
	require.Error(t, err)

	list, ok := err.(*ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	require.Len(t, list.Errors, 1)
	require.Equal(t, "looms[0].threading", list.Errors[0].Field)
}

func TestValidationErrorsEmpty(t *testing.T) {
	var validation *ValidationErrors
	require.NoError(t, validation.Err())
	require.NoError(t, (&ValidationErrors{}).Err())
}

func TestValidationErrorsMessage(t *testing.T) {
	validation := &ValidationErrors{}
	validation.AddMessage("", "draft is empty")
	validation.AddMessage("tieup", "")
	validation.Add("looms[0].treadling", ErrEmptyPattern)

	err := validation.Err()
	require.EqualError(t, err, "draft is empty; looms[0].treadling: "+ErrEmptyPattern.Error())

	var single ValidationError
	require.True(t, errors.As(err, &single))
	require.Equal(t, "draft is empty", single.Message)
	require.False(t, errors.Is(err, ErrPatternDimension))
}
