package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/forwarder/internal/apperr"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Validation", apperr.Validation("monto", "must be positive"), "validation_error"},
		{"WrappedLinkage", fmt.Errorf("create payment: %w", apperr.LinkageBlocked("over allocation")), "linkage_blocked"},
		{"Transient", apperr.Transient(errors.New("503")), "upstream_transient"},
		{"NotFound", apperr.NotFound("invoice"), "not_found"},
		{"Unknown", errors.New("boom"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Code(tt.err))
		})
	}
}

func TestIsRetriable(t *testing.T) {
	assert.True(t, apperr.IsRetriable(fmt.Errorf("list messages: %w", apperr.Transient(errors.New("timeout")))))
	assert.False(t, apperr.IsRetriable(apperr.Fatal(errors.New("401"))))
	assert.False(t, apperr.IsRetriable(errors.New("boom")))
}

type paymentInput struct {
	Reference string `json:"referencia" validate:"required"`
	Interval  int    `json:"interval_minutes" validate:"gte=1,lte=1440"`
}

func TestStruct(t *testing.T) {
	err := apperr.Struct(paymentInput{Interval: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	fields := apperr.FieldsOf(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "referencia", fields[0].Field)
	assert.Equal(t, "interval_minutes", fields[1].Field)

	assert.NoError(t, apperr.Struct(paymentInput{Reference: "TR-1", Interval: 15}))
}

func TestFields_Err(t *testing.T) {
	var f apperr.Fields
	assert.NoError(t, f.Err())

	f.Add("monto", "must not be negative")
	err := f.Err()
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Len(t, apperr.FieldsOf(err), 1)
}
