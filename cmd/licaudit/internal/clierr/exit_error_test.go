package clierr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bartekus/licaudit/internal/scanerr"
)

func TestExitCodeOf(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"explicit", New(ExitUnapproved, "unapproved"), 1},
		{"zero normalised", New(0, "x"), 1},
		{"wrapped explicit", Wrap(ExitConfig, "bad", cause), 2},
		{"configuration", scanerr.Configf("bad flag"), ExitConfig},
		{"other", cause, ExitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ExitCodeOf(tt.err))
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ExitInternal, "scan failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "scan failed: boom", err.Error())
	assert.Equal(t, "3 unapproved", Newf(1, "%d unapproved", 3).Error())
}
