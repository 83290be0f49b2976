package dejadiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AndreyAkinshin/dejadiff/internal/errors"
	"github.com/AndreyAkinshin/dejadiff/pkg/dejadiff"
)

func TestExitCodeValues(t *testing.T) {
	assert.Equal(t, 0, dejadiff.ExitSuccess)
	assert.Equal(t, 1, dejadiff.ExitFailure)
	assert.Equal(t, 2, dejadiff.ExitConfigError)
	assert.Equal(t, 3, dejadiff.ExitEnvError)
}

// The public constants must stay in sync with the internal ones the CLI uses.
func TestExitCodesMatchInternal(t *testing.T) {
	assert.Equal(t, errors.ExitSuccess, dejadiff.ExitSuccess)
	assert.Equal(t, errors.ExitRuntimeError, dejadiff.ExitFailure)
	assert.Equal(t, errors.ExitConfigError, dejadiff.ExitConfigError)
	assert.Equal(t, errors.ExitEnvironmentError, dejadiff.ExitEnvError)
}
