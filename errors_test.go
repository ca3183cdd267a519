package splitwrap_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/splitwrap"
)

func TestConsistencyError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := splitwrap.NewConsistencyError("chunk count", 3, 2)
		assert.Equal(t, "splitwrap: internal error: chunk count is 2, expected 3", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := splitwrap.NewConsistencyError("partitioned file count", 10, 9)
		assert.True(t, errors.Is(err, splitwrap.ErrConsistency))
		assert.False(t, errors.Is(err, splitwrap.ErrConfig))
	})

	t.Run("IsConsistencyError", func(t *testing.T) {
		err := splitwrap.NewConsistencyError("chunk count", 1, 0)
		assert.True(t, splitwrap.IsConsistencyError(err))

		// Wrapped error
		wrapped := fmt.Errorf("plan: %w", err)
		assert.True(t, splitwrap.IsConsistencyError(wrapped))

		// Sentinel error
		assert.True(t, splitwrap.IsConsistencyError(splitwrap.ErrConsistency))

		assert.False(t, splitwrap.IsConsistencyError(errors.New("other error")))
		assert.False(t, splitwrap.IsConsistencyError(nil))
	})
}

func TestEnvironmentError(t *testing.T) {
	err := splitwrap.NewEnvironmentError("windows", "Debug", "debug builds are not supported")
	assert.Equal(t, "splitwrap: unsupported environment windows/Debug: debug builds are not supported", err.Error())
	assert.True(t, errors.Is(err, splitwrap.ErrEnvironment))
	assert.True(t, splitwrap.IsEnvironmentError(fmt.Errorf("startup: %w", err)))
	assert.False(t, splitwrap.IsEnvironmentError(nil))

	bare := &splitwrap.EnvironmentError{Platform: "windows", BuildType: "Debug"}
	assert.Equal(t, "splitwrap: unsupported environment windows/Debug", bare.Error())
}

func TestCollaboratorError(t *testing.T) {
	t.Run("with module", func(t *testing.T) {
		cause := errors.New("exit status 1")
		err := splitwrap.NewCollaboratorError("compile", "_mod_2", cause)
		assert.Equal(t, "splitwrap: compile _mod_2: exit status 1", err.Error())
		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, splitwrap.ErrCollaborator))
	})

	t.Run("without module", func(t *testing.T) {
		err := splitwrap.NewCollaboratorError("resolve", "", errors.New("boom"))
		assert.Equal(t, "splitwrap: resolve: boom", err.Error())
	})

	t.Run("IsCollaboratorError", func(t *testing.T) {
		err := splitwrap.NewCollaboratorError("generate", "_mod", errors.New("boom"))
		assert.True(t, splitwrap.IsCollaboratorError(errors.Join(errors.New("other"), err)))
		assert.False(t, splitwrap.IsCollaboratorError(errors.New("other")))
		assert.False(t, splitwrap.IsCollaboratorError(nil))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("with value", func(t *testing.T) {
		err := splitwrap.NewConfigError("NumModules", 0, "must be at least 1")
		assert.Contains(t, err.Error(), "NumModules")
		assert.Contains(t, err.Error(), "value: 0")
		assert.Contains(t, err.Error(), "must be at least 1")
	})

	t.Run("without value", func(t *testing.T) {
		err := splitwrap.NewConfigError("SourceDir", nil, "cannot be empty")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is and helper", func(t *testing.T) {
		err := splitwrap.NewConfigError("Threads", -1, "must be at least 1")
		assert.True(t, errors.Is(err, splitwrap.ErrConfig))
		assert.True(t, splitwrap.IsConfigError(err))
		assert.False(t, splitwrap.IsConfigError(errors.New("other")))
	})
}
