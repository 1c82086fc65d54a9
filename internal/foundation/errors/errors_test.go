package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "network.yml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		assert.Equal(t, "network.yml", file)
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", ConfigError("test error").Build())

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryConfig))
		assert.False(t, HasCategory(err, CategoryBuild))
		assert.Equal(t, CategoryConfig, GetCategory(err))
	})

	t.Run("Unclassified defaults to internal", func(t *testing.T) {
		assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
		assert.False(t, IsClassified(errors.New("plain")))
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := WrapError(originalErr, CategoryBuild, "copy failed").
		WithContext("file", "docs/logo.png").
		Build()

	assert.True(t, errors.Is(err, originalErr))
	assert.Equal(t, "[build] copy failed: permission denied", err.Error())
	assert.Equal(t, SeverityError, err.Severity())

	withMore := err.WithContext("output", "site/logo.png")
	_, hasOutput := err.Context().Get("output")
	assert.False(t, hasOutput, "WithContext must not mutate the receiver")
	out, _ := withMore.Context().GetString("output")
	assert.Equal(t, "site/logo.png", out)

	assert.True(t, SiteConfigError("x").Build().Severity() == SeverityWarning)
	assert.True(t, BuildError("x").Build().IsFatal())
}

func TestErrorContextMerge(t *testing.T) {
	var empty ErrorContext
	other := ErrorContext{"a": 1}
	assert.Equal(t, other, empty.Merge(other))

	base := ErrorContext{"a": 1, "b": 2}
	merged := base.Merge(ErrorContext{"b": 3})
	assert.Equal(t, ErrorContext{"a": 1, "b": 3}, merged)
	assert.Equal(t, 2, base["b"])
}
