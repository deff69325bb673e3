package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := stderrors.New("video unavailable")

	err := ProbeFailed("https://twitter.com/alice/status/1", cause)
	assert.Equal(t, "probe_failed (https://twitter.com/alice/status/1): video unavailable", err.Error())

	err = SearchFailed("decode response", cause)
	assert.Equal(t, "search_failed: decode response: video unavailable", err.Error())
}

func TestIsKindThroughWrapping(t *testing.T) {
	base := TransferFailed("https://twitter.com/bob/status/2", stderrors.New("exit status 1"))
	wrapped := fmt.Errorf("candidate 2: %w", base)

	assert.True(t, IsKind(wrapped, KindTransferFailed))
	assert.False(t, IsKind(wrapped, KindProbeFailed))
	assert.False(t, IsKind(stderrors.New("plain"), KindTransferFailed))
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := DirectoryCreationFailed("/data/out", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"search", SearchFailed("boom", nil), true},
		{"directory", DirectoryCreationFailed("/x", nil), true},
		{"probe", ProbeFailed("u", nil), false},
		{"transfer", TransferFailed("u", nil), false},
		{"plain", stderrors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}
