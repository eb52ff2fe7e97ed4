package releaseerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/releaseerrors"
)

func TestErrorKindsMatchThroughWrapping(testInstance *testing.T) {
	testCases := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		{
			name:     "repository_direct",
			err:      releaseerrors.New(releaseerrors.KindRepository, "open", errors.New("not a git repository")),
			target:   releaseerrors.ErrRepository,
			expected: true,
		},
		{
			name:     "parse_wrapped",
			err:      fmt.Errorf("citation: %w", releaseerrors.New(releaseerrors.KindParse, "decode", errors.New("bad yaml"))),
			target:   releaseerrors.ErrParse,
			expected: true,
		},
		{
			name:     "kind_mismatch",
			err:      releaseerrors.New(releaseerrors.KindIO, "write", errors.New("disk full")),
			target:   releaseerrors.ErrConfig,
			expected: false,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, errors.Is(testCase.err, testCase.target))
		})
	}
}

func TestErrorMessageAndKindOf(testInstance *testing.T) {
	cause := errors.New("permission denied")
	err := releaseerrors.New(releaseerrors.KindIO, "write checksums", cause)

	require.Equal(testInstance, "IoError: write checksums: permission denied", err.Error())
	require.ErrorIs(testInstance, err, cause)

	kind, found := releaseerrors.KindOf(fmt.Errorf("outer: %w", err))
	require.True(testInstance, found)
	require.Equal(testInstance, releaseerrors.KindIO, kind)

	_, found = releaseerrors.KindOf(cause)
	require.False(testInstance, found)
}
