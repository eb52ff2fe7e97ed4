package pathutils_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/release-scholar/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	homeDirectory := filepath.Join(string(filepath.Separator), "home", "scholar")
	testCases := []struct {
		name         string
		provider     pathutils.HomeDirectoryProvider
		input        string
		expectedPath string
	}{
		{name: "bare_tilde", input: "~", expectedPath: homeDirectory},
		{name: "tilde_slash", input: "~/papers/engine", expectedPath: filepath.Join(homeDirectory, "papers", "engine")},
		{name: "other_user", input: "~ada/engine", expectedPath: "~ada/engine"},
		{name: "relative", input: "engine", expectedPath: "engine"},
		{name: "empty", input: "", expectedPath: ""},
		{
			name: "unknown_home",
			provider: func() (string, error) {
				return "", errors.New("no home")
			},
			input:        "~/engine",
			expectedPath: "~/engine",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			provider := testCase.provider
			if provider == nil {
				provider = func() (string, error) { return homeDirectory, nil }
			}
			expander := pathutils.NewHomeExpanderWithProvider(provider)
			require.Equal(subtest, testCase.expectedPath, expander.Expand(testCase.input))
		})
	}
}
