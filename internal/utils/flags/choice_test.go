package flags

import (
	"fmt"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first",
			defaultChoice:  "console",
			choices:        []string{"console", "structured"},
			description:    "Log format.",
			expectedOutput: "`<CONSOLE|structured>` Log format.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "warn",
			choices:        []string{"debug", "info", "warn"},
			expectedOutput: "`<debug|info|WARN>`",
		},
		{
			name:           "duplicates_and_whitespace",
			defaultChoice:  "info",
			choices:        []string{" info ", "info", "", "error"},
			description:    "Level.",
			expectedOutput: "`<INFO|error>` Level.",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestAddChoiceFlagValidatesValues(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedValue string
		expectError   bool
	}{
		{name: "unset", arguments: []string{}, expectedValue: ""},
		{name: "canonical_case", arguments: []string{"--log-format", "STRUCTURED"}, expectedValue: "structured"},
		{name: "rejected", arguments: []string{"--log-format", "xml"}, expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
			var target string
			AddChoiceFlag(flagSet, &target, "log-format", "", []string{"structured", "console"}, "Log format.")

			parseError := flagSet.Parse(testCase.arguments)
			if testCase.expectError {
				require.Error(subtest, parseError)
				require.Contains(subtest, parseError.Error(), "is not one of structured, console")
				return
			}
			require.NoError(subtest, parseError)
			require.Equal(subtest, testCase.expectedValue, target)
			require.Contains(subtest, flagSet.Lookup("log-format").Usage, "<STRUCTURED|console>")
		})
	}
}
