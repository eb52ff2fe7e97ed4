package deposit_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/deposit"
)

func TestIOConfirmationPrompter(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		phrase         string
		expectedResult bool
	}{
		{name: "yes", input: "yes\n", expectedResult: true},
		{name: "short_uppercase", input: "Y\n", expectedResult: true},
		{name: "no", input: "n\n", expectedResult: false},
		{name: "empty_input", input: "", expectedResult: false},
		{name: "phrase_exact", input: "publish\n", phrase: "publish", expectedResult: true},
		{name: "phrase_with_spaces", input: "  publish  \n", phrase: "publish", expectedResult: true},
		{name: "phrase_mismatch", input: "yes\n", phrase: "publish", expectedResult: false},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			output := &bytes.Buffer{}
			prompter := deposit.NewIOConfirmationPrompter(strings.NewReader(testCase.input), output)

			var confirmed bool
			var confirmError error
			if len(testCase.phrase) > 0 {
				confirmed, confirmError = prompter.ConfirmPhrase("Type it: ", testCase.phrase)
			} else {
				confirmed, confirmError = prompter.Confirm("Continue? ")
			}
			require.NoError(subtest, confirmError)
			require.Equal(subtest, testCase.expectedResult, confirmed)
			require.NotEmpty(subtest, output.String())
		})
	}
}
