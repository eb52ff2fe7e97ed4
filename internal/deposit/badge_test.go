package deposit_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/deposit"
)

const expectedBadgeConstant = "[![DOI](https://zenodo.org/badge/DOI/10.5281/zenodo.1.svg)](https://doi.org/10.5281/zenodo.1)"

func TestInsertDOIBadge(testInstance *testing.T) {
	testCases := []struct {
		name            string
		readme          string
		expectedReadme  string
		expectedChanged bool
	}{
		{
			name:            "after_heading",
			readme:          "# Demo\nText\n",
			expectedReadme:  "# Demo\n\n" + expectedBadgeConstant + "\nText\n",
			expectedChanged: true,
		},
		{
			name:            "no_heading",
			readme:          "Text\n",
			expectedReadme:  expectedBadgeConstant + "\n\nText\n",
			expectedChanged: true,
		},
		{
			name:            "existing_badge",
			readme:          "# Demo\n[![DOI](https://zenodo.org/badge/DOI/x.svg)](https://doi.org/x)\n",
			expectedReadme:  "# Demo\n[![DOI](https://zenodo.org/badge/DOI/x.svg)](https://doi.org/x)\n",
			expectedChanged: false,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			updated, changed := deposit.InsertDOIBadge(testCase.readme, "10.5281/zenodo.1", "")
			require.Equal(subtest, testCase.expectedChanged, changed)
			require.Equal(subtest, testCase.expectedReadme, updated)
		})
	}
}

func TestDOIURLPrefersServiceURL(testInstance *testing.T) {
	require.Equal(testInstance, "https://example.org/doi", deposit.DOIURL("10.1/x", "https://example.org/doi"))
	require.Equal(testInstance, "https://doi.org/10.1/x", deposit.DOIURL("10.1/x", " "))
}
