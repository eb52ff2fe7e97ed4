// Package flags provides pflag values shared by release-scholar commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix  = "<"
	choicePlaceholderSuffix  = ">"
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
	choiceTypeName           = "choice"
	invalidChoiceTemplate    = "%q is not one of %s"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ChoiceValue is a string flag restricted to a fixed set of values. Input is
// matched case-insensitively and stored in its canonical spelling.
type ChoiceValue struct {
	target  *string
	choices []string
}

// AddChoiceFlag registers a choice flag on flagSet. An empty defaultValue
// leaves the target unset until the flag is given.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultValue string, choices []string, description string) {
	*target = defaultValue
	value := &ChoiceValue{target: target, choices: choices}
	usageDefault := defaultValue
	if len(usageDefault) == 0 && len(choices) > 0 {
		usageDefault = choices[0]
	}
	flagSet.Var(value, name, FormatChoiceUsage(usageDefault, choices, description))
}

// Set validates rawValue against the allowed choices.
func (value *ChoiceValue) Set(rawValue string) error {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	for _, choice := range value.choices {
		if strings.ToLower(choice) == normalized {
			*value.target = choice
			return nil
		}
	}
	return fmt.Errorf(invalidChoiceTemplate, rawValue, strings.Join(value.choices, ", "))
}

// String returns the current value.
func (value *ChoiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

// Type names the flag value kind in help output.
func (value *ChoiceValue) Type() string {
	return choiceTypeName
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists || len(trimmedChoice) == 0 {
			continue
		}
		seen[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		highlighted = append(highlighted, trimmedChoice)
	}

	return highlighted
}
