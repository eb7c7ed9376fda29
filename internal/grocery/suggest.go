package grocery

import "strings"

const maxSuggestions = 5

// Suggestions filters the home's historical item names by case-insensitive
// substring match against input, excluding an exact (case-insensitive)
// match, and returns at most five in their original order.
func Suggestions(names []string, input string) []string {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return nil
	}

	var out []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if lower == needle {
			continue
		}
		if strings.Contains(lower, needle) {
			out = append(out, name)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}
