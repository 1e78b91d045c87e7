package normalization

import (
  "strings"
)

func ParseInputString(input string) string {
  normalized := strings.ToLower(strings.TrimSpace(input))
  return normalized
}

func ParseInputStringPtr(input *string) *string {
  if input == nil {
    return nil
  }
  normalized := strings.ToLower(strings.TrimSpace(*input))
  return &normalized
}

// TrimOnly keeps the caller's casing; used for free-text fields where
// lowercasing would mangle display values.
func TrimOnly(input string) string {
  return strings.TrimSpace(input)
}
