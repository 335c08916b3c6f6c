// Package config loads and validates the yugram configuration from defaults,
// an optional YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrConfiguration wraps every loading and validation failure.
var ErrConfiguration = errors.New("configuration error")

// ParseChatIDs parses a comma-separated list of chat IDs. Blank entries are
// ignored, so "" yields an empty list.
func ParseChatIDs(csv string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
