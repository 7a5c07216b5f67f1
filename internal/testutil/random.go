package testutil

import (
	"strings"

	"github.com/google/uuid"
)

// RandomID returns prefix joined with a short random suffix. Tests use it
// to generate unique student IDs so they can run in any order against a
// shared database.
func RandomID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "-" + suffix
}
