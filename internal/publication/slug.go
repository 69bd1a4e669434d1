package publication

import (
	"strings"

	"github.com/google/uuid"

	"github.com/bryanpdl/briefly/internal/brief"
)

const suffixLen = 8

// Slugify turns a project name into the readable part of a public slug, with
// "brief" for names that reduce to nothing.
func Slugify(name string) string {
	if base := brief.Slug(name); base != "" {
		return base
	}
	return "brief"
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
}
