package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RandomizedFilename builds a collision-resistant filename with a
// human-readable slug suffix, e.g. "3fa9c1d2-sunset-over-pier.jpg".
// ext must include the leading dot.
func RandomizedFilename(title, ext string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	slug := Slugify(title)
	if slug == "" {
		return random + ext
	}
	return fmt.Sprintf("%s-%s%s", random, slug, ext)
}

// RandomizedSizeFilename names a derived (resized) photo file. The size
// slug is appended so operators can tell renditions apart on disk:
// "9b1f0a2c3d4e5f60-sunset-over-pier_thumb.jpg".
func RandomizedSizeFilename(title, sizeSlug, ext string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	slug := Slugify(title)
	if slug == "" {
		slug = "photo"
	}
	return fmt.Sprintf("%s-%s_%s%s", random, slug, sizeSlug, ext)
}
