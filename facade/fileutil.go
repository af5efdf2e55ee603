package facade

import (
	"fmt"
	"strings"
)

var sizeNames = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize renders a byte count in human-readable form.
func FormatFileSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}

	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(sizeNames)-1 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", size, sizeNames[i])
}

const unsafeFilenameChars = `<>:"/\|?*`

// SanitizeFilename replaces characters that are unsafe in file names and
// guarantees a non-empty result.
func SanitizeFilename(filename string) string {
	for _, ch := range unsafeFilenameChars {
		filename = strings.ReplaceAll(filename, string(ch), "_")
	}
	filename = strings.Trim(filename, " .")
	if filename == "" {
		return "unnamed_file"
	}
	return filename
}
