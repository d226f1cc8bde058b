package constants

import "strings"

// AllowedExtensions holds the document extensions eligible for processing.
// Actual content is decided by classification, not by extension.
var AllowedExtensions = map[string]struct{}{
	"doc":  {},
	"docx": {},
}

// Archive layout folder names under each scanned directory.
const (
	ProcessedFolder      = "Processed"
	UnprocessedFolder    = "Unprocessed"
	UnprocessedFilesName = "Files"
	UnprocessedLinksName = "Links"
)

// ManifestFilename is the per-folder scan manifest written by the watcher.
const ManifestFilename = "directory_info.json"

// ExcludedDirs are folder names the watcher never descends into.
var ExcludedDirs = map[string]struct{}{
	ProcessedFolder:   {},
	UnprocessedFolder: {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExt reports whether an extension is eligible for processing.
func AllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
