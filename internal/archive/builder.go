// Package archive turns an input file plus its extracted fields into a
// persistable record, names and copies matched files into the processed
// archive, and routes unmatched files into the unprocessed buckets.
package archive

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Inzamam1121/Process-Doc/constants"
	"github.com/Inzamam1121/Process-Doc/internal/document"
	"github.com/Inzamam1121/Process-Doc/internal/entity"
	"github.com/Inzamam1121/Process-Doc/internal/extract"
	"github.com/Inzamam1121/Process-Doc/internal/normalize"
)

var reUnsafe = regexp.MustCompile(`[^0-9A-Za-z_]+`)

// Folders holds the archive locations for one scanned directory. Locations
// are explicit configuration; nothing here is process-global.
type Folders struct {
	Base             string
	Processed        string
	UnprocessedFiles string
	UnprocessedLinks string
}

// InitFolders ensures the archive layout exists under base.
func InitFolders(base string) (Folders, error) {
	f := Folders{
		Base:             base,
		Processed:        filepath.Join(base, constants.ProcessedFolder),
		UnprocessedFiles: filepath.Join(base, constants.UnprocessedFolder, constants.UnprocessedFilesName),
		UnprocessedLinks: filepath.Join(base, constants.UnprocessedFolder, constants.UnprocessedLinksName),
	}
	for _, dir := range []string{f.Processed, f.UnprocessedFiles, f.UnprocessedLinks} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Folders{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return f, nil
}

// Route says what happened to a file during building.
type Route string

const (
	RouteArchived         Route = "archived"
	RouteUnprocessedFiles Route = "unprocessed/files"
	RouteUnprocessedLinks Route = "unprocessed/links"
	RouteSkipped          Route = "skipped" // copy failed; excluded from the batch
)

// Result is the per-file build outcome. Record is nil unless the file was
// archived.
type Result struct {
	Record *entity.PatientRecord
	Route  Route
}

// Builder applies the acceptance policy and performs the copies.
type Builder struct {
	folders Folders
	logger  *slog.Logger
}

func NewBuilder(folders Folders, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{folders: folders, logger: logger}
}

// Build decides, in order: accept when name and DOB normalize (request date
// optional); otherwise retry the footer strategy, accepting only when all
// three fields normalize; otherwise route to an unprocessed bucket. Copy
// failures skip the file; they never abort the folder pass.
func (b *Builder) Build(srcPath string, fields entity.ExtractedFields) Result {
	name := fields.PatientName
	dob := normalize.CanonicalDate(fields.DOB)
	reqDate := normalize.CanonicalDate(fields.RequestDate)

	if name != "" && dob != "" {
		return b.archive(srcPath, name, dob, reqDate)
	}

	// Footer retry tier: all three fields are mandatory here.
	footer, err := extract.FooterFields(srcPath)
	if err == nil {
		name = normalize.CleanName(footer.PatientName)
		dob = normalize.CanonicalDate(footer.DOB)
		reqDate = normalize.CanonicalDate(footer.RequestDate)
		if name != "" && dob != "" && reqDate != "" {
			return b.archive(srcPath, name, dob, reqDate)
		}
	}

	dest := b.folders.UnprocessedFiles
	route := RouteUnprocessedFiles
	if errors.Is(err, document.ErrNotContainer) {
		dest = b.folders.UnprocessedLinks
		route = RouteUnprocessedLinks
	}

	target := filepath.Join(dest, filepath.Base(srcPath))
	if copyErr := copyFile(srcPath, target); copyErr != nil {
		b.logger.Error("archive.route.copy_failed", "src", srcPath, "dest", target, "err", copyErr)
		return Result{Route: RouteSkipped}
	}
	return Result{Route: route}
}

func (b *Builder) archive(srcPath, name, dob, reqDate string) Result {
	baseName := strings.ToLower(name) + "_" + dob
	if reqDate != "" {
		baseName += "_" + reqDate
	}
	safeName := reUnsafe.ReplaceAllString(baseName, "_")
	ext := filepath.Ext(srcPath)

	newName, err := uniqueFilename(b.folders.Processed, safeName, ext)
	if err != nil {
		b.logger.Error("archive.name.failed", "src", srcPath, "err", err)
		return Result{Route: RouteSkipped}
	}
	newPath := filepath.Join(b.folders.Processed, newName)

	if err := copyFile(srcPath, newPath); err != nil {
		b.logger.Error("archive.copy_failed", "src", srcPath, "dest", newPath, "err", err)
		return Result{Route: RouteSkipped}
	}

	first, last := normalize.SplitName(name)
	return Result{
		Route: RouteArchived,
		Record: &entity.PatientRecord{
			PatientFirstName: first,
			PatientLastName:  last,
			DOB:              dob,
			RequestDate:      reqDate,
			OldDocument:      filepath.Base(srcPath),
			NewDocument:      newName,
			OldDocumentPath:  srcPath,
			NewDocumentPath:  newPath,
			IsDeleted:        false,
		},
	}
}

// uniqueFilename appends an incrementing numeric suffix before the extension
// until the name does not exist in dir. Existing archived files are never
// overwritten.
func uniqueFilename(dir, base, ext string) (string, error) {
	candidate := base + ext
	for counter := 1; ; counter++ {
		_, err := os.Stat(filepath.Join(dir, candidate))
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

// copyFile copies src to dest preserving mode and modification time.
func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dest, info.Mode()); err != nil {
		return err
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
