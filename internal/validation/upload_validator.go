package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// allowedExtensions are the upload types the ingestion decoders understand.
// The empty entry admits hints that are MIME types rather than filenames.
var allowedExtensions = map[string]bool{
	"":      true,
	".csv":  true,
	".txt":  true,
	".tsv":  true,
	".xlsx": true,
	".xlsm": true,
}

// UploadValidator validates uploaded dataset files before they reach the
// ingestion pipeline.
type UploadValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewUploadValidator creates an upload validator. maxBytes caps the upload
// size; zero disables the size check.
func NewUploadValidator(logger *slog.Logger, maxBytes int64) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		logger:   logger.With(slog.String("component", "upload_validator")),
		maxBytes: maxBytes,
	}
}

// ValidateUpload checks the upload hint and size. The hint is either a
// filename or a MIME type; only filenames carry an extension to verify.
func (v *UploadValidator) ValidateUpload(hint string, size int64) error {
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Upload exceeds size limit",
			slog.Int64("size", size),
			slog.Int64("limit", v.maxBytes))
		return fmt.Errorf("upload of %d bytes exceeds the %d byte limit", size, v.maxBytes)
	}

	ext := extensionOf(hint)
	if !allowedExtensions[ext] {
		v.logger.Warn("Rejected upload with unsupported extension",
			slog.String("hint", hint),
			slog.String("extension", ext))
		return fmt.Errorf("unsupported file extension %q", ext)
	}
	return nil
}

// extensionOf extracts a lowercased extension from a filename hint. MIME
// type hints (containing a slash) have no extension.
func extensionOf(hint string) string {
	if strings.Contains(hint, "/") {
		return ""
	}
	return strings.ToLower(filepath.Ext(hint))
}

// ValidateOutputDirectory ensures the export directory exists and is
// writable, creating it when missing.
func (v *UploadValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}
