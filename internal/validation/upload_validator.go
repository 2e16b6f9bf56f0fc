package validation

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	apierrors "churnmail/internal/errors"
)

// zipMagic is the local-file-header signature shared by every xlsx workbook.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// sniffLen bytes are read from the upload to match content against the
// declared extension. The reader is rewound afterwards.
const sniffLen = 512

// UploadValidator validates multipart spreadsheet uploads before any bytes
// reach the dataset loader.
type UploadValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewUploadValidator creates an upload validator capped at maxBytes.
func NewUploadValidator(maxBytes int64, logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Validate checks the upload's name, size, and leading bytes. On success the
// reader is positioned back at the start of the file.
func (v *UploadValidator) Validate(file io.ReadSeeker, header *multipart.FileHeader) error {
	if header == nil || header.Filename == "" {
		return apierrors.ErrMissingFile
	}

	if header.Size <= 0 {
		return apierrors.NewAppValidationError("uploaded file is empty").
			WithDetail("filename", header.Filename)
	}

	if v.maxBytes > 0 && header.Size > v.maxBytes {
		v.logger.Warn("upload rejected: too large",
			slog.String("filename", header.Filename),
			slog.Int64("size", header.Size),
			slog.Int64("max_bytes", v.maxBytes))
		return apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			"FILE_TOO_LARGE",
			"Uploaded file exceeds the size limit",
			map[string]interface{}{
				"filename":  header.Filename,
				"size":      header.Size,
				"max_bytes": v.maxBytes,
			},
		)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".xlsx", ".csv":
	case ".xls":
		return apierrors.NewAppValidationError(
			"legacy .xls workbooks are not supported; save the sheet as .xlsx and upload again").
			WithDetail("filename", header.Filename)
	default:
		return apierrors.NewAppValidationError(
			fmt.Sprintf("unsupported file type %q; upload a .xlsx or .csv spreadsheet", ext)).
			WithDetail("filename", header.Filename)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return apierrors.WrapError("read upload header", err)
	}
	head = head[:n]

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return apierrors.WrapError("rewind upload", err)
	}

	switch ext {
	case ".xlsx":
		if !bytes.HasPrefix(head, zipMagic) {
			v.logger.Warn("upload rejected: xlsx signature missing",
				slog.String("filename", header.Filename))
			return apierrors.NewAppValidationError(
				"the file does not look like an xlsx workbook").
				WithDetail("filename", header.Filename)
		}
	case ".csv":
		if bytes.HasPrefix(head, zipMagic) {
			return apierrors.NewAppValidationError(
				"the file is a zip archive, not a CSV").
				WithDetail("filename", header.Filename)
		}
		if bytes.IndexByte(head, 0x00) >= 0 {
			return apierrors.NewAppValidationError(
				"the file contains binary data, not CSV text").
				WithDetail("filename", header.Filename)
		}
	}

	v.logger.Debug("upload validated",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))
	return nil
}
