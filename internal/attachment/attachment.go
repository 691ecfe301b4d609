// Package attachment loads user-selected files into memory and identifies
// their content type by sniffing, not by file extension.
package attachment

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// PDFMIMEType is the only content type accepted for upload.
const PDFMIMEType = "application/pdf"

// DefaultMaxBytes bounds a single file read when no limit is configured.
const DefaultMaxBytes = 20 << 20

// File is an in-memory file ready to be sent to the backend.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// IsPDF reports whether the sniffed content type is application/pdf.
func (f File) IsPDF() bool {
	return f.MIMEType == PDFMIMEType
}

// Size returns the file length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// New builds a File from raw bytes, detecting the content type.
func New(name string, data []byte) File {
	return File{
		Name:     filepath.Base(name),
		MIMEType: detect(data),
		Data:     data,
	}
}

// Load reads the file at path. maxBytes <= 0 uses DefaultMaxBytes.
func Load(path string, maxBytes int64) (File, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("attachment: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("attachment: %s is a directory", path)
	}
	if info.Size() > maxBytes {
		return File{}, fmt.Errorf("attachment: %s too large: %d bytes (max %d)", path, info.Size(), maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("attachment: read %s: %w", path, err)
	}
	return New(path, data), nil
}

// LoadAll loads every path, stopping at the first error.
func LoadAll(paths []string, maxBytes int64) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		f, err := Load(p, maxBytes)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// FromMultipart reads an uploaded multipart part.
func FromMultipart(fh *multipart.FileHeader, maxBytes int64) (File, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if fh.Size > maxBytes {
		return File{}, fmt.Errorf("attachment: %s too large: %d bytes (max %d)", fh.Filename, fh.Size, maxBytes)
	}
	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("attachment: open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return File{}, fmt.Errorf("attachment: read %s: %w", fh.Filename, err)
	}
	if int64(len(data)) > maxBytes {
		return File{}, fmt.Errorf("attachment: %s too large (max %d bytes)", fh.Filename, maxBytes)
	}
	return New(fh.Filename, data), nil
}

// PDFs returns the subset of files whose content is a PDF, preserving order.
func PDFs(files []File) []File {
	var out []File
	for _, f := range files {
		if f.IsPDF() {
			out = append(out, f)
		}
	}
	return out
}

// detect returns the base MIME type (parameters stripped).
func detect(data []byte) string {
	mt := mimetype.Detect(data)
	if mt.Is(PDFMIMEType) {
		return PDFMIMEType
	}
	base, _, _ := strings.Cut(mt.String(), ";")
	return base
}
