// Package storage keeps uploaded resumes and returns durable URLs for them.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/google/uuid"
)

const MaxUploadSize = 10 << 20

var allowedTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"text/plain": ".txt",
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// extTypes maps file extensions back to content types.
var extTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// FileRef points at a stored object. URL is what gets saved as file_url.
type FileRef struct {
	Key         string `json:"key"`
	URL         string `json:"file_url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Uploader interface {
	Upload(ctx context.Context, owner uuid.UUID, name, contentType string, r io.Reader, size int64) (FileRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// CheckUpload validates a resume before it is stored and returns the
// normalized content type. An unknown or generic content type is inferred
// from the file extension.
func CheckUpload(name, contentType string, size int64) (string, error) {
	if size <= 0 {
		return "", apperrors.Validation("file", "is empty")
	}
	if size > MaxUploadSize {
		return "", apperrors.Validation("file", "exceeds %d MiB", MaxUploadSize>>20)
	}

	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if _, ok := allowedTypes[ct]; ok {
		return ct, nil
	}
	if t := ContentTypeOf(name); t != "" {
		return t, nil
	}
	return "", apperrors.Validation("file", "unsupported type %q, upload a PDF, DOC, DOCX, TXT, PNG or JPG file", contentType)
}

// ObjectKey is resumes/<owner>/<random><ext>.
func ObjectKey(owner uuid.UUID, contentType string) string {
	return "resumes/" + owner.String() + "/" + uuid.NewString() + allowedTypes[contentType]
}

// ownedBy reports whether key lives under owner's prefix.
func ownedBy(key string, owner uuid.UUID) bool {
	return strings.HasPrefix(key, "resumes/"+owner.String()+"/") && !strings.Contains(key, "..")
}

// ContentTypeOf infers a supported content type from a file name or key.
// It returns "" for anything that cannot be uploaded.
func ContentTypeOf(name string) string {
	return extTypes[strings.ToLower(path.Ext(name))]
}

// IsText reports whether the content can be read back as plain text.
func IsText(contentType string) bool {
	return contentType == "text/plain"
}

func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// KeyFromURL recovers an object key from a URL produced by an Uploader.
func KeyFromURL(fileURL string, owner uuid.UUID) (string, bool) {
	i := strings.Index(fileURL, "resumes/"+owner.String()+"/")
	if i < 0 {
		return "", false
	}
	key := fileURL[i:]
	if j := strings.IndexAny(key, "?#"); j >= 0 {
		key = key[:j]
	}
	return key, ownedBy(key, owner)
}
