// Package validate gates every upload before it reaches the OCR pipeline.
// Checks run in a fixed order and short-circuit on the first failure:
// size, binary signature, structural decode, content scan. The declared
// filename and MIME type are never trusted; classification relies on the
// bytes themselves.
package validate

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"regexp"
	"strings"

	// Register decoders for every supported upload format.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pictext/pictext/internal/apierr"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Limits bounds the accepted upload sizes.
type Limits struct {
	MaxFileSize int64 // bytes
	MinFileSize int64 // bytes; buffers smaller than this cannot be valid images
}

// DefaultLimits returns the standard upload limits (10MB max).
func DefaultLimits() Limits {
	return Limits{
		MaxFileSize: 10 * 1024 * 1024,
		MinFileSize: 100,
	}
}

// Upload is a validated upload: the decoded image plus what the bytes
// actually are, independent of what the client declared.
type Upload struct {
	Image    image.Image
	Format   string // detected from magic bytes: jpeg, png, gif, webp, bmp, tiff
	Filename string // sanitized declared filename
}

type signature struct {
	prefix []byte
	format string
}

// Magic byte signatures for the supported image formats.
var imageSignatures = []signature{
	{[]byte{0xff, 0xd8, 0xff}, "jpeg"},
	{[]byte("\x89PNG\r\n\x1a\n"), "png"},
	{[]byte("GIF87a"), "gif"},
	{[]byte("GIF89a"), "gif"},
	{[]byte("BM"), "bmp"},
	{[]byte("II*\x00"), "tiff"},
	{[]byte("MM\x00*"), "tiff"},
}

// Byte patterns that indicate embedded executable or script payloads.
var suspiciousPatterns = [][]byte{
	[]byte("<script"),
	[]byte("javascript:"),
	[]byte("data:text/html"),
	[]byte("<?php"),
	[]byte("<%"),
}

// suspiciousScanWindow bounds how much of the buffer the content scan reads.
const suspiciousScanWindow = 1024

// DetectFormat inspects the buffer's magic bytes and returns the image
// format, or "" when the signature matches no supported format.
func DetectFormat(content []byte) string {
	if len(content) < 8 {
		return ""
	}
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(content, sig.prefix) {
			return sig.format
		}
	}
	// WebP is RIFF....WEBP.
	if bytes.HasPrefix(content, []byte("RIFF")) && len(content) >= 12 && bytes.Equal(content[8:12], []byte("WEBP")) {
		return "webp"
	}
	return ""
}

// HasSuspiciousContent scans the head of the buffer for embedded
// script/executable signatures (polyglot file defense).
func HasSuspiciousContent(content []byte) bool {
	head := content
	if len(head) > suspiciousScanWindow {
		head = head[:suspiciousScanWindow]
	}
	lowered := bytes.ToLower(head)
	for _, pattern := range suspiciousPatterns {
		if bytes.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
var unsafeChars = regexp.MustCompile(`[<>:"|?*]`)

// SanitizeFilename strips path components, control characters and shell
// metacharacters from a client-declared filename, and caps its length.
func SanitizeFilename(name string) string {
	if name == "" {
		return "unnamed"
	}
	name = strings.ReplaceAll(name, `\`, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = controlChars.ReplaceAllString(name, "")
	name = unsafeChars.ReplaceAllString(name, "")

	const maxLen = 255
	if len(name) > maxLen {
		ext := ""
		if dot := strings.LastIndex(name, "."); dot >= 0 {
			ext = name[dot:]
		}
		name = name[:maxLen-len(ext)] + ext
	}
	if name == "" {
		return "unnamed"
	}
	return name
}

// Fingerprint computes the content-addressable cache key for an upload:
// the hex SHA-256 of the raw bytes. Identical bytes always produce the
// same fingerprint; the declared filename and MIME type play no part.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// File validates an uploaded buffer and decodes it. The checks run in
// order and stop at the first failure; a rejection means no engine work
// happens for this upload. Validation is pure and repeatable.
func File(content []byte, filename string, limits Limits) (*Upload, error) {
	const op = "validate.File"
	safe := SanitizeFilename(filename)

	if int64(len(content)) > limits.MaxFileSize {
		return nil, apierr.New(op, apierr.CodeFileTooLarge,
			fmt.Sprintf("File too large. Maximum size is %dMB", limits.MaxFileSize/(1024*1024)))
	}
	if len(content) == 0 {
		return nil, apierr.New(op, apierr.CodeInvalidImage, "Empty file uploaded")
	}
	if int64(len(content)) < limits.MinFileSize {
		return nil, apierr.New(op, apierr.CodeInvalidImage,
			fmt.Sprintf("File too small to be a valid image. Minimum size is %d bytes", limits.MinFileSize))
	}

	format := DetectFormat(content)
	if format == "" {
		return nil, apierr.New(op, apierr.CodeInvalidFileType,
			"Invalid file type. Supported formats: JPG, JPEG, PNG, GIF, WebP, BMP, TIFF")
	}

	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, apierr.Wrap(op, apierr.CodeInvalidImage, "Invalid or corrupted image file", err)
	}

	if HasSuspiciousContent(content) {
		return nil, apierr.New(op, apierr.CodeSuspiciousContent, "File rejected due to suspicious content")
	}

	return &Upload{Image: img, Format: format, Filename: safe}, nil
}
