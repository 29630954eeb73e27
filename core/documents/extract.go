package documents

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// NoTextExtracted is the text kept for files whose text cannot be read.
const NoTextExtracted = "File type not supported for text extraction."

// AllowedTypes are the media types accepted for upload.
var AllowedTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

// TypeOf returns the media type of a file from its name, without parameters.
func TypeOf(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".md", ".csv":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	t := mime.TypeByExtension(filepath.Ext(fileName))
	if t == "" {
		return "application/octet-stream"
	}
	return mediaType(t)
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// Allowed reports whether contentType may be uploaded.
func Allowed(contentType string) bool {
	mt := mediaType(contentType)
	for _, t := range AllowedTypes {
		if mt == t {
			return true
		}
	}
	return false
}

// ExtractText returns the text of plain text files; other files get NoTextExtracted.
func ExtractText(fileName string, content []byte) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".md", ".csv":
		text := string(content)
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "")
		}
		return strings.TrimPrefix(text, "\ufeff")
	}
	return NoTextExtracted
}
