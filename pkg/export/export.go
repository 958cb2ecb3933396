// Package export writes mindmap documents and scenes to files: JSON
// for lossless interchange, PNG for the current view, PDF for print.
// Each exporter fails independently with its own wrapped error so one
// broken format never blocks the others.
package export

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ritzau/meetmap/pkg/model"
)

// JSON writes the document verbatim. The output parses back into an
// identical document, so a meetmap export can be re-opened losslessly.
func JSON(doc *model.Document, w io.Writer) error {
	if doc == nil {
		return errors.New("no document loaded")
	}
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

var slugPattern = regexp.MustCompile("[^a-z0-9]+")

// Slug reduces a document title to a filename-safe fragment
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = strings.Trim(s[:40], "-")
	}
	if s == "" {
		return "mindmap"
	}
	return s
}

// Filename builds an export filename from the document title: slug,
// timestamp, and a short random id so repeated exports never collide.
func Filename(title, ext string) string {
	stamp := time.Now().Format("20060102-150405")
	short := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%s-%s.%s", Slug(title), stamp, short, strings.TrimPrefix(ext, "."))
}
