package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ledongthuc/pdf"
)

// MaxDocumentText caps how much extracted text is handed to a model.
const MaxDocumentText = 40000

// minRun is the shortest printable run kept from a legacy .doc file.
const minRun = 4

// Document is an upload read back for a completion request. Images keep
// their bytes; everything else is reduced to text.
type Document struct {
	Key         string
	ContentType string
	Text        string
	Data        []byte
}

func (d Document) IsImage() bool { return IsImage(d.ContentType) }

// Load opens key and extracts its content. A document without readable
// text is a validation error.
func Load(ctx context.Context, u Uploader, key string) (Document, error) {
	ct := ContentTypeOf(key)
	if ct == "" {
		return Document{}, apperrors.Validation("file", "unsupported file %q", key)
	}

	rc, err := u.Open(ctx, key)
	if err != nil {
		return Document{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxUploadSize))
	if err != nil {
		return Document{}, apperrors.Transport("read upload", err)
	}

	doc := Document{Key: key, ContentType: ct}
	if IsImage(ct) {
		doc.Data = data
		return doc, nil
	}
	if doc.Text, err = ExtractText(ct, data); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// ExtractText returns the plain text of a PDF, DOC, DOCX or TXT file,
// truncated to MaxDocumentText.
func ExtractText(contentType string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch {
	case IsText(contentType):
		text = string(data)
	case contentType == "application/pdf":
		text, err = pdfText(data)
	case contentType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		text, err = docxText(data)
	case contentType == "application/msword":
		text = docText(data)
	default:
		return "", apperrors.Validation("file", "cannot read text from %q", contentType)
	}
	if err != nil {
		return "", apperrors.Validation("file", "could not be read: %v", err)
	}

	text = strings.TrimSpace(strings.ToValidUTF8(text, ""))
	if text == "" {
		return "", apperrors.Validation("file", "contains no readable text")
	}
	if len(text) > MaxDocumentText {
		text = text[:MaxDocumentText]
		for !utf8.ValidString(text) {
			text = text[:len(text)-1]
		}
	}
	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		page, err := p.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(page)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// docxText reads the runs of word/document.xml, one line per paragraph.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("word/document.xml missing")
	}
	rc, err := body.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		b      strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(io.LimitReader(rc, MaxUploadSize))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

// docText recovers readable runs from a Word 97-2003 file. The text stream
// is either 8-bit or UTF-16LE, so both readings are tried and the longer
// one wins.
func docText(data []byte) string {
	best := printableRuns(data, 1, 0)
	for _, offset := range []int{0, 1} {
		if s := printableRuns(data, 2, offset); len(s) > len(best) {
			best = s
		}
	}
	return best
}

// printableRuns scans data in steps of width starting at offset. With
// width 2 the second byte of each unit must be zero (UTF-16LE ASCII).
func printableRuns(data []byte, width, offset int) string {
	var (
		b   strings.Builder
		run []byte
	)
	flush := func() {
		if len(bytes.TrimSpace(run)) >= minRun {
			b.Write(bytes.TrimSpace(run))
			b.WriteByte('\n')
		}
		run = run[:0]
	}
	for i := offset; i+width <= len(data); i += width {
		c := data[i]
		if width == 2 && data[i+1] != 0 {
			flush()
			continue
		}
		switch {
		case c >= 0x20 && c < 0x7f:
			run = append(run, c)
		case c == '\t':
			run = append(run, ' ')
		default:
			flush()
		}
	}
	flush()
	return b.String()
}
