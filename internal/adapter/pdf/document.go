// Package pdf reads bulletin documents: the plain text of the first page and
// the tables laid out on every page.
package pdf

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	lpdf "github.com/ledongthuc/pdf"
)

// Opener opens bulletin documents from disk. Open returns the concrete
// *Document; wrap it in pipeline.OpenerFunc to hand it to a pipeline.
type Opener struct{}

// Open parses the PDF at path.
func (Opener) Open(path string) (*Document, error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open document %s", path)
	}
	return &Document{file: f, reader: r}, nil
}

// Document is an opened bulletin PDF.
type Document struct {
	file   *os.File
	reader *lpdf.Reader
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// FirstPageText returns the plain text of page 1.
func (d *Document) FirstPageText() (string, error) {
	if d.reader.NumPage() < 1 {
		return "", errors.New("document has no pages")
	}
	p := d.reader.Page(1)
	if p.V.IsNull() {
		return "", errors.New("page 1 is empty")
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", errors.Wrap(err, "extract page 1 text")
	}
	return text, nil
}

// Tables detects tables on every page, in page order.
func (d *Document) Tables() ([]domain.RawTable, error) {
	var tables []domain.RawTable
	for i := 1; i <= d.reader.NumPage(); i++ {
		glyphs, err := pageGlyphs(d.reader.Page(i))
		if err != nil {
			return nil, errors.Wrapf(err, "page %d", i)
		}
		tables = append(tables, detectTables(i, buildLines(glyphs))...)
	}
	return tables, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}

// pageGlyphs reads positioned text from a page. The content-stream
// interpreter panics on malformed operators, so panics become errors.
func pageGlyphs(p lpdf.Page) (glyphs []glyph, err error) {
	if p.V.IsNull() {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("read content stream: %v", r)
		}
	}()

	for _, t := range p.Content().Text {
		glyphs = append(glyphs, glyph{x: t.X, y: t.Y, w: t.W, size: t.FontSize, s: t.S})
	}
	return glyphs, nil
}
