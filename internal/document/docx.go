// Package document reads .docx containers into a flat paragraph, table and
// footer model. Parsing is pure Go (archive/zip + encoding/xml), CGO-free.
package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotContainer marks files whose ZIP container could not be opened at all
// (legacy binary documents, corrupt files, filesystem aliases).
var ErrNotContainer = errors.New("document container could not be opened")

// maxXMLDepth bounds element nesting while decoding, as an XML bomb defense.
const maxXMLDepth = 256

// Table is a grid of row cell texts.
type Table struct {
	Rows [][]string
}

// Document is the parsed view of a .docx file.
type Document struct {
	Paragraphs []string // top-level body paragraphs, table content excluded
	Tables     []Table
	Footers    []string // footer paragraphs across all sections
}

// HasTables reports whether the body contains at least one table.
func (d *Document) HasTables() bool {
	return len(d.Tables) > 0
}

// BodyText joins all body paragraphs with newlines.
func (d *Document) BodyText() string {
	return strings.Join(d.Paragraphs, "\n")
}

// FooterText joins all footer paragraphs with single spaces and collapses
// runs of whitespace, the form the footer pattern is matched against.
func (d *Document) FooterText() string {
	joined := strings.Join(d.Footers, " ")
	return strings.Join(strings.Fields(joined), " ")
}

// Open reads a .docx container from disk. A file that is not a readable ZIP
// archive yields an error wrapping ErrNotContainer.
func Open(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotContainer, err)
	}
	defer r.Close()

	doc := &Document{}

	var bodyFile *zip.File
	var footerFiles []*zip.File
	for _, f := range r.File {
		switch {
		case f.Name == "word/document.xml":
			bodyFile = f
		case strings.HasPrefix(f.Name, "word/footer") && strings.HasSuffix(f.Name, ".xml"):
			footerFiles = append(footerFiles, f)
		}
	}
	if bodyFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	if err := withPart(bodyFile, func(rc io.Reader) error {
		return parseBody(rc, doc)
	}); err != nil {
		return nil, err
	}

	for _, f := range footerFiles {
		if err := withPart(f, func(rc io.Reader) error {
			paras, err := parseParagraphs(rc)
			if err != nil {
				return err
			}
			for _, p := range paras {
				if t := strings.TrimSpace(p); t != "" {
					doc.Footers = append(doc.Footers, t)
				}
			}
			return nil
		}); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func withPart(f *zip.File, fn func(io.Reader) error) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	return fn(rc)
}

// parseBody walks word/document.xml collecting top-level paragraphs and
// tables. Paragraph text inside a table belongs to its cell, not to the
// body paragraph list, matching how word processors expose the two.
func parseBody(r io.Reader, doc *Document) error {
	decoder := xml.NewDecoder(r)

	var (
		depth    int
		inPara   bool
		paraText strings.Builder

		tblDepth  int
		inCell    bool
		cellPara  strings.Builder
		cellParts []string
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "tbl":
				tblDepth++
				if tblDepth == 1 {
					doc.Tables = append(doc.Tables, Table{})
				}
			case "tr":
				if tblDepth == 1 {
					tbl := &doc.Tables[len(doc.Tables)-1]
					tbl.Rows = append(tbl.Rows, nil)
				}
			case "tc":
				if tblDepth == 1 {
					inCell = true
					cellPara.Reset()
					cellParts = cellParts[:0]
				}
			case "p":
				if tblDepth == 0 {
					inPara = true
					paraText.Reset()
				}
			}

		case xml.CharData:
			switch {
			case inCell:
				cellPara.Write(t)
			case inPara:
				paraText.Write(t)
			}

		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "tbl":
				if tblDepth > 0 {
					tblDepth--
				}
			case "tc":
				if tblDepth == 1 && inCell {
					cellParts = append(cellParts, cellPara.String())
					tbl := &doc.Tables[len(doc.Tables)-1]
					row := &tbl.Rows[len(tbl.Rows)-1]
					*row = append(*row, strings.TrimSpace(strings.Join(cellParts, "\n")))
					inCell = false
				}
			case "p":
				switch {
				case inCell:
					// paragraph break inside a cell
					cellParts = append(cellParts, cellPara.String())
					cellPara.Reset()
				case inPara && tblDepth == 0:
					doc.Paragraphs = append(doc.Paragraphs, paraText.String())
					inPara = false
				}
			}
		}
	}

	return nil
}

// parseParagraphs extracts paragraph texts from a footer (or similar) part.
func parseParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		depth  int
		inPara bool
		text   strings.Builder
		out    []string
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode part: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return nil, fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			if t.Name.Local == "p" {
				inPara = true
				text.Reset()
			}
		case xml.CharData:
			if inPara {
				text.Write(t)
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "p" && inPara {
				out = append(out, text.String())
				inPara = false
			}
		}
	}

	return out, nil
}
