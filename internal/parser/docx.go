package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/smartdoc/internal/domain"
)

const docxBody = "word/document.xml"

// ParseDOCX returns the paragraphs of a .docx body joined by newlines.
// Tabs and manual line breaks inside a paragraph are kept.
func ParseDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx archive: %w", domain.ErrInvalidInput, err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%w: docx has no %s", domain.ErrInvalidInput, docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBody, err)
	}
	defer rc.Close()

	return readParagraphs(rc)
}

// readParagraphs walks WordprocessingML: text runs (w:t) accumulate into the current
// paragraph (w:p); each closed paragraph becomes one line. Tabs and breaks count only
// inside a run (w:r); a w:tab under w:pPr/w:tabs is a tab stop definition.
func readParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		paras  []string
		cur    strings.Builder
		inText   bool
		inPara   bool
		runDepth int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed docx xml: %w", domain.ErrInvalidInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				cur.Reset()
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if runDepth > 0 {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if runDepth > 0 {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "t":
				inText = false
			case "p":
				if inPara {
					paras = append(paras, cur.String())
				}
				inPara = false
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return strings.Join(paras, "\n"), nil
}
