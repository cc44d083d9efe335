package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/uni-regulations/rag-core/internal/ragerr"
)

// extractDOCX reads word/document.xml out of the OOXML zip container and
// concatenates its text runs, inserting a newline at each paragraph
// boundary. No third-party OOXML library is wired here: the format is a
// plain zip of XML, and encoding/xml's streaming decoder over
// archive/zip's reader is the standard idiom for this specific extraction
// (text content only, not layout/styles) — none of the example repos parse
// OOXML, so there is no pack precedent to follow for a richer library.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extractor: open docx zip: %w", err)
	}

	var docXML *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML = f
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("extractor: docx missing word/document.xml: %w", ragerr.ErrExtractionFailed)
	}

	rc, err := docXML.Open()
	if err != nil {
		return "", fmt.Errorf("extractor: open document.xml: %w", err)
	}
	defer rc.Close()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("extractor: parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				sb.WriteString("\n")
			}
		case xml.CharData:
			sb.Write(t)
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("extractor: docx contained no text: %w", ragerr.ErrExtractionFailed)
	}
	return sb.String(), nil
}
