package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// fromDOCX extracts the raw text of a Word document. A .docx is a zip
// archive; the body lives in word/document.xml. We walk the XML token
// stream collecting character data and emit a newline per paragraph, which
// is enough for embedding purposes (no styling, tables flatten in order).
func fromDOCX(data []byte) (*Result, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening docx archive: %v", err)
	}

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("docx archive has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("error reading document body: %v", err)
	}
	defer rc.Close()

	text, err := docxBodyText(rc)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text}, nil
}

func docxBodyText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("error decoding document body: %v", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			// w:t holds run text; w:tab and w:br are whitespace markers.
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
