package statements

import (
	"fmt"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// ParseDocument parses raw XML into an element tree and returns its root.
// Declared legacy encodings (ANBIMA files are commonly ISO-8859-1) are decoded.
func ParseDocument(source string, data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel

	if err := doc.ReadFromBytes(data); err != nil {
		return nil, structural(source, fmt.Errorf("%w: %v", ErrMalformedXML, err))
	}

	root := doc.Root()
	if root == nil {
		return nil, structural(source, fmt.Errorf("%w: document has no root element", ErrMalformedXML))
	}
	return root, nil
}
