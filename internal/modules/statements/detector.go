package statements

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/aristath/fundrisk/internal/domain"
)

const iso20022NamespacePrefix = "urn:iso:std:iso:20022:tech:xsd:"

// Detect classifies a document root into one of the known schema variants.
// It only looks at the root tag, its namespace and the presence of the
// variant's anchor container; it never validates content.
func Detect(root *etree.Element) domain.FormatTag {
	if root == nil {
		return domain.FormatUnknown
	}

	if strings.HasPrefix(root.NamespaceURI(), iso20022NamespacePrefix) {
		return domain.FormatISO20022
	}
	if root.Tag == "Document" && root.FindElement(".//BalForAcct") != nil {
		return domain.FormatISO20022
	}

	if strings.HasPrefix(strings.ToLower(root.Tag), "arquivoposicao") {
		return domain.FormatSimple
	}
	if root.Tag == "header" || root.FindElement(".//header") != nil {
		return domain.FormatSimple
	}

	return domain.FormatUnknown
}
