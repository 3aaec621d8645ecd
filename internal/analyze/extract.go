package analyze

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

// ExtractText converts document bytes to plain text. PDFs go through the pdf
// reader, HTML through goquery; anything else is taken as-is. Extraction
// never fails: a document with no recoverable text yields "".
func ExtractText(body []byte) string {
	switch {
	case bytes.HasPrefix(body, []byte("%PDF")):
		return extractPDF(body)
	case looksLikeHTML(body):
		return extractHTML(body)
	default:
		return normalizeWhitespace(string(body))
	}
}

func extractPDF(body []byte) (text string) {
	// The pdf package panics on some malformed files; a scanned or broken
	// document degrades to empty text instead of killing the worker.
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return ""
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return ""
	}
	return normalizeWhitespace(buf.String())
}

func extractHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style").Remove()
	return normalizeWhitespace(doc.Text())
}

func looksLikeHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 256 {
		head = head[:256]
	}
	return bytes.Contains(head, []byte("<html")) ||
		bytes.Contains(head, []byte("<!doctype html")) ||
		bytes.Contains(head, []byte("<body"))
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
