package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"BCVRates/internal/domain"
	"BCVRates/internal/ports"
)

const dateMarkerClass = "date-display-single"

type rateMarker struct {
	id   string
	code domain.Currency
}

// rateMarkers lists the element ids the page uses for each currency block.
var rateMarkers = []rateMarker{
	{id: "dolar", code: domain.USD},
	{id: "euro", code: domain.EUR},
	{id: "yuan", code: domain.CNY},
	{id: "lira", code: domain.TRY},
	{id: "rublo", code: domain.RUB},
}

// BCVExtractor reads the publication date and reference rates from the
// exchange-rate page of the Banco Central de Venezuela.
type BCVExtractor struct {
	logger *slog.Logger
}

var (
	_ ports.DateExtractor = (*BCVExtractor)(nil)
	_ ports.RateExtractor = (*BCVExtractor)(nil)
)

// NewBCVExtractor returns an extractor; logger may be nil.
func NewBCVExtractor(logger *slog.Logger) *BCVExtractor {
	return &BCVExtractor{logger: logger}
}

// ExtractDate never fails: markers that cannot be found come back as nil fields.
func (e *BCVExtractor) ExtractDate(markup string) domain.DateValue {
	doc, ok := e.parse(markup)
	if !ok {
		return domain.DateValue{}
	}

	var date domain.DateValue

	if iso, exists := doc.Find("." + dateMarkerClass + "[content]").First().Attr("content"); exists && iso != "" {
		date.ISOText = &iso
	}

	if span := doc.Find("span." + dateMarkerClass).First(); span.Length() > 0 {
		if text := NormalizeText(nodeText(span.Nodes[0])); text != "" {
			date.DisplayText = &text
		}
	}

	e.debug("date extracted", "has_text", date.DisplayText != nil, "has_iso", date.ISOText != nil)
	return date
}

// ExtractRates never fails: currencies whose block or value is missing are omitted.
func (e *BCVExtractor) ExtractRates(markup string) domain.RateTable {
	rates := domain.RateTable{}

	doc, ok := e.parse(markup)
	if !ok {
		return rates
	}

	// Document order, so the descendants of a block precede anything after it.
	nodes := doc.Find("*").Nodes
	for _, marker := range rateMarkers {
		start := indexOfID(nodes, marker.id)
		if start < 0 {
			continue
		}
		if value := valueAfter(doc, nodes, start, marker.id); value != "" {
			rates[marker.code] = value
		}
	}

	e.debug("rates extracted", "count", len(rates))
	return rates
}

func (e *BCVExtractor) parse(markup string) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("parse markup", "error", err)
		}
		return nil, false
	}
	return doc, true
}

func (e *BCVExtractor) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func indexOfID(nodes []*html.Node, id string) int {
	for i, n := range nodes {
		if v, ok := attr(n, "id"); ok && strings.EqualFold(v, id) {
			return i
		}
	}
	return -1
}

// valueAfter returns the first non-empty emphasized text following nodes[start].
// The scan ends at the block of any other currency.
func valueAfter(doc *goquery.Document, nodes []*html.Node, start int, ownID string) string {
	for _, n := range nodes[start+1:] {
		if v, ok := attr(n, "id"); ok && !strings.EqualFold(v, ownID) && isRateMarker(v) {
			return ""
		}
		if n.Data != "strong" && n.Data != "b" {
			continue
		}
		if text := NormalizeText(doc.FindNodes(n).Text()); text != "" {
			return text
		}
	}
	return ""
}

func isRateMarker(id string) bool {
	for _, m := range rateMarkers {
		if strings.EqualFold(m.id, id) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// nodeText joins the text nodes under n with spaces, so nested tags separate words.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// NormalizeText collapses every whitespace run into one space and trims the result.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
