package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"parcel-tax-scraper/format"
	"parcel-tax-scraper/jurisdiction"
	"parcel-tax-scraper/models"
)

// Selectors and row labels of the county parcel page.
const (
	billTableSelector     = `table[title*="Taxes"]`
	paymentsTableSelector = `table[title="Tax Payments"]`
	locationTableSelector = "#Location .table"
	valuationSelector     = ".table-responsive .table"

	netPaidLabel = "NET PAID"
	netDueLabel  = "NET DUE"

	// NET PAID / NET DUE rows carry the first half in cell 2 and the second in cell 3.
	halfCellCount    = 4
	firstHalfCell    = 2
	secondHalfCell   = 3
	paymentCellCount = 7
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// Parser turns a rendered parcel page into TaxRecord fields. It holds no per-request
// state and is safe for concurrent use.
type Parser struct {
	j jurisdiction.Jurisdiction
}

// NewParser creates a Parser for the given jurisdiction.
func NewParser(j jurisdiction.Jurisdiction) *Parser {
	return &Parser{j: j}
}

// Jurisdiction returns the policy the parser was built with.
func (p *Parser) Jurisdiction() jurisdiction.Jurisdiction {
	return p.j
}

// findRow returns the first row of table whose text contains label. The returned
// selection is empty when no row matches.
func findRow(table *goquery.Selection, label string) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return strings.Contains(row.Text(), label)
	}).First()
}

// normalizeWhitespace turns every unicode space (the site pads cells with &nbsp;)
// into a plain space and collapses runs of them.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.FieldsFunc(text, unicode.IsSpace), " ")
}

// cellText returns the normalized text of the i-th cell, or "" when out of range.
func cellText(cells *goquery.Selection, i int) string {
	return normalizeWhitespace(cells.Eq(i).Text())
}

func cellAmount(cells *goquery.Selection, i int) float64 {
	return format.ParseCurrency(cellText(cells, i))
}

// textOr returns the normalized text of s, or fallback when it is empty.
func textOr(s *goquery.Selection, fallback string) string {
	if t := normalizeWhitespace(s.Text()); t != "" {
		return t
	}
	return fallback
}

// newEntry starts a history entry with the fields common to both branches.
func (p *Parser) newEntry(year, status string) models.PaymentHistoryEntry {
	return models.PaymentHistoryEntry{
		Jurisdiction: p.j.HistoryLabel,
		Year:         year,
		PaymentType:  models.PaymentTypeSemiAnnual,
		Status:       status,
		MailingDate:  models.NotAvailable,
	}
}

// setDueDates fills the due and delinquent anchors of half for a 4-digit year string.
func (p *Parser) setDueDates(e *models.PaymentHistoryEntry, h jurisdiction.Half) {
	year, err := strconv.Atoi(e.Year)
	if err != nil {
		return
	}
	e.DueDate, e.DelqDate = p.j.DueDates(h, year)
}
