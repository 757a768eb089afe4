package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"parcel-tax-scraper/models"
)

const (
	paidNotes    = "ALL PRIORS ARE PAID, CURRENT TAXES ARE PAID, NORMALLY TAXES ARE PAID SEMI-ANNUALLY, NORMAL DUE DATES ARE "
	partialNotes = "ALL PRIORS ARE PAID, CURRENT YEAR 1ST HALF PAID, 2ND HALF DUE, NORMALLY TAXES ARE PAID SEMI-ANNUALLY, NORMAL DUE DATES ARE "
	unpaidNotes  = "ALL PRIORS ARE PAID, CURRENT YEAR TAXES ARE NOT PAID, NORMALLY TAXES ARE PAID SEMI-ANNUALLY, NORMAL DUE DATES ARE "
)

// ExtractProperty fills the static parcel attributes of record. Every field falls
// back to N/A on its own; a missing element never fails the stage.
func (p *Parser) ExtractProperty(doc *goquery.Document, record *models.TaxRecord) {
	record.OwnerName = []string{models.NotAvailable}
	record.PropertyAddress = models.NotAvailable
	record.LandValue = models.NotAvailable
	record.Improvements = models.NotAvailable
	record.TotalAssessedValue = models.NotAvailable
	record.Exemption = models.NotAvailable

	if location := doc.Find(locationTableSelector).First(); location.Length() > 0 {
		owner := location.Find("tr:nth-child(2)").First().Find(".TableValue").First()
		address := location.Find("tr:nth-child(3)").First().Find(".TableValue").First()
		record.OwnerName = []string{textOr(owner, models.NotAvailable)}
		record.PropertyAddress = textOr(address, models.NotAvailable)
	}

	valuation := doc.Find(valuationSelector).First()
	if row := valuation.Find("tbody tr:first-child").First(); row.Length() > 0 {
		// land value is rendered as "12,340 (CAUV)"
		land := normalizeWhitespace(row.Find(`td[headers="appraised appraisedLand"]`).First().Text())
		if i := strings.Index(land, "("); i >= 0 {
			land = strings.TrimSpace(land[:i])
		}
		if land != "" {
			record.LandValue = land
		}
		record.Improvements = textOr(row.Find(`td[headers="appraised appraisedImprovements"]`).First(), models.NotAvailable)
		record.TotalAssessedValue = textOr(row.Find(`td[headers="assessed assessedTotal"]`).First(), models.NotAvailable)
	}

	record.TotalTaxableValue = record.TotalAssessedValue
	record.TaxingAuthority = p.j.TaxingAuthority
}

// StatusNotes maps a classifier verdict to the record's notes and delinquency flag.
func (p *Parser) StatusNotes(status models.PaymentStatus) (notes, delinquent string) {
	dueDates := p.j.FormattedDueDates()
	switch status {
	case models.StatusPaid:
		return paidNotes + dueDates, models.DelinquentNone
	case models.StatusPartial:
		return partialNotes + dueDates, models.DelinquentYes
	default:
		return unpaidNotes + dueDates, models.DelinquentYes
	}
}

// ApplyStatus sets notes and delinquent on record from status.
func (p *Parser) ApplyStatus(record *models.TaxRecord, status models.PaymentStatus) {
	record.Notes, record.Delinquent = p.StatusNotes(status)
}
