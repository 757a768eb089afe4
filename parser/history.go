package parser

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"parcel-tax-scraper/format"
	"parcel-tax-scraper/jurisdiction"
	"parcel-tax-scraper/models"
)

// PaidHistory rebuilds the most recent cycle's payments from the "Tax Payments"
// table. Rows are listed newest first; only rows from the first row's year are kept,
// and the result is returned oldest first.
//
// A year that reduces to a single payment is reported as one Annual payment and the
// SEMI-ANNUALLY wording in record.Notes becomes ANNUALLY.
func (p *Parser) PaidHistory(doc *goquery.Document, record *models.TaxRecord) {
	var (
		entries    []models.PaymentHistoryEntry
		latestYear string
	)

	rows := doc.Find(paymentsTableSelector).First().Find("tbody tr")
	rows.Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < paymentCellCount {
			return
		}

		cycle := cellText(cells, 1)
		year, ok := cycleYear(cycle)
		if !ok {
			zap.L().Debug("skipping payment row with unparseable cycle",
				zap.Int("row", i),
				zap.String("cycle", cycle),
			)
			return
		}
		if latestYear == "" {
			latestYear = year
		}
		if year != latestYear {
			return
		}

		entry, ok := p.paidEntry(year, cycle, cellText(cells, 0), cellAmount(cells, 3), cellAmount(cells, 4))
		if !ok {
			return
		}
		entries = append(entries, entry)
	})

	slices.Reverse(entries)

	if len(entries) == 1 {
		entries[0].PaymentType = models.PaymentTypeAnnual
		record.Notes = strings.Replace(record.Notes, "SEMI-ANNUALLY", "ANNUALLY", 1)
	}
	if entries == nil {
		entries = []models.PaymentHistoryEntry{}
	}
	record.TaxHistory = entries
}

// paidEntry builds the entry for one payment row. A row carrying both halves is a
// combined annual payment due with the second half.
func (p *Parser) paidEntry(year, cycle, datePaid string, firstHalf, secondHalf float64) (models.PaymentHistoryEntry, bool) {
	e := p.newEntry(year, models.HistoryStatusPaid)
	e.AmountDue = format.ZeroCurrency
	e.PaidDate = datePaid

	var (
		amount float64
		half   jurisdiction.Half
	)
	switch {
	case firstHalf > 0 && secondHalf > 0:
		amount = firstHalf + secondHalf
		half = jurisdiction.SecondHalf
		e.PaymentType = models.PaymentTypeAnnual
	case strings.HasPrefix(cycle, "1-") && firstHalf > 0:
		amount = firstHalf
		half = jurisdiction.FirstHalf
	case strings.HasPrefix(cycle, "2-") && secondHalf > 0:
		amount = secondHalf
		half = jurisdiction.SecondHalf
	default:
		return models.PaymentHistoryEntry{}, false
	}

	e.BaseAmount = format.FormatCurrency(amount)
	e.AmountPaid = e.BaseAmount
	p.setDueDates(&e, half)
	return e, true
}

// cycleYear turns a cycle label such as "1-24" into "2024".
func cycleYear(cycle string) (string, bool) {
	parts := strings.Split(cycle, "-")
	if len(parts) < 2 {
		return "", false
	}
	suffix := strings.TrimSpace(parts[1])
	if len(suffix) != 2 || suffix[0] < '0' || suffix[0] > '9' || suffix[1] < '0' || suffix[1] > '9' {
		return "", false
	}
	return "20" + suffix, true
}

// UnpaidHistory reports every half with an outstanding balance across all yearly
// bill tables on the page, in document order.
func (p *Parser) UnpaidHistory(doc *goquery.Document, record *models.TaxRecord) {
	entries := []models.PaymentHistoryEntry{}

	doc.Find(billTableSelector).Each(func(_ int, bill *goquery.Selection) {
		year := yearPattern.FindString(bill.AttrOr("title", ""))
		if year == "" {
			return
		}

		dueRow := findRow(bill, netDueLabel)
		if dueRow.Length() == 0 {
			return
		}
		cells := dueRow.Find("td")
		if cells.Length() < halfCellCount {
			return
		}

		halves := []struct {
			half jurisdiction.Half
			cell int
		}{
			{jurisdiction.FirstHalf, firstHalfCell},
			{jurisdiction.SecondHalf, secondHalfCell},
		}
		for _, h := range halves {
			due := cellAmount(cells, h.cell)
			if due <= 0 {
				continue
			}
			e := p.newEntry(year, models.HistoryStatusUnpaid)
			e.BaseAmount = format.FormatCurrency(due)
			e.AmountDue = e.BaseAmount
			e.AmountPaid = format.ZeroCurrency
			p.setDueDates(&e, h.half)
			entries = append(entries, e)
		}
	})

	record.TaxHistory = entries
}
