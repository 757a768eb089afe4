package parser

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"parcel-tax-scraper/format"
	"parcel-tax-scraper/models"
)

// rounding residue tolerated on a bill that has received payments
const paidTolerance = 0.01

// ClassifyStatus reduces the current tax bill to a payment status.
//
// No bill table, or a bill table without a year in its title, means nothing is owed.
// A bill whose NET PAID or NET DUE rows are missing or short is treated as owing.
func (p *Parser) ClassifyStatus(doc *goquery.Document) models.PaymentStatus {
	bill := doc.Find(billTableSelector).First()
	if bill.Length() == 0 {
		zap.L().Debug("no tax bill table, treating as paid")
		return models.StatusPaid
	}
	if !yearPattern.MatchString(bill.AttrOr("title", "")) {
		return models.StatusPaid
	}

	paidRow := findRow(bill, netPaidLabel)
	dueRow := findRow(bill, netDueLabel)
	if paidRow.Length() == 0 || dueRow.Length() == 0 {
		return models.StatusIndeterminate
	}

	paidCells := paidRow.Find("td")
	dueCells := dueRow.Find("td")
	if paidCells.Length() < halfCellCount || dueCells.Length() < halfCellCount {
		return models.StatusIndeterminate
	}

	firstPaid := cellAmount(paidCells, firstHalfCell)
	secondPaid := cellAmount(paidCells, secondHalfCell)
	firstDue := cellAmount(dueCells, firstHalfCell)
	secondDue := cellAmount(dueCells, secondHalfCell)

	return classify(firstPaid, secondPaid, firstDue, secondDue)
}

func classify(firstPaid, secondPaid, firstDue, secondDue float64) models.PaymentStatus {
	totalDue := firstDue + secondDue
	totalPaid := firstPaid + secondPaid

	switch {
	case totalDue <= 0, totalPaid > 0 && totalDue <= paidTolerance:
		return models.StatusPaid
	case firstPaid > 0 && secondDue > 0:
		return models.StatusPartial
	default:
		return models.PaymentStatus(format.FormatCurrency(totalDue))
	}
}
