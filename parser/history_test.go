package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-tax-scraper/jurisdiction"
	"parcel-tax-scraper/models"
)

func paidRecord(p *Parser) *models.TaxRecord {
	record := models.NewTaxRecord("A01-0001")
	p.ApplyStatus(record, models.StatusPaid)
	return record
}

func TestPaidHistory_SemiAnnual(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := paidRecord(p)
	body := paymentsTable(
		paymentRow("07/10/2024", "2-24", "$0.00", "$512.40"),
		paymentRow("02/15/2024", "1-24", "$512.40", "$0.00"),
		paymentRow("07/12/2023", "2-23", "$0.00", "$480.00"),
	)

	p.PaidHistory(newDoc(t, body), record)

	require.Len(t, record.TaxHistory, 2)
	first, second := record.TaxHistory[0], record.TaxHistory[1]

	assert.Equal(t, models.PaymentHistoryEntry{
		Jurisdiction: "County",
		Year:         "2024",
		PaymentType:  models.PaymentTypeSemiAnnual,
		Status:       models.HistoryStatusPaid,
		BaseAmount:   "$512.40",
		AmountPaid:   "$512.40",
		AmountDue:    "$0.00",
		MailingDate:  models.NotAvailable,
		DueDate:      "02/21/2024",
		DelqDate:     "02/22/2024",
		PaidDate:     "02/15/2024",
	}, first)
	assert.Equal(t, "07/18/2024", second.DueDate)
	assert.Equal(t, "07/19/2024", second.DelqDate)
	assert.Equal(t, "07/10/2024", second.PaidDate)
	assert.Equal(t, models.PaymentTypeSemiAnnual, second.PaymentType)
	assert.Contains(t, record.Notes, "PAID SEMI-ANNUALLY")
}

func TestPaidHistory_CombinedRowCollapsesToAnnual(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := paidRecord(p)
	body := paymentsTable(
		paymentRow("01/30/2025", "1-25", "$600.00", "$600.00"),
		paymentRow("01/30/2025", "2-25", "$0.00", "$0.00"),
		paymentRow("07/01/2024", "2-24", "$0.00", "$590.00"),
	)

	p.PaidHistory(newDoc(t, body), record)

	require.Len(t, record.TaxHistory, 1)
	e := record.TaxHistory[0]
	assert.Equal(t, models.PaymentTypeAnnual, e.PaymentType)
	assert.Equal(t, "2025", e.Year)
	assert.Equal(t, "$1200.00", e.BaseAmount)
	assert.Equal(t, "$1200.00", e.AmountPaid)
	assert.Equal(t, "$0.00", e.AmountDue)
	assert.Equal(t, "07/18/2025", e.DueDate)
	assert.Equal(t, "07/19/2025", e.DelqDate)
	assert.Equal(t, "ALL PRIORS ARE PAID, CURRENT TAXES ARE PAID, NORMALLY TAXES ARE PAID ANNUALLY, NORMAL DUE DATES ARE 02/21 & 07/18", record.Notes)
}

func TestPaidHistory_SinglePaymentForcedAnnual(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := paidRecord(p)
	body := paymentsTable(paymentRow("02/01/2024", "1-24", "$300.00", "$0.00"))

	p.PaidHistory(newDoc(t, body), record)

	require.Len(t, record.TaxHistory, 1)
	assert.Equal(t, models.PaymentTypeAnnual, record.TaxHistory[0].PaymentType)
	assert.Equal(t, "02/21/2024", record.TaxHistory[0].DueDate)
	assert.Contains(t, record.Notes, "PAID ANNUALLY")
	assert.NotContains(t, record.Notes, "SEMI-ANNUALLY")
}

func TestPaidHistory_SkipsUnparseableRows(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := paidRecord(p)
	body := paymentsTable(
		`<tr><td>short</td><td>1-25</td></tr>`,
		paymentRow("03/03/2025", "ADJ", "$10.00", "$0.00"),
		paymentRow("03/03/2025", "1-2025", "$10.00", "$0.00"),
		paymentRow("02/10/2025", "2-25", "$0.00", "$410.00"),
		paymentRow("02/10/2025", "1-25", "$410.00", "$0.00"),
	)

	p.PaidHistory(newDoc(t, body), record)

	require.Len(t, record.TaxHistory, 2)
	assert.Equal(t, "2025", record.TaxHistory[0].Year)
	assert.Equal(t, "02/21/2025", record.TaxHistory[0].DueDate)
	assert.Equal(t, "07/18/2025", record.TaxHistory[1].DueDate)
}

func TestPaidHistory_NoPaymentsTable(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := paidRecord(p)
	notes := record.Notes

	p.PaidHistory(newDoc(t, `<p>nothing here</p>`), record)

	assert.NotNil(t, record.TaxHistory)
	assert.Empty(t, record.TaxHistory)
	assert.Equal(t, notes, record.Notes)
}

func TestCycleYear(t *testing.T) {
	tests := []struct {
		cycle  string
		want   string
		wantOK bool
	}{
		{"1-24", "2024", true},
		{"2-09", "2009", true},
		{"2- 25", "2025", true},
		{"1-2024", "", false},
		{"1-", "", false},
		{"ADJ", "", false},
		{"1-a4", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := cycleYear(tt.cycle)
		assert.Equal(t, tt.wantOK, ok, tt.cycle)
		assert.Equal(t, tt.want, got, tt.cycle)
	}
}

func TestUnpaidHistory(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := models.NewTaxRecord("A01-0001")
	p.ApplyStatus(record, "$551.00")

	body := billTable("2024 Taxes", [2]string{"$0.00", "$0.00"}, [2]string{"$125.50", "$125.50"}) +
		billTable("2023 Taxes", [2]string{"$300.00", "$0.00"}, [2]string{"$0.00", "$300.00"}) +
		billTable("2022 Taxes", [2]string{"$300.00", "$300.00"}, [2]string{"$0.00", "$0.00"}) +
		`<table title="Special Taxes"><tr><td>NET DUE</td><td>1</td><td>$9.00</td><td>$9.00</td></tr></table>` +
		`<table title="2021 Taxes"><tr><td>GROSS</td><td>1</td><td>$9.00</td><td>$9.00</td></tr></table>`

	p.UnpaidHistory(newDoc(t, body), record)

	require.Len(t, record.TaxHistory, 3)
	for _, e := range record.TaxHistory {
		assert.Equal(t, models.HistoryStatusUnpaid, e.Status)
		assert.Equal(t, "$0.00", e.AmountPaid)
		assert.Equal(t, models.PaymentTypeSemiAnnual, e.PaymentType)
		assert.Equal(t, "County", e.Jurisdiction)
		assert.Equal(t, e.BaseAmount, e.AmountDue)
	}

	assert.Equal(t, "2024", record.TaxHistory[0].Year)
	assert.Equal(t, "02/21/2024", record.TaxHistory[0].DueDate)
	assert.Equal(t, "02/22/2024", record.TaxHistory[0].DelqDate)
	assert.Equal(t, "$125.50", record.TaxHistory[0].AmountDue)

	assert.Equal(t, "2024", record.TaxHistory[1].Year)
	assert.Equal(t, "07/18/2024", record.TaxHistory[1].DueDate)

	assert.Equal(t, "2023", record.TaxHistory[2].Year)
	assert.Equal(t, "07/18/2023", record.TaxHistory[2].DueDate)
	assert.Equal(t, "07/19/2023", record.TaxHistory[2].DelqDate)
	assert.Equal(t, "$300.00", record.TaxHistory[2].AmountDue)

	// notes are left to the status classification
	assert.Contains(t, record.Notes, "NOT PAID")
}

func TestUnpaidHistory_NothingOutstanding(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := models.NewTaxRecord("A01-0001")

	p.UnpaidHistory(newDoc(t, `<p>no bills</p>`), record)

	assert.NotNil(t, record.TaxHistory)
	assert.Empty(t, record.TaxHistory)
}
