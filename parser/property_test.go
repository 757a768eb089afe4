package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parcel-tax-scraper/jurisdiction"
	"parcel-tax-scraper/models"
)

func TestExtractProperty(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := models.NewTaxRecord("A01-0001")

	p.ExtractProperty(newDoc(t, propertyFixture), record)

	assert.Equal(t, []string{"DOE JOHN & JANE"}, record.OwnerName)
	assert.Equal(t, "123 MAIN ST GREENVILLE", record.PropertyAddress)
	assert.Equal(t, "$24,310", record.LandValue)
	assert.Equal(t, "$101,200", record.Improvements)
	assert.Equal(t, "$43,930", record.TotalAssessedValue)
	assert.Equal(t, "$43,930", record.TotalTaxableValue)
	assert.Equal(t, models.NotAvailable, record.Exemption)
	assert.Equal(t, jurisdiction.Darke.TaxingAuthority, record.TaxingAuthority)
	assert.Equal(t, "A01-0001", record.ParcelNumber)
}

func TestExtractProperty_MissingElements(t *testing.T) {
	p := NewParser(jurisdiction.Darke)

	t.Run("empty page", func(t *testing.T) {
		record := models.NewTaxRecord("X")
		p.ExtractProperty(newDoc(t, `<p>Parcel not found</p>`), record)

		assert.Equal(t, []string{models.NotAvailable}, record.OwnerName)
		assert.Equal(t, models.NotAvailable, record.PropertyAddress)
		assert.Equal(t, models.NotAvailable, record.LandValue)
		assert.Equal(t, models.NotAvailable, record.Improvements)
		assert.Equal(t, models.NotAvailable, record.TotalAssessedValue)
		assert.Equal(t, models.NotAvailable, record.TotalTaxableValue)
		assert.Equal(t, jurisdiction.Darke.TaxingAuthority, record.TaxingAuthority)
	})

	t.Run("location without values and empty valuation cells", func(t *testing.T) {
		body := `<div id="Location"><table class="table">
<tr><td>Parcel</td></tr><tr><td>Owner</td><td class="TableValue">  </td></tr></table></div>
<div class="table-responsive"><table class="table"><tbody><tr>
<td headers="appraised appraisedLand">(CAUV)</td>
<td headers="assessed assessedTotal">$9</td></tr></tbody></table></div>`
		record := models.NewTaxRecord("X")
		p.ExtractProperty(newDoc(t, body), record)

		assert.Equal(t, []string{models.NotAvailable}, record.OwnerName)
		assert.Equal(t, models.NotAvailable, record.PropertyAddress)
		assert.Equal(t, models.NotAvailable, record.LandValue)
		assert.Equal(t, models.NotAvailable, record.Improvements)
		assert.Equal(t, "$9", record.TotalAssessedValue)
		assert.Equal(t, "$9", record.TotalTaxableValue)
	})
}

func TestStatusNotes(t *testing.T) {
	p := NewParser(jurisdiction.Darke)

	notes, delq := p.StatusNotes(models.StatusPaid)
	assert.Equal(t, "ALL PRIORS ARE PAID, CURRENT TAXES ARE PAID, NORMALLY TAXES ARE PAID SEMI-ANNUALLY, NORMAL DUE DATES ARE 02/21 & 07/18", notes)
	assert.Equal(t, models.DelinquentNone, delq)

	notes, delq = p.StatusNotes(models.StatusPartial)
	assert.Equal(t, "ALL PRIORS ARE PAID, CURRENT YEAR 1ST HALF PAID, 2ND HALF DUE, NORMALLY TAXES ARE PAID SEMI-ANNUALLY, NORMAL DUE DATES ARE 02/21 & 07/18", notes)
	assert.Equal(t, models.DelinquentYes, delq)

	for _, s := range []models.PaymentStatus{models.StatusIndeterminate, "$250.00"} {
		notes, delq = p.StatusNotes(s)
		assert.Equal(t, "ALL PRIORS ARE PAID, CURRENT YEAR TAXES ARE NOT PAID, NORMALLY TAXES ARE PAID SEMI-ANNUALLY, NORMAL DUE DATES ARE 02/21 & 07/18", notes)
		assert.Equal(t, models.DelinquentYes, delq)
	}
}

func TestApplyStatus(t *testing.T) {
	p := NewParser(jurisdiction.Darke)
	record := models.NewTaxRecord("X")
	p.ApplyStatus(record, models.StatusPartial)
	assert.Equal(t, models.DelinquentYes, record.Delinquent)
	assert.Contains(t, record.Notes, "1ST HALF PAID")
}
