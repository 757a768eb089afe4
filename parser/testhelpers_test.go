package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

// billTable renders a yearly bill with NET PAID and NET DUE rows. Halves are the
// first and second half cell values.
func billTable(title string, paid, due [2]string) string {
	return fmt.Sprintf(`<table title="%s">
<thead><tr><th></th><th>Prior</th><th>1st Half</th><th>2nd Half</th></tr></thead>
<tbody>
<tr><td>GROSS TAX</td><td>$0.00</td><td>$500.00</td><td>$500.00</td></tr>
<tr><td>NET PAID</td><td>$0.00</td><td>%s</td><td>%s</td></tr>
<tr><td>NET DUE</td><td>$0.00</td><td>%s</td><td>%s</td></tr>
</tbody></table>`, title, paid[0], paid[1], due[0], due[1])
}

// paymentRow renders one row of the "Tax Payments" table.
func paymentRow(date, cycle, first, second string) string {
	return fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td>$0.00</td><td>%s</td><td>%s</td><td>$0.00</td><td>RCPT</td></tr>`,
		date, cycle, first, second)
}

func paymentsTable(rows ...string) string {
	return `<table title="Tax Payments">
<thead><tr><th>Date</th><th>Cycle</th><th>Prior</th><th>1st Half</th><th>2nd Half</th><th>Surplus</th><th>Receipt</th></tr></thead>
<tbody>` + strings.Join(rows, "\n") + `</tbody></table>`
}

const propertyFixture = `
<div id="Location">
  <table class="table">
    <tr><td class="TableLabel">Parcel</td><td class="TableValue">A01-0001</td></tr>
    <tr><td class="TableLabel">Owner</td><td class="TableValue"> DOE JOHN &amp; JANE </td></tr>
    <tr><td class="TableLabel">Address</td><td class="TableValue">123 MAIN ST GREENVILLE</td></tr>
  </table>
</div>
<div class="table-responsive">
  <table class="table">
    <thead><tr><th id="appraised">Appraised</th><th id="assessed">Assessed</th></tr></thead>
    <tbody>
      <tr>
        <td headers="appraised appraisedLand">$24,310 (CAUV)</td>
        <td headers="appraised appraisedImprovements">$101,200</td>
        <td headers="assessed assessedTotal">$43,930</td>
      </tr>
      <tr>
        <td headers="appraised appraisedLand">$1</td>
        <td headers="appraised appraisedImprovements">$2</td>
        <td headers="assessed assessedTotal">$3</td>
      </tr>
    </tbody>
  </table>
</div>`
