package bot

import (
	"fmt"
	"strings"

	"parcel-tax-scraper/models"
)

// FormatRecord renders a tax record as a plain-text chat message.
func FormatRecord(r *models.TaxRecord) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Parcel %s (processed %s)\n", r.ParcelNumber, r.ProcessedDate))
	sb.WriteString(fmt.Sprintf("Owner: %s\n", strings.Join(r.OwnerName, ", ")))
	sb.WriteString(fmt.Sprintf("Address: %s\n", r.PropertyAddress))
	sb.WriteString(fmt.Sprintf("Land: %s | Improvements: %s\n", r.LandValue, r.Improvements))
	sb.WriteString(fmt.Sprintf("Assessed: %s | Taxable: %s\n", r.TotalAssessedValue, r.TotalTaxableValue))
	sb.WriteString(fmt.Sprintf("Delinquent: %s\n", r.Delinquent))
	sb.WriteString(fmt.Sprintf("Notes: %s\n", r.Notes))

	if len(r.TaxHistory) == 0 {
		sb.WriteString("\nNo payment history.")
		return sb.String()
	}

	sb.WriteString("\nTax History:\n")
	for i, e := range r.TaxHistory {
		sb.WriteString(fmt.Sprintf("%d. %s %s %s - %s\n", i+1, e.Year, e.PaymentType, e.Status, e.BaseAmount))
		sb.WriteString(fmt.Sprintf("   Paid: %s | Due: %s\n", e.AmountPaid, e.AmountDue))
		sb.WriteString(fmt.Sprintf("   Due date: %s | Delinquent: %s", e.DueDate, e.DelqDate))
		if e.PaidDate != "" {
			sb.WriteString(fmt.Sprintf(" | Paid on: %s", e.PaidDate))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// splitMessage breaks text into chunks of at most maxLen bytes, preferring line
// boundaries.
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > maxLen && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		for len(line) >= maxLen {
			parts = append(parts, line[:maxLen])
			line = line[maxLen:]
		}
		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
