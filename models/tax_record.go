package models

import "strings"

// Sentinels shared by every stage.
const (
	NotAvailable = "N/A"

	DelinquentNone = "NONE"
	DelinquentYes  = "YES"

	PaymentTypeAnnual     = "Annual"
	PaymentTypeSemiAnnual = "Semi-Annual"

	HistoryStatusPaid   = "Paid"
	HistoryStatusUnpaid = "Unpaid"
)

// PaymentStatus is the status classifier's verdict on the current bill: one of the
// three symbolic values below or a formatted dollar amount still owed.
type PaymentStatus string

const (
	StatusPaid          PaymentStatus = "$0.00"
	StatusPartial       PaymentStatus = "PARTIAL"
	StatusIndeterminate PaymentStatus = "UNPAID"
)

// IsPaid reports whether nothing is owed on the current bill.
func (s PaymentStatus) IsPaid() bool {
	return s == StatusPaid
}

// IsAmount reports whether s is a formatted dollar amount rather than a symbol.
func (s PaymentStatus) IsAmount() bool {
	return s != StatusPaid && strings.HasPrefix(string(s), "$")
}

// TaxRecord is the normalized result of one parcel lookup.
type TaxRecord struct {
	ProcessedDate      string                `json:"processed_date" yaml:"processed_date"`
	ParcelNumber       string                `json:"parcel_number" yaml:"parcel_number"`
	OwnerName          []string              `json:"owner_name" yaml:"owner_name"`
	PropertyAddress    string                `json:"property_address" yaml:"property_address"`
	LandValue          string                `json:"land_value" yaml:"land_value"`
	Improvements       string                `json:"improvements" yaml:"improvements"`
	TotalAssessedValue string                `json:"total_assessed_value" yaml:"total_assessed_value"`
	Exemption          string                `json:"exemption" yaml:"exemption"`
	TotalTaxableValue  string                `json:"total_taxable_value" yaml:"total_taxable_value"`
	TaxingAuthority    string                `json:"taxing_authority" yaml:"taxing_authority"`
	Notes              string                `json:"notes" yaml:"notes"`
	Delinquent         string                `json:"delinquent" yaml:"delinquent"`
	TaxHistory         []PaymentHistoryEntry `json:"tax_history" yaml:"tax_history"`
}

// PaymentHistoryEntry is one line of a parcel's payment history.
type PaymentHistoryEntry struct {
	Jurisdiction    string `json:"jurisdiction" yaml:"jurisdiction"`
	Year            string `json:"year" yaml:"year"`
	PaymentType     string `json:"payment_type" yaml:"payment_type"`
	Status          string `json:"status" yaml:"status"`
	BaseAmount      string `json:"base_amount" yaml:"base_amount"`
	AmountPaid      string `json:"amount_paid" yaml:"amount_paid"`
	AmountDue       string `json:"amount_due" yaml:"amount_due"`
	MailingDate     string `json:"mailing_date" yaml:"mailing_date"`
	DueDate         string `json:"due_date" yaml:"due_date"`
	DelqDate        string `json:"delq_date" yaml:"delq_date"`
	PaidDate        string `json:"paid_date" yaml:"paid_date"`
	GoodThroughDate string `json:"good_through_date" yaml:"good_through_date"`
}

// NewTaxRecord returns a record with every extracted field set to NotAvailable.
func NewTaxRecord(parcel string) *TaxRecord {
	return &TaxRecord{
		ParcelNumber:       parcel,
		OwnerName:          []string{NotAvailable},
		PropertyAddress:    NotAvailable,
		LandValue:          NotAvailable,
		Improvements:       NotAvailable,
		TotalAssessedValue: NotAvailable,
		Exemption:          NotAvailable,
		TotalTaxableValue:  NotAvailable,
		TaxHistory:         []PaymentHistoryEntry{},
	}
}
