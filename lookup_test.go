package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"parcel-tax-scraper/models"
)

func TestWriteRecord(t *testing.T) {
	record := models.NewTaxRecord("F13-0001")
	record.ProcessedDate = "2024-11-04"
	record.TaxHistory = []models.PaymentHistoryEntry{{Year: "2024", Status: models.HistoryStatusPaid}}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRecord(&buf, record, "json"))

		var got models.TaxRecord
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, *record, got)
		assert.Contains(t, buf.String(), "\n  \"parcel_number\": \"F13-0001\"")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRecord(&buf, record, "yaml"))

		var got models.TaxRecord
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, *record, got)
		assert.Contains(t, buf.String(), "parcel_number: F13-0001")
	})
}
