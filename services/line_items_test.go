package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement-receipt-api/models"
)

func TestParseLineItemText(t *testing.T) {
	items := ParseLineItemText("1. Steel pipe: 20 pcs\n2. Cement: 5 sack\n\n3. Cable roll: 3")
	require.Len(t, items, 3)

	assert.Equal(t, "Steel pipe", items[0].Name)
	assert.Equal(t, 20, items[0].Quantity)
	assert.Equal(t, "pcs", items[0].Unit)
	assert.Equal(t, models.InspectionUnchecked, items[0].InspectionStatus)

	assert.Equal(t, "Cement", items[1].Name)
	assert.Equal(t, 5, items[1].Quantity)
	assert.Equal(t, "sack", items[1].Unit)

	assert.Equal(t, "Cable roll", items[2].Name)
	assert.Equal(t, 3, items[2].Quantity)
	assert.Equal(t, "", items[2].Unit)
}

func TestParseLineItemTextKeepsUnparsedLines(t *testing.T) {
	items := ParseLineItemText("assorted fasteners and bolts")
	require.Len(t, items, 1)
	assert.Equal(t, "assorted fasteners and bolts", items[0].Name)
	assert.Equal(t, 0, items[0].Quantity)
	assert.NotEmpty(t, items[0].Note)
}

func TestParseLineItemTextEmpty(t *testing.T) {
	assert.Empty(t, ParseLineItemText(""))
	assert.Empty(t, ParseLineItemText("\n  \n"))
}
