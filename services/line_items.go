package services

import (
	"regexp"
	"strconv"
	"strings"

	"procurement-receipt-api/models"
)

// Older clients sent goods line items as a numbered plain-text list,
// e.g. "1. Steel pipe: 20 pcs". ParseLineItemText converts such a list
// into structured items; lines that do not match the pattern are kept as
// zero-quantity items so no submitted text is silently dropped.
var lineItemPattern = regexp.MustCompile(`^\s*\d+\.\s*(.+?)\s*:\s*(\d+)\s*(\S*)\s*$`)

func ParseLineItemText(text string) []models.GoodsLineItem {
	var items []models.GoodsLineItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := lineItemPattern.FindStringSubmatch(line); m != nil {
			qty, _ := strconv.Atoi(m[2])
			items = append(items, models.GoodsLineItem{
				Name:             m[1],
				Quantity:         qty,
				Unit:             m[3],
				InspectionStatus: models.InspectionUnchecked,
			})
			continue
		}
		items = append(items, models.GoodsLineItem{
			Name:             line,
			Note:             "unparsed line item",
			InspectionStatus: models.InspectionUnchecked,
		})
	}
	return items
}
