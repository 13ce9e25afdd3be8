// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import "fmt"

// PadMonth renders a month as a two-digit string ("01".."12").
func PadMonth(month int) string {
	return fmt.Sprintf("%02d", month)
}

// MonthSequence returns the months to query, starting at month. With cont
// set it appends every following month through December. A month outside
// 1-12 is returned alone: nothing is appended and no error is raised.
func MonthSequence(month int, cont bool) []string {
	months := []string{PadMonth(month)}
	if !cont || month < 1 || month > 12 {
		return months
	}
	for m := month + 1; m <= 12; m++ {
		months = append(months, PadMonth(m))
	}
	return months
}
