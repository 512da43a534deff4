package types

import (
	"regexp"
	"strings"
)

// DeliveryAddress is the destination payload sent on order submission.
type DeliveryAddress struct {
	Address    string `json:"address"`
	Settlement string `json:"settlement"`
	Region     string `json:"region"`
}

// settlementPattern matches the human-entered "Name (Region)" city format.
var settlementPattern = regexp.MustCompile(`^(.*?)\s*\((.*)\)\s*$`)

// SplitSettlement separates a "Name (Region)" city string into its parts.
// Input that doesn't match the pattern becomes the settlement wholesale,
// with an empty region.
func SplitSettlement(city string) (settlement, region string) {
	trimmed := strings.TrimSpace(city)
	if match := settlementPattern.FindStringSubmatch(trimmed); match != nil {
		return strings.TrimSpace(match[1]), strings.TrimSpace(match[2])
	}
	return trimmed, ""
}
