// Package warranty determines whether a repair falls inside the product's
// warranty window.
package warranty

import (
	"math"
	"strings"
	"time"
)

// Status summarizes the warranty window relative to a check date.
type Status string

const (
	StatusValid        Status = "valid"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
	StatusUnknown      Status = "unknown"
)

// Result is the value object produced by CheckStatus. Pointer fields are nil
// when the purchase date is unknown.
type Result struct {
	IsWarranty    *bool
	EndDate       *time.Time
	DaysRemaining *int
	Status        Status
}

// productType classifies a product name into a warranty family.
type productType string

const (
	typeCamera    productType = "camera"
	typeLens      productType = "lens"
	typeMonitor   productType = "monitor"
	typeAccessory productType = "accessory"
	typeDefault   productType = "default"
)

// productPrefixes maps name fragments to product families. Matching is
// case-insensitive substring.
var productPrefixes = []struct {
	prefix string
	family productType
}{
	{"MAVO", typeCamera},
	{"TERRA", typeCamera},
	{"KOMODO", typeCamera},
	{"EAGLE", typeCamera},
	{"KineMAX", typeCamera},
	{"KineMINI", typeCamera},
	{"KineRAW", typeCamera},
	{"KineLENS", typeLens},
	{"KineMON", typeMonitor},
	{"KineMount", typeAccessory},
	{"KineBACK", typeAccessory},
	{"KineEVF", typeAccessory},
}

// warrantyMonths is the default warranty length per product family.
var warrantyMonths = map[productType]int{
	typeCamera:    24,
	typeLens:      24,
	typeAccessory: 12,
	typeMonitor:   12,
	typeDefault:   12,
}

// expiringSoonDays is the remaining-days threshold for expiring_soon.
const expiringSoonDays = 30

func classify(productName string) productType {
	if productName == "" {
		return typeDefault
	}
	upper := strings.ToUpper(productName)
	for _, entry := range productPrefixes {
		if strings.Contains(upper, strings.ToUpper(entry.prefix)) {
			return entry.family
		}
	}
	return typeDefault
}

// EndDate computes the warranty expiry using calendar-month arithmetic.
func EndDate(purchaseDate time.Time, productName string) time.Time {
	months := warrantyMonths[classify(productName)]
	return purchaseDate.AddDate(0, months, 0)
}

// CheckStatus evaluates the warranty window at asOf. A missing purchase date
// degrades to StatusUnknown; it is never an error.
func CheckStatus(purchaseDate *time.Time, productName string, asOf time.Time) Result {
	if purchaseDate == nil {
		return Result{Status: StatusUnknown}
	}

	end := EndDate(*purchaseDate, productName)
	isWarranty := !asOf.After(end)
	days := int(math.Ceil(end.Sub(asOf).Hours() / 24))
	if days < 0 {
		days = 0
	}

	status := StatusValid
	if !isWarranty {
		status = StatusExpired
	} else if days <= expiringSoonDays {
		status = StatusExpiringSoon
	}

	return Result{
		IsWarranty:    &isWarranty,
		EndDate:       &end,
		DaysRemaining: &days,
		Status:        status,
	}
}
