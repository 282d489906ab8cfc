package warranty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCameraWarrantyWindow(t *testing.T) {
	purchase := date(2024, time.January, 15)
	end := EndDate(purchase, "MAVO Edge 8K")
	assert.Equal(t, date(2026, time.January, 15), end)

	asOf := date(2025, time.June, 1)
	result := CheckStatus(&purchase, "MAVO Edge 8K", asOf)
	require.NotNil(t, result.IsWarranty)
	assert.True(t, *result.IsWarranty)
	assert.Equal(t, StatusValid, result.Status)
}

func TestWarrantyMonthsPerFamily(t *testing.T) {
	purchase := date(2024, time.March, 1)
	for _, tt := range []struct {
		product string
		end     time.Time
	}{
		{"TERRA 4K", date(2026, time.March, 1)},
		{"KOMODO-X", date(2026, time.March, 1)},
		{"EAGLE HD", date(2026, time.March, 1)},
		{"KineMAX 6K", date(2026, time.March, 1)},
		{"KineLENS 25mm", date(2026, time.March, 1)},
		{"KineMON-7U", date(2025, time.March, 1)},
		{"KineMount EF", date(2025, time.March, 1)},
		{"KineBACK-W", date(2025, time.March, 1)},
		{"KineEVF", date(2025, time.March, 1)},
		{"USB Cable", date(2025, time.March, 1)},
	} {
		assert.Equal(t, tt.end, EndDate(purchase, tt.product), tt.product)
	}
}

func TestMatchingIsCaseInsensitive(t *testing.T) {
	purchase := date(2024, time.January, 1)
	assert.Equal(t, EndDate(purchase, "mavo lf"), EndDate(purchase, "MAVO LF"))
	assert.Equal(t, date(2026, time.January, 1), EndDate(purchase, "mavo lf"))
}

func TestCalendarMonthArithmetic(t *testing.T) {
	// AddDate normalizes Feb 29 + 12 months on a non-leap year.
	purchase := date(2024, time.February, 29)
	end := EndDate(purchase, "KineMON-5U")
	assert.Equal(t, date(2025, time.March, 1), end)
}

func TestExpiredWarranty(t *testing.T) {
	purchase := date(2022, time.January, 15)
	result := CheckStatus(&purchase, "MAVO Edge 6K", date(2026, time.September, 1))
	require.NotNil(t, result.IsWarranty)
	assert.False(t, *result.IsWarranty)
	assert.Equal(t, StatusExpired, result.Status)
	require.NotNil(t, result.DaysRemaining)
	assert.Zero(t, *result.DaysRemaining)
}

func TestExpiringSoonBoundary(t *testing.T) {
	purchase := date(2024, time.January, 15)
	end := date(2026, time.January, 15)

	// 30 days out is expiring_soon.
	result := CheckStatus(&purchase, "MAVO Edge 8K", end.AddDate(0, 0, -30))
	assert.Equal(t, StatusExpiringSoon, result.Status)
	require.NotNil(t, result.DaysRemaining)
	assert.Equal(t, 30, *result.DaysRemaining)

	// 31 days out is still valid.
	result = CheckStatus(&purchase, "MAVO Edge 8K", end.AddDate(0, 0, -31))
	assert.Equal(t, StatusValid, result.Status)

	// The last covered day counts as in warranty.
	result = CheckStatus(&purchase, "MAVO Edge 8K", end)
	require.NotNil(t, result.IsWarranty)
	assert.True(t, *result.IsWarranty)
}

func TestUnknownPurchaseDate(t *testing.T) {
	result := CheckStatus(nil, "MAVO Edge 8K", date(2026, time.September, 1))
	assert.Equal(t, StatusUnknown, result.Status)
	assert.Nil(t, result.IsWarranty)
	assert.Nil(t, result.EndDate)
	assert.Nil(t, result.DaysRemaining)
}

func TestUnrecognizedProductGetsDefault(t *testing.T) {
	purchase := date(2024, time.January, 1)
	assert.Equal(t, date(2025, time.January, 1), EndDate(purchase, "Mystery Box"))
	assert.Equal(t, date(2025, time.January, 1), EndDate(purchase, ""))
}
