package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{name: "dollars with separators", raw: "$1,500.00", want: ptr(1500.0)},
		{name: "plain number", raw: "2500", want: ptr(2500.0)},
		{name: "garbage after number", raw: "0.19 acres", want: ptr(0.19)},
		{name: "negative", raw: "-$12.50", want: ptr(-12.5)},
		{name: "explicit plus", raw: "+40", want: ptr(40.0)},
		{name: "empty", raw: "", want: nil},
		{name: "whitespace", raw: "   ", want: nil},
		{name: "placeholder", raw: "N/A", want: nil},
		{name: "no digits", raw: "call office", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Currency(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got, "missing data must stay null, not zero")
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestCurrencyValue_DistinguishesAbsentFromMalformed(t *testing.T) {
	v, malformed := CurrencyValue("")
	assert.Nil(t, v)
	assert.False(t, malformed)

	v, malformed = CurrencyValue("see notes")
	assert.Nil(t, v)
	assert.True(t, malformed)

	v, malformed = CurrencyValue("$3,210.99")
	require.NotNil(t, v)
	assert.False(t, malformed)
	assert.InDelta(t, 3210.99, *v, 1e-9)
}

func TestDate(t *testing.T) {
	want := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw  string
		want *time.Time
	}{
		{raw: "2026-03-05", want: &want},
		{raw: "03/05/2026", want: &want},
		{raw: "3/5/2026", want: &want},
		{raw: "03/05/26", want: &want},
		{raw: "2026/03/05", want: &want},
		{raw: "March 5, 2026", want: &want},
		{raw: "Mar 5, 2026", want: &want},
		{raw: "Thursday, March 5, 2026", want: &want},
		{raw: "2026-03-05T10:00:00Z", want: &want},
		{raw: "03/05/2026 10:00 AM", want: &want},
		{raw: "03/05/2026 10:00 AM CST", want: &want},
		{raw: "", want: nil},
		{raw: "-", want: nil},
		{raw: "2026-13-45", want: nil},
		{raw: "next tuesday", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Date(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestDateValue_ReportsMalformed(t *testing.T) {
	_, malformed := DateValue("")
	assert.False(t, malformed)

	_, malformed = DateValue("not-a-date")
	assert.True(t, malformed)
}

func TestCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLat float64
		wantLon float64
		wantNil bool
	}{
		{name: "comma separated", raw: "34.7465, -92.2896", wantLat: 34.7465, wantLon: -92.2896},
		{name: "space separated", raw: "34.7465 -92.2896", wantLat: 34.7465, wantLon: -92.2896},
		{name: "missing longitude", raw: "34.7465,", wantNil: true},
		{name: "non numeric half", raw: "34.7465, west", wantNil: true},
		{name: "three parts", raw: "1,2,3", wantNil: true},
		{name: "out of range", raw: "134.0, -92.0", wantNil: true},
		{name: "empty", raw: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := Coordinates(tt.raw)
			if tt.wantNil {
				assert.Nil(t, lat, "partial coordinates must never be kept")
				assert.Nil(t, lon, "partial coordinates must never be kept")
				return
			}
			require.NotNil(t, lat)
			require.NotNil(t, lon)
			assert.Equal(t, tt.wantLat, *lat)
			assert.Equal(t, tt.wantLon, *lon)
		})
	}
}

func TestIntValue(t *testing.T) {
	v, malformed := IntValue("1,234")
	require.NotNil(t, v)
	assert.False(t, malformed)
	assert.Equal(t, 1234, *v)

	v, _ = IntValue("1850.0")
	require.NotNil(t, v)
	assert.Equal(t, 1850, *v)

	v, malformed = IntValue("approx")
	assert.Nil(t, v)
	assert.True(t, malformed)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    models.PropertyStatus
		wantNil bool
		wantErr bool
	}{
		{raw: "active", want: models.StatusActive},
		{raw: "SOLD", want: models.StatusSold},
		{raw: " Available ", want: models.StatusActive},
		{raw: "Redeemed", want: models.StatusInactive},
		{raw: "", wantNil: true},
		{raw: "foreclosed-ish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Status(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStatus)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestMaxBid(t *testing.T) {
	assert.Nil(t, MaxBid(nil, 0.7))

	got := MaxBid(ptr(100000.0), 0.70)
	require.NotNil(t, got)
	assert.Equal(t, 70000.0, *got)

	got = MaxBid(ptr(1234.57), 0.7)
	require.NotNil(t, got)
	assert.Equal(t, 864.2, *got)
}

func TestText(t *testing.T) {
	assert.Nil(t, Text("  "))
	assert.Nil(t, Text("n/a"))
	got := Text("  Jane Doe ")
	require.NotNil(t, got)
	assert.Equal(t, "Jane Doe", *got)
}

func ptr[T any](v T) *T { return &v }
