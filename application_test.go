package fraudcheck

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApplication(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Application
		wantErr error
	}{
		{
			name: "reference format",
			raw:  "7a81b904f63762f00d53c4d79825420efd00f5f9, 2019-01-29T13:12:11, 100.00",
			want: Application{
				Postcode:    "7a81b904f63762f00d53c4d79825420efd00f5f9",
				SubmittedAt: time.Date(2019, time.January, 29, 13, 12, 11, 0, time.UTC),
				Amount:      decimal.RequireFromString("100.00"),
			},
		},
		{
			name: "offset and fractional seconds",
			raw:  "P1, 2019-01-29T13:12:11.5+02:00, 1",
			want: Application{
				Postcode:    "P1",
				SubmittedAt: time.Date(2019, time.January, 29, 11, 12, 11, 500000000, time.UTC),
				Amount:      decimal.NewFromInt(1),
			},
		},
		{
			name: "space separated timestamp",
			raw:  "P1, 2019-01-29 13:12:11, 0.01",
			want: Application{
				Postcode:    "P1",
				SubmittedAt: time.Date(2019, time.January, 29, 13, 12, 11, 0, time.UTC),
				Amount:      decimal.RequireFromString("0.01"),
			},
		},
		{name: "too few fields", raw: "P1, 2019-01-29T13:12:11", wantErr: ErrMalformedApplication},
		{name: "too many fields", raw: "P1, 2019-01-29T13:12:11, 1.00, extra", wantErr: ErrMalformedApplication},
		{name: "comma without space", raw: "P1,2019-01-29T13:12:11,1.00", wantErr: ErrMalformedApplication},
		{name: "bad timestamp", raw: "P1, yesterday, 1.00", wantErr: ErrInvalidTimestamp},
		{name: "bad date", raw: "P1, 2019-02-30T10:00:00, 1.00", wantErr: ErrInvalidTimestamp},
		{name: "bad amount", raw: "P1, 2019-01-29T13:12:11, lots", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := ParseApplication(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.Postcode, app.Postcode)
			assert.True(t, tt.want.SubmittedAt.Equal(app.SubmittedAt), "got %s", app.SubmittedAt)
			assert.True(t, tt.want.Amount.Equal(app.Amount), "got %s", app.Amount)
		})
	}
}

func TestParseApplications_FailsWholeBatch(t *testing.T) {
	applications, err := ParseApplications([]string{
		"P1, 2019-01-29T13:12:11, 1.00",
		"P2, 2019-01-29T13:12:11, 2.00",
		"P3, not-a-time, 3.00",
		"P4, 2019-01-29T13:12:11, 4.00",
	})

	assert.Nil(t, applications)
	require.Error(t, err)

	var appErr *ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 2, appErr.Index)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
	assert.Contains(t, err.Error(), "application 2")
}

func TestParseApplications_KeepsOrder(t *testing.T) {
	applications := mustApplications(t, regressionBatch...)

	require.Len(t, applications, len(regressionBatch))
	assert.Equal(t, "7a81b904f63762f00d53c4d79825420efd00f5f9", applications[0].Postcode)
	assert.Equal(t, "5fce533699af002a03d0eda90c097b188f345eed", applications[14].Postcode)
}
