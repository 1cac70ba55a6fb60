package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "whole units", in: "500", want: 50000},
		{name: "two decimal places", in: "150.50", want: 15050},
		{name: "one decimal place", in: "10.5", want: 1050},
		{name: "zero parses", in: "0", want: 0},
		{name: "negative parses", in: "-3.25", want: -325},
		{name: "three decimal places rejected", in: "1.005", wantErr: true},
		{name: "not a number", in: "ten", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50.00", FormatAmount(5000))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "-12.34", FormatAmount(-1234))
}

func TestShipmentStatusTransitions(t *testing.T) {
	assert.True(t, ShipmentStatusPending.CanTransitionTo(ShipmentStatusReady))
	assert.True(t, ShipmentStatusReady.CanTransitionTo(ShipmentStatusShipped))
	assert.True(t, ShipmentStatusShipped.CanTransitionTo(ShipmentStatusDelivered))

	assert.False(t, ShipmentStatusReady.CanTransitionTo(ShipmentStatusPending), "no regression")
	assert.False(t, ShipmentStatusPending.CanTransitionTo(ShipmentStatusShipped), "no skipping")
	assert.False(t, ShipmentStatusDelivered.CanTransitionTo(ShipmentStatusReady))
	assert.False(t, ShipmentStatusPending.CanTransitionTo(ShipmentStatusCancelled))
}

func TestEntryKindSignedDelta(t *testing.T) {
	assert.Equal(t, int64(500), EntryKindDeposit.SignedDelta(500))
	assert.Equal(t, int64(500), EntryKindReceipt.SignedDelta(500))
	assert.Equal(t, int64(-500), EntryKindWithdrawal.SignedDelta(500))
	assert.Equal(t, int64(-500), EntryKindPayment.SignedDelta(500))
}
