package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotIndex(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{clock: "00:00", want: 0},
		{clock: "00:15", want: 1},
		{clock: "18:00", want: 72},
		{clock: "18:15", want: 73},
		{clock: "23:45", want: 95},
		{clock: "24:00", want: 96},
		{clock: "18:10", wantErr: true},
		{clock: "18:60", wantErr: true},
		{clock: "24:15", wantErr: true},
		{clock: "25:00", wantErr: true},
		{clock: "8:00", wantErr: true},
		{clock: "18:00:00", wantErr: true},
		{clock: "+1:00", wantErr: true},
		{clock: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			got, err := SlotIndex(tt.clock)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlotIndexRoundTrip(t *testing.T) {
	for index := 0; index <= SlotsPerDay; index++ {
		clock := SlotTime(index)
		got, err := SlotIndex(clock)
		require.NoError(t, err, clock)
		require.Equal(t, index, got)
		require.Equal(t, clock, SlotTime(got))
	}
}
