package mjlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMeld(t *testing.T) {
	tests := []struct {
		name string
		m    uint16
		want Meld
	}{
		{
			// 1m2m3m, first copies, called the 1m.
			name: "chii 123m",
			m:    0x04 | uint16(DirKamicha),
			want: Chii{Combination: [3]Hai{0, 4, 8}, CalledSlot: 0},
		},
		{
			// 5p6p7p with the red 5p (ordinal 52), called the 7p.
			name: "chii 567p red",
			m:    35<<10 | 2<<7 | 1<<5 | 0<<3 | 0x04 | uint16(DirKamicha),
			want: Chii{Combination: [3]Hai{52, 57, 62}, CalledSlot: 2},
		},
		{
			name: "pon haku from toimen",
			m:    94<<9 | 3<<5 | 0x08 | uint16(DirToimen),
			want: Pon{
				Dir:         DirToimen,
				Combination: [3]Hai{124, 125, 126},
				Called:      125,
				Unused:      127,
			},
		},
		{
			// Red 5m stays out of the exposed triple.
			name: "pon 5m red unused",
			m:    12<<9 | 0<<5 | 0x08 | uint16(DirShimocha),
			want: Pon{
				Dir:         DirShimocha,
				Combination: [3]Hai{19, 17, 18},
				Called:      19,
				Unused:      16,
			},
		},
		{
			name: "kakan 5m adds the red",
			m:    12<<9 | 0<<5 | 0x10 | uint16(DirShimocha),
			want: Kakan{
				Dir:         DirShimocha,
				Combination: [3]Hai{19, 17, 18},
				Called:      19,
				Added:       16,
			},
		},
		{
			name: "daiminkan red 5s",
			m:    88<<8 | uint16(DirKamicha),
			want: Daiminkan{Dir: DirKamicha, Hai: 88},
		},
		{
			name: "ankan",
			m:    100 << 8,
			want: Ankan{Hai: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMeld(tt.m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMeldPeiNuki(t *testing.T) {
	_, err := DecodeMeld(0x20)
	assert.ErrorIs(t, err, ErrUnsupportedCall)
}

func TestDecodeMeldMalformed(t *testing.T) {
	// Kan ordinal beyond the 136-tile domain.
	_, err := DecodeMeld(136 << 8)
	assert.ErrorIs(t, err, ErrMalformedMeld)

	// Chii pattern whose suit index lands in the honors.
	_, err = DecodeMeld(63<<10 | 0x04)
	assert.ErrorIs(t, err, ErrMalformedMeld)
}

func TestEncodeMeldMismatch(t *testing.T) {
	tests := []struct {
		name string
		meld Meld
	}{
		{"chii not consecutive", Chii{Combination: [3]Hai{0, 8, 12}}},
		{"chii starting at eight", Chii{Combination: [3]Hai{28, 32, 36}}},
		{"chii in honors", Chii{Combination: [3]Hai{108, 112, 116}}},
		{"pon mixed kinds", Pon{Combination: [3]Hai{0, 1, 4}, Called: 0, Unused: 2}},
		{"pon fourth copy elsewhere", Pon{Combination: [3]Hai{0, 1, 2}, Called: 0, Unused: 8}},
		{"daiminkan from self", Daiminkan{Dir: DirSelf, Hai: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeMeld(tt.meld)
			assert.ErrorIs(t, err, ErrMeldMismatch)
		})
	}
}

// Every decodable field must survive an encode/decode cycle unchanged. The
// re-encoded bits may differ (a chii field can carry arbitrary direction
// bits) but the meld itself must not.
func TestMeldRoundTrip(t *testing.T) {
	decoded := 0
	for m := 0; m <= 0xffff; m++ {
		meld, err := DecodeMeld(uint16(m))
		if err != nil {
			continue
		}
		decoded++

		packed, err := EncodeMeld(meld)
		require.NoError(t, err, "encode of decoded field %#04x", m)

		again, err := DecodeMeld(packed)
		require.NoError(t, err, "re-decode of field %#04x", m)
		require.Equal(t, meld, again, "field %#04x", m)
	}
	require.NotZero(t, decoded)
}
