package tenhou

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIncomingString(t *testing.T) {
	tests := []struct {
		in   string
		want IncomingTile
	}{
		{"c111213", Chii{Combination: [3]Tile{11, 12, 13}}},
		{"c511617", Chii{Combination: [3]Tile{51, 16, 17}}},
		{"p121212", Pon{Combination: [3]Tile{12, 12, 12}, Dir: DirKamicha}},
		{"12p1212", Pon{Combination: [3]Tile{12, 12, 12}, Dir: DirToimen}},
		{"1212p12", Pon{Combination: [3]Tile{12, 12, 12}, Dir: DirShimocha}},
		{"252525p52", Pon{}, // placeholder, replaced below
		},
	}
	// A shimocha pon of a red five: letter after the second tile.
	tests[5] = struct {
		in   string
		want IncomingTile
	}{"2525p52", Pon{Combination: [3]Tile{25, 25, 52}, Dir: DirShimocha}}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseIncomingString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIncomingKan(t *testing.T) {
	got, err := parseIncomingString("m35353553")
	require.NoError(t, err)
	assert.Equal(t, Daiminkan{Combination: [4]Tile{35, 35, 35, 53}, Dir: DirKamicha}, got)

	got, err = parseIncomingString("35m353553")
	require.NoError(t, err)
	assert.Equal(t, Daiminkan{Combination: [4]Tile{35, 35, 35, 53}, Dir: DirToimen}, got)

	got, err = parseIncomingString("353535m53")
	require.NoError(t, err)
	assert.Equal(t, Daiminkan{Combination: [4]Tile{35, 35, 35, 53}, Dir: DirShimocha}, got)
}

func TestParseOutgoingString(t *testing.T) {
	tests := []struct {
		in   string
		want OutgoingTile
	}{
		{"r60", TsumogiriRiichi{}},
		{"r15", Riichi{Tile: 15}},
		{"151515a51", Ankan{Tile: 51}},
		{"414141a41", Ankan{Tile: 41}},
		{"k35353553", Kakan{Combination: [3]Tile{35, 35, 53}, Dir: DirKamicha, Added: 35}},
		{"35k353553", Kakan{Combination: [3]Tile{35, 35, 53}, Dir: DirToimen, Added: 35}},
		{"3535k3553", Kakan{Combination: [3]Tile{35, 35, 53}, Dir: DirShimocha, Added: 35}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseOutgoingString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCallStringRejects(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"1p23", ErrInvalidLetterPosition},        // letter at odd offset
		{"112233", ErrInvalidMeld},                // no letter
		{"c11p12", ErrInvalidMeld},                // two letters
		{"c1112", ErrInvalidMeld},                 // two tiles only
		{"c111293", ErrInvalidTile},               // 93 outside the domain
		{"x111213", ErrInvalidMeld},               // unknown incoming letter
		{"121212p", ErrInvalidLetterPosition},     // pon letter after the third tile
		{"1111111111m", ErrInvalidLetterPosition}, // kan letter after the fifth tile
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := parseIncomingString(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := parseOutgoingString("r1515")
	assert.ErrorIs(t, err, ErrInvalidRiichi)
	_, err = parseOutgoingString("1515a15")
	assert.ErrorIs(t, err, ErrInvalidAnkan)
	_, err = parseOutgoingString("k151515")
	assert.ErrorIs(t, err, ErrInvalidKakan)
	_, err = parseOutgoingString("x111213")
	assert.ErrorIs(t, err, ErrInvalidDecoration)
}

func TestFormatIncoming(t *testing.T) {
	tests := []struct {
		in   IncomingTile
		want any
	}{
		{Tsumo{Tile: 42}, 42},
		{Chii{Combination: [3]Tile{51, 16, 17}}, "c511617"},
		{Pon{Combination: [3]Tile{12, 12, 12}, Dir: DirKamicha}, "p121212"},
		{Pon{Combination: [3]Tile{12, 12, 12}, Dir: DirToimen}, "12p1212"},
		{Pon{Combination: [3]Tile{25, 25, 52}, Dir: DirShimocha}, "2525p52"},
		{Daiminkan{Combination: [4]Tile{35, 35, 35, 53}, Dir: DirToimen}, "35m353553"},
	}

	for _, tt := range tests {
		got, err := formatIncoming(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatOutgoing(t *testing.T) {
	tests := []struct {
		in   OutgoingTile
		want any
	}{
		{Discard{Tile: 19}, 19},
		{Tsumogiri{}, 60},
		{Dummy{}, 0},
		{Riichi{Tile: 15}, "r15"},
		{TsumogiriRiichi{}, "r60"},
		{Ankan{Tile: 51}, "151515a51"},
		{Ankan{Tile: 41}, "414141a41"},
		{Kakan{Combination: [3]Tile{35, 35, 53}, Dir: DirToimen, Added: 35}, "35k353553"},
	}

	for _, tt := range tests {
		got, err := formatOutgoing(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

// Every decorated string the exporter produces must parse back to the same
// stream entry.
func TestCallStringRoundTrip(t *testing.T) {
	incoming := []IncomingTile{
		Chii{Combination: [3]Tile{11, 12, 13}},
		Chii{Combination: [3]Tile{51, 16, 17}},
		Pon{Combination: [3]Tile{12, 12, 12}, Dir: DirKamicha},
		Pon{Combination: [3]Tile{52, 25, 25}, Dir: DirKamicha},
		Pon{Combination: [3]Tile{25, 52, 25}, Dir: DirToimen},
		Pon{Combination: [3]Tile{25, 25, 52}, Dir: DirShimocha},
		Daiminkan{Combination: [4]Tile{35, 35, 35, 53}, Dir: DirKamicha},
		Daiminkan{Combination: [4]Tile{53, 35, 35, 35}, Dir: DirToimen},
		Daiminkan{Combination: [4]Tile{35, 35, 35, 53}, Dir: DirShimocha},
	}
	for _, in := range incoming {
		v, err := formatIncoming(in)
		require.NoError(t, err)
		s, ok := v.(string)
		require.True(t, ok)
		got, err := parseIncomingString(s)
		require.NoError(t, err, "string %q", s)
		assert.Equal(t, in, got, "string %q", s)
	}

	outgoing := []OutgoingTile{
		Riichi{Tile: 15},
		TsumogiriRiichi{},
		Ankan{Tile: 51},
		Ankan{Tile: 22},
		Kakan{Combination: [3]Tile{35, 35, 53}, Dir: DirKamicha, Added: 35},
		Kakan{Combination: [3]Tile{35, 35, 53}, Dir: DirToimen, Added: 35},
		Kakan{Combination: [3]Tile{35, 35, 53}, Dir: DirShimocha, Added: 35},
	}
	for _, out := range outgoing {
		v, err := formatOutgoing(out)
		require.NoError(t, err)
		s, ok := v.(string)
		require.True(t, ok)
		got, err := parseOutgoingString(s)
		require.NoError(t, err, "string %q", s)
		assert.Equal(t, out, got, "string %q", s)
	}
}
