package tenhou

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileDomain(t *testing.T) {
	valid := 0
	for v := 0; v <= 255; v++ {
		if Tile(v).Valid() {
			valid++
		}
	}
	// 27 suited + 7 honors + 3 red.
	assert.Equal(t, 37, valid)

	for _, v := range []int{0, 10, 20, 30, 40, 48, 49, 50, 54, 60, 135} {
		_, err := NewTile(v)
		assert.ErrorIs(t, err, ErrInvalidTile, "code %d", v)
	}
}

func TestTileRed(t *testing.T) {
	tests := []struct {
		red   Tile
		black Tile
	}{
		{51, 15},
		{52, 25},
		{53, 35},
	}

	for _, tt := range tests {
		assert.True(t, tt.red.IsRed())
		assert.False(t, tt.black.IsRed())
		assert.Equal(t, tt.black, tt.red.ToBlack())
		assert.Equal(t, tt.red, tt.black.ToRed())
	}

	// Everything else maps to itself both ways.
	for v := 0; v <= 255; v++ {
		tile := Tile(v)
		if !tile.Valid() || tile.IsRed() || tile.ToRed() != tile {
			continue
		}
		require.Equal(t, tile, tile.ToBlack())
	}
}
