// Package tenhou models the decorated-string match log format: two-digit
// tile codes, call strings with role letters, and the whole-match JSON
// document built from them.
package tenhou

import (
	"errors"
	"fmt"
)

// Tile is a two-digit tile code. 11-19 are characters, 21-29 circles, 31-39
// bamboo, 41-47 honors; 51, 52 and 53 are the red fives of each suit.
type Tile uint8

// ErrInvalidTile marks a code outside the tile domain.
var ErrInvalidTile = errors.New("tenhou: invalid tile code")

// NewTile validates a raw code.
func NewTile(v int) (Tile, error) {
	t := Tile(v)
	if v < 0 || v > 255 || !t.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTile, v)
	}
	return t, nil
}

// Valid reports whether the code is inside the tile domain.
func (t Tile) Valid() bool {
	switch {
	case t >= 11 && t <= 19:
		return true
	case t >= 21 && t <= 29:
		return true
	case t >= 31 && t <= 39:
		return true
	case t >= 41 && t <= 47:
		return true
	case t >= 51 && t <= 53:
		return true
	}
	return false
}

// IsRed reports whether the tile is a red five.
func (t Tile) IsRed() bool { return t >= 51 && t <= 53 }

// ToBlack maps a red five to the plain five of its suit. Other tiles are
// returned unchanged.
func (t Tile) ToBlack() Tile {
	switch t {
	case 51:
		return 15
	case 52:
		return 25
	case 53:
		return 35
	}
	return t
}

// ToRed maps a plain five to the red five of its suit. Other tiles are
// returned unchanged. ToRed and ToBlack are mutual inverses on fives.
func (t Tile) ToRed() Tile {
	switch t {
	case 15:
		return 51
	case 25:
		return 52
	case 35:
		return 53
	}
	return t
}
