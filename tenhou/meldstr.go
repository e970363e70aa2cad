package tenhou

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidMeld marks a call string that is not digits plus a single
	// role letter at an even offset.
	ErrInvalidMeld = errors.New("tenhou: invalid call string")

	// ErrInvalidRiichi marks a riichi string with the wrong tile count.
	ErrInvalidRiichi = errors.New("tenhou: invalid riichi string")

	// ErrInvalidAnkan marks a closed-kan string with the wrong tile count.
	ErrInvalidAnkan = errors.New("tenhou: invalid ankan string")

	// ErrInvalidKakan marks an added-kan string with the wrong tile count.
	ErrInvalidKakan = errors.New("tenhou: invalid kakan string")

	// ErrInvalidDecoration marks a role letter the release stream does not
	// define.
	ErrInvalidDecoration = errors.New("tenhou: invalid decoration letter")

	// ErrInvalidLetterPosition marks a role letter at an offset that does
	// not map to a source seat.
	ErrInvalidLetterPosition = errors.New("tenhou: invalid letter position")
)

// splitCallString takes a decorated call string apart: the two-digit tiles
// in order, the single role letter, and its byte offset. The letter must sit
// at an even offset so it falls between tile codes.
func splitCallString(s string) (tiles []Tile, letter byte, letterPos int, err error) {
	letterPos = -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			if letterPos >= 0 {
				return nil, 0, 0, fmt.Errorf("%w: %q", ErrInvalidMeld, s)
			}
			letter = c
			letterPos = i
		default:
			return nil, 0, 0, fmt.Errorf("%w: %q", ErrInvalidMeld, s)
		}
	}
	if letterPos < 0 {
		return nil, 0, 0, fmt.Errorf("%w: %q", ErrInvalidMeld, s)
	}
	if letterPos%2 != 0 {
		return nil, 0, 0, fmt.Errorf("%w: offset %d", ErrInvalidLetterPosition, letterPos)
	}

	digits := s[:letterPos] + s[letterPos+1:]
	if len(digits)%2 != 0 {
		return nil, 0, 0, fmt.Errorf("%w: %q", ErrInvalidMeld, s)
	}
	for i := 0; i < len(digits); i += 2 {
		t, err := NewTile(int(digits[i]-'0')*10 + int(digits[i+1]-'0'))
		if err != nil {
			return nil, 0, 0, err
		}
		tiles = append(tiles, t)
	}
	return tiles, letter, letterPos, nil
}

// callDirection maps a role letter offset to the source seat. Open kans
// place the shimocha letter after the third tile, everything else after the
// second.
func callDirection(letterPos int, shimochaPos int) (Direction, error) {
	switch letterPos {
	case 0:
		return DirKamicha, nil
	case 2:
		return DirToimen, nil
	case shimochaPos:
		return DirShimocha, nil
	default:
		return 0, fmt.Errorf("%w: offset %d", ErrInvalidLetterPosition, letterPos)
	}
}

// parseIncomingString decodes a decorated acquisition entry (a plain draw is
// a bare number and never reaches here).
func parseIncomingString(s string) (IncomingTile, error) {
	tiles, letter, letterPos, err := splitCallString(s)
	if err != nil {
		return nil, err
	}
	switch letter {
	case 'c':
		if letterPos != 0 {
			return nil, fmt.Errorf("%w: offset %d", ErrInvalidLetterPosition, letterPos)
		}
		if len(tiles) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMeld, s)
		}
		return Chii{Combination: [3]Tile{tiles[0], tiles[1], tiles[2]}}, nil
	case 'p':
		dir, err := callDirection(letterPos, 4)
		if err != nil {
			return nil, err
		}
		if len(tiles) != 3 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMeld, s)
		}
		return Pon{Combination: [3]Tile{tiles[0], tiles[1], tiles[2]}, Dir: dir}, nil
	case 'm':
		dir, err := callDirection(letterPos, 6)
		if err != nil {
			return nil, err
		}
		if len(tiles) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMeld, s)
		}
		return Daiminkan{Combination: [4]Tile{tiles[0], tiles[1], tiles[2], tiles[3]}, Dir: dir}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMeld, s)
	}
}

// parseOutgoingString decodes a decorated release entry: a riichi discard,
// a closed kan, or an added kan.
func parseOutgoingString(s string) (OutgoingTile, error) {
	if s == "r60" {
		return TsumogiriRiichi{}, nil
	}

	tiles, letter, letterPos, err := splitCallString(s)
	if err != nil {
		return nil, err
	}
	switch letter {
	case 'r':
		if len(tiles) != 1 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRiichi, s)
		}
		return Riichi{Tile: tiles[0]}, nil
	case 'a':
		if len(tiles) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAnkan, s)
		}
		// The red copy, when present, is written last.
		return Ankan{Tile: tiles[3]}, nil
	case 'k':
		if len(tiles) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKakan, s)
		}
		dir, err := callDirection(letterPos, 4)
		if err != nil {
			return nil, err
		}
		// The added copy sits right after the letter.
		addedIndex := letterPos / 2
		added := tiles[addedIndex]
		var comb [3]Tile
		n := 0
		for i, t := range tiles {
			if i == addedIndex {
				continue
			}
			comb[n] = t
			n++
		}
		return Kakan{Combination: comb, Dir: dir, Added: added}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecoration, s)
	}
}

func tileStr(t Tile) string {
	return strconv.Itoa(int(t))
}

// formatIncoming renders an acquisition entry as its JSON value: a bare
// number for a draw, a decorated string for a call. The role letter is
// placed before the tile contributed by the source seat.
func formatIncoming(in IncomingTile) (any, error) {
	switch v := in.(type) {
	case Tsumo:
		return int(v.Tile), nil
	case Chii:
		return "c" + tileStr(v.Combination[0]) + tileStr(v.Combination[1]) + tileStr(v.Combination[2]), nil
	case Pon:
		c := v.Combination
		switch v.Dir {
		case DirKamicha:
			return "p" + tileStr(c[0]) + tileStr(c[1]) + tileStr(c[2]), nil
		case DirToimen:
			return tileStr(c[0]) + "p" + tileStr(c[1]) + tileStr(c[2]), nil
		case DirShimocha:
			return tileStr(c[0]) + tileStr(c[1]) + "p" + tileStr(c[2]), nil
		}
		return nil, fmt.Errorf("%w: pon from %s", ErrInvalidMeld, v.Dir)
	case Daiminkan:
		c := v.Combination
		switch v.Dir {
		case DirKamicha:
			return "m" + tileStr(c[0]) + tileStr(c[1]) + tileStr(c[2]) + tileStr(c[3]), nil
		case DirToimen:
			return tileStr(c[0]) + "m" + tileStr(c[1]) + tileStr(c[2]) + tileStr(c[3]), nil
		case DirShimocha:
			return tileStr(c[0]) + tileStr(c[1]) + tileStr(c[2]) + "m" + tileStr(c[3]), nil
		}
		return nil, fmt.Errorf("%w: daiminkan from %s", ErrInvalidMeld, v.Dir)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidMeld, in)
	}
}

// formatOutgoing renders a release entry as its JSON value.
func formatOutgoing(out OutgoingTile) (any, error) {
	switch v := out.(type) {
	case Discard:
		return int(v.Tile), nil
	case Tsumogiri:
		return 60, nil
	case Dummy:
		return 0, nil
	case Riichi:
		return "r" + tileStr(v.Tile), nil
	case TsumogiriRiichi:
		return "r60", nil
	case Ankan:
		b := tileStr(v.Tile.ToBlack())
		return b + b + b + "a" + tileStr(v.Tile), nil
	case Kakan:
		c := v.Combination
		a := tileStr(v.Added)
		switch v.Dir {
		case DirKamicha:
			return "k" + a + tileStr(c[0]) + tileStr(c[1]) + tileStr(c[2]), nil
		case DirToimen:
			return tileStr(c[0]) + "k" + a + tileStr(c[1]) + tileStr(c[2]), nil
		case DirShimocha:
			return tileStr(c[0]) + tileStr(c[1]) + "k" + a + tileStr(c[2]), nil
		}
		return nil, fmt.Errorf("%w: kakan from %s", ErrInvalidDecoration, v.Dir)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidDecoration, out)
	}
}
