package mjlog

import (
	"errors"
	"fmt"
)

// Meld is a call descriptor: chii, pon, added kan, open kan or closed kan.
type Meld interface {
	meld()
}

// Chii is three consecutive same-suit tiles, stored ascending. CalledSlot
// records which of the three (0 min, 1 mid, 2 max) came from the discard.
type Chii struct {
	Combination [3]Hai
	CalledSlot  int
}

// Pon is three copies of one tile kind. Unused is the fourth physical copy,
// kept so that red-five identity survives the round trip.
type Pon struct {
	Dir         Direction
	Combination [3]Hai
	Called      Hai
	Unused      Hai
}

// Kakan extends an earlier pon with the fourth copy.
type Kakan struct {
	Dir         Direction
	Combination [3]Hai
	Called      Hai
	Added       Hai
}

// Daiminkan is an open kan called off a discard.
type Daiminkan struct {
	Dir Direction
	Hai Hai
}

// Ankan is a closed, self-drawn kan. It has no source direction.
type Ankan struct {
	Hai Hai
}

func (Chii) meld()      {}
func (Pon) meld()       {}
func (Kakan) meld()     {}
func (Daiminkan) meld() {}
func (Ankan) meld()     {}

var (
	// ErrUnsupportedCall marks the opt-out seat-exchange call (pei nuki),
	// which is recognized but intentionally not implemented.
	ErrUnsupportedCall = errors.New("mjlog: pei nuki call not supported")

	// ErrMalformedMeld marks a packed meld field outside the valid domain.
	ErrMalformedMeld = errors.New("mjlog: malformed meld field")

	// ErrMeldMismatch marks an encode call whose tiles do not fit the
	// claimed meld shape.
	ErrMeldMismatch = errors.New("mjlog: tiles do not form the claimed meld")
)

// DecodeMeld unpacks a 16-bit call descriptor. Bits 0-1 carry the source
// direction; bits 2-5 select the variant in priority order (chii, then
// pon/kakan, then pei nuki, then kan).
func DecodeMeld(m uint16) (Meld, error) {
	dir := Direction(m & 0x3)

	switch {
	case m&0x04 != 0:
		return decodeChii(m)
	case m&0x08 != 0 || m&0x10 != 0:
		return decodePonKakan(m, dir)
	case m&0x20 != 0:
		return nil, ErrUnsupportedCall
	default:
		// Daiminkan or ankan: bits 8-15 hold the ordinal directly.
		hai := Hai((m & 0xff00) >> 8)
		if !hai.Valid() {
			return nil, fmt.Errorf("%w: kan ordinal %d", ErrMalformedMeld, hai)
		}
		if dir == DirSelf {
			return Ankan{Hai: hai}, nil
		}
		return Daiminkan{Dir: dir, Hai: hai}, nil
	}
}

// decodeChii unpacks pattern = (suit*7 + minNumber)*3 + calledSlot from bits
// 10-15, and one physical-copy offset per member from bits 3-8.
func decodeChii(m uint16) (Meld, error) {
	pattern := int((m & 0xfc00) >> 10)
	calledSlot := pattern % 3
	minNumber := (pattern / 3) % 7
	suit := (pattern / 3) / 7
	if suit > 2 {
		return nil, fmt.Errorf("%w: chii suit %d", ErrMalformedMeld, suit)
	}

	offMin := int((m & 0x0018) >> 3)
	offMid := int((m & 0x0060) >> 5)
	offMax := int((m & 0x0180) >> 7)

	base := (suit*9 + minNumber) * 4
	return Chii{
		Combination: [3]Hai{
			Hai(base + offMin),
			Hai(base + offMid + 4),
			Hai(base + offMax + 8),
		},
		CalledSlot: calledSlot,
	}, nil
}

// decodePonKakan unpacks pattern = kind*3 + calledSlot from bits 9-15 and
// the unused/added copy selector from bits 5-6. The four physical copies are
// laid out with the unused copy swapped into the last slot; the first three
// form the exposed combination.
func decodePonKakan(m uint16, dir Direction) (Meld, error) {
	pattern := int((m & 0xfe00) >> 9)
	unusedOffset := int((m & 0x60) >> 5)
	calledIndex := pattern % 3

	pict := pattern / 3
	if pict > 33 {
		return nil, fmt.Errorf("%w: pon tile kind %d", ErrMalformedMeld, pict)
	}
	base := pict * 4

	slots := [4]Hai{Hai(base), Hai(base + 1), Hai(base + 2), Hai(base + 3)}
	slots[3], slots[unusedOffset] = slots[unusedOffset], slots[3]
	combination := [3]Hai{slots[0], slots[1], slots[2]}

	if m&0x10 != 0 {
		return Kakan{
			Dir:         dir,
			Combination: combination,
			Called:      slots[calledIndex],
			Added:       slots[3],
		}, nil
	}
	return Pon{
		Dir:         dir,
		Combination: combination,
		Called:      slots[calledIndex],
		Unused:      slots[3],
	}, nil
}

// EncodeMeld packs a meld back into the 16-bit descriptor. It is the exact
// inverse of DecodeMeld and rejects tiles that do not fit the claimed shape
// with ErrMeldMismatch.
func EncodeMeld(meld Meld) (uint16, error) {
	switch v := meld.(type) {
	case Chii:
		return encodeChii(v)
	case Pon:
		return encodePonKakan(v.Combination, v.Called, v.Unused, v.Dir, false)
	case Kakan:
		return encodePonKakan(v.Combination, v.Called, v.Added, v.Dir, true)
	case Daiminkan:
		if v.Dir == DirSelf {
			return 0, fmt.Errorf("%w: daiminkan from self", ErrMeldMismatch)
		}
		if !v.Hai.Valid() {
			return 0, fmt.Errorf("%w: kan ordinal %d", ErrMeldMismatch, v.Hai)
		}
		return uint16(v.Hai)<<8 | uint16(v.Dir), nil
	case Ankan:
		if !v.Hai.Valid() {
			return 0, fmt.Errorf("%w: kan ordinal %d", ErrMeldMismatch, v.Hai)
		}
		return uint16(v.Hai) << 8, nil
	default:
		return 0, fmt.Errorf("%w: unknown meld type %T", ErrMeldMismatch, meld)
	}
}

func encodeChii(v Chii) (uint16, error) {
	if v.CalledSlot < 0 || v.CalledSlot > 2 {
		return 0, fmt.Errorf("%w: chii called slot %d", ErrMeldMismatch, v.CalledSlot)
	}

	minPict := v.Combination[0].PictIndex()
	suit := minPict / 9
	minNumber := minPict % 9
	if suit > 2 || minNumber > 6 {
		return 0, fmt.Errorf("%w: chii cannot start at tile kind %d", ErrMeldMismatch, minPict)
	}
	if v.Combination[1].PictIndex() != minPict+1 || v.Combination[2].PictIndex() != minPict+2 {
		return 0, fmt.Errorf("%w: chii tiles are not consecutive", ErrMeldMismatch)
	}

	base := minPict * 4
	offMin := int(v.Combination[0]) - base
	offMid := int(v.Combination[1]) - base - 4
	offMax := int(v.Combination[2]) - base - 8

	pattern := (suit*7+minNumber)*3 + v.CalledSlot
	m := uint16(pattern)<<10 | uint16(offMax)<<7 | uint16(offMid)<<5 | uint16(offMin)<<3
	// A chii can only come from the seat to the left.
	return m | 0x04 | uint16(DirKamicha), nil
}

func encodePonKakan(combination [3]Hai, called, fourth Hai, dir Direction, kakan bool) (uint16, error) {
	pict := called.PictIndex()
	base := pict * 4
	if int(fourth) < base || int(fourth) >= base+4 {
		return 0, fmt.Errorf("%w: fourth copy %d outside tile kind %d", ErrMeldMismatch, fourth, pict)
	}
	unusedOffset := int(fourth) - base

	slots := [4]Hai{Hai(base), Hai(base + 1), Hai(base + 2), Hai(base + 3)}
	slots[3], slots[unusedOffset] = slots[unusedOffset], slots[3]

	calledIndex := -1
	for i := 0; i < 3; i++ {
		if combination[i] != slots[i] {
			return 0, fmt.Errorf("%w: combination is not three copies of tile kind %d", ErrMeldMismatch, pict)
		}
		if slots[i] == called {
			calledIndex = i
		}
	}
	if calledIndex < 0 {
		return 0, fmt.Errorf("%w: called tile %d not in combination", ErrMeldMismatch, called)
	}

	pattern := pict*3 + calledIndex
	m := uint16(pattern)<<9 | uint16(unusedOffset)<<5 | uint16(dir)
	if kakan {
		return m | 0x10, nil
	}
	return m | 0x08, nil
}
