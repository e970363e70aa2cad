package tenhou

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is the named band of a winning score. Hands below the fixed-payout
// bands are TierNormal and carry their fu and han instead of a name.
type Tier uint8

const (
	TierNormal Tier = iota
	TierMangan
	TierHaneman
	TierBaiman
	TierSanbaiman
	TierYakuman
)

var tierNames = []struct {
	name string
	tier Tier
}{
	{"満貫", TierMangan},
	{"跳満", TierHaneman},
	{"倍満", TierBaiman},
	{"三倍満", TierSanbaiman},
	{"役満", TierYakuman},
}

// ScoreRank is the tier of a win; Fu and Han are meaningful only for
// TierNormal.
type ScoreRank struct {
	Tier Tier
	Fu   int
	Han  int
}

func (r ScoreRank) String() string {
	if r.Tier == TierNormal {
		return fmt.Sprintf("%d符%d飜", r.Fu, r.Han)
	}
	for _, t := range tierNames {
		if t.tier == r.Tier {
			return t.name
		}
	}
	return fmt.Sprintf("tier(%d)", uint8(r.Tier))
}

// Payment is the textual payment of a win: a single ron payment, a dealer
// tsumo collected from everybody, or the split non-dealer tsumo.
type Payment interface {
	payment()
	String() string
}

// Ron is the single payment of a win off a discard.
type Ron struct {
	Points int
}

// OyaTsumo is a dealer self-draw, the same amount from each opponent.
type OyaTsumo struct {
	Points int
}

// KoTsumo is a non-dealer self-draw: the non-dealer share and the dealer
// share.
type KoTsumo struct {
	Ko  int
	Oya int
}

func (Ron) payment()      {}
func (OyaTsumo) payment() {}
func (KoTsumo) payment()  {}

func (p Ron) String() string      { return fmt.Sprintf("%d点", p.Points) }
func (p OyaTsumo) String() string { return fmt.Sprintf("%d点∀", p.Points) }
func (p KoTsumo) String() string  { return fmt.Sprintf("%d-%d点", p.Ko, p.Oya) }

// RankedScore is the full textual score of a win, e.g. "30符4飜7700点" or
// "満貫4000点∀".
type RankedScore struct {
	Rank    ScoreRank
	Payment Payment
}

func (s RankedScore) String() string {
	return s.Rank.String() + s.Payment.String()
}

// ErrInvalidScore marks score text the grammar does not produce.
var ErrInvalidScore = errors.New("tenhou: invalid ranked score")

// ParseRankedScore parses the textual score. The whole string must be
// consumed; trailing characters are an error.
func ParseRankedScore(s string) (RankedScore, error) {
	c := &cursor{rest: s}

	rank, ok := c.rank()
	if !ok {
		return RankedScore{}, fmt.Errorf("%w: %q", ErrInvalidScore, s)
	}
	payment, ok := c.score()
	if !ok || c.rest != "" {
		return RankedScore{}, fmt.Errorf("%w: %q", ErrInvalidScore, s)
	}
	return RankedScore{Rank: rank, Payment: payment}, nil
}

// cursor is a backtracking scanner over the score text.
type cursor struct {
	rest string
}

func (c *cursor) number() (int, bool) {
	i := 0
	for i < len(c.rest) && c.rest[i] >= '0' && c.rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n := 0
	for _, ch := range []byte(c.rest[:i]) {
		n = n*10 + int(ch-'0')
	}
	c.rest = c.rest[i:]
	return n, true
}

func (c *cursor) symbol(sym string) bool {
	if !strings.HasPrefix(c.rest, sym) {
		return false
	}
	c.rest = c.rest[len(sym):]
	return true
}

func (c *cursor) rank() (ScoreRank, bool) {
	saved := c.rest
	if fu, ok := c.number(); ok && c.symbol("符") {
		if han, ok := c.number(); ok && c.symbol("飜") {
			return ScoreRank{Tier: TierNormal, Fu: fu, Han: han}, true
		}
	}
	c.rest = saved

	for _, t := range tierNames {
		if c.symbol(t.name) {
			return ScoreRank{Tier: t.tier}, true
		}
	}
	return ScoreRank{}, false
}

func (c *cursor) score() (Payment, bool) {
	saved := c.rest
	n, ok := c.number()
	if !ok {
		return nil, false
	}
	if c.symbol("-") {
		n2, ok := c.number()
		if !ok || !c.symbol("点") {
			c.rest = saved
			return nil, false
		}
		return KoTsumo{Ko: n, Oya: n2}, true
	}
	if c.symbol("点") {
		if c.symbol("∀") {
			return OyaTsumo{Points: n}, true
		}
		return Ron{Points: n}, true
	}
	c.rest = saved
	return nil, false
}
