// Package mjlog models the compact attribute-based match log format, where
// calls, winning hands and scores are packed into integers, and parses whole
// documents of it.
package mjlog

import "fmt"

// Hai is a physical tile, numbered 0 through 135. There are four copies of
// each of the 34 tile kinds, ordered 1m..9m 1p..9p 1s..9s and then the seven
// honors. Which copy of a suited five is the red one is a ruleset property,
// not intrinsic to the ordinal: when red fives are in play it is the copy
// with ordinal%4 == 0 (16, 52 and 88).
type Hai uint8

// PictIndex returns the tile kind, 0..33.
func (h Hai) PictIndex() int { return int(h) / 4 }

// Number returns the rank within the suit, 1..9 (1..7 for honors).
func (h Hai) Number() int { return h.PictIndex()%9 + 1 }

// IsNumberFive reports whether the tile is a suited five.
func (h Hai) IsNumberFive() bool {
	pict := h.PictIndex()
	return pict/9 <= 2 && pict%9+1 == 5
}

// Valid reports whether the ordinal is inside the 136-tile domain.
func (h Hai) Valid() bool { return h < 136 }

// Direction is the relative seat a call came from, from the caller's point
// of view. It annotates melds, not turn order.
type Direction uint8

const (
	// DirSelf marks a self-drawn meld (ankan).
	DirSelf Direction = iota
	// DirShimocha is the seat to the right.
	DirShimocha
	// DirToimen is the seat across.
	DirToimen
	// DirKamicha is the seat to the left.
	DirKamicha
)

func (d Direction) String() string {
	switch d {
	case DirSelf:
		return "self"
	case DirShimocha:
		return "shimocha"
	case DirToimen:
		return "toimen"
	case DirKamicha:
		return "kamicha"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Room is the table tier the match was played at.
type Room uint8

const (
	RoomIppan Room = iota
	RoomJoukyu
	RoomTokujou
	RoomHouou
)

// Rank is a player rank, from newcomer through the nine kyuu and ten dan
// grades up to the top title.
type Rank uint8

const (
	RankNewcomer Rank = iota
	RankKyu9
	RankKyu8
	RankKyu7
	RankKyu6
	RankKyu5
	RankKyu4
	RankKyu3
	RankKyu2
	RankKyu1
	RankDan1
	RankDan2
	RankDan3
	RankDan4
	RankDan5
	RankDan6
	RankDan7
	RankDan8
	RankDan9
	RankDan10
	RankTenhou
)

const rankCount = 21

// GameSettings is the ruleset bitfield of the table-open action, unpacked.
type GameSettings struct {
	VsHuman  bool
	NoRed    bool
	NoKuitan bool
	Hanchan  bool
	Sanma    bool
	Soku     bool
	Room     Room
}

// InitSeed is the per-round seed attribute: round number, repeat count,
// riichi pot, the dice pair and the initial dora indicator.
type InitSeed struct {
	Kyoku      int
	Honba      int
	Kyoutaku   int
	Dice       [2]int
	DoraHyouji Hai
}

// DrawReason tags the special exhaustive/abortive draw variants. Zero means
// a plain exhaustive draw.
type DrawReason uint8

const (
	DrawPlain DrawReason = iota
	DrawKyuushuuKyuuhai
	DrawSuuchaRiichi
	DrawSanchaHoura
	DrawSuukanSanra
	DrawSuufuuRenda
	DrawNagashiMangan
)

// Yaku identifies a winning-hand combination; values index the shared name
// table in the text-format package.
type Yaku uint8

// YakuHan pairs a yaku with its han value.
type YakuHan struct {
	Yaku Yaku
	Han  int
}

// Limit is the winning-hand tier recorded in the log (0 graduated, then
// mangan through yakuman).
type Limit uint8

const (
	LimitNone Limit = iota
	LimitMangan
	LimitHaneman
	LimitBaiman
	LimitSanbaiman
	LimitYakuman
)

// Owari is the final standing embedded in the last terminal action of a
// concluded match: end scores in 100-point units plus placement bonuses.
type Owari struct {
	Points  []int
	Results []float64
}

// Action is one tagged record of the flat match log.
type Action interface {
	action()
}

// Shuffle carries the session seed.
type Shuffle struct {
	Seed string
}

// Go opens the table: ruleset flags plus the lobby id.
type Go struct {
	Settings GameSettings
	Lobby    int
}

// Roster names the four players with their ranks, ratings and sexes.
type Roster struct {
	Names []string
	Dans  []Rank
	Rates []float64
	Sx    []string
}

// Reconnect is a roster record naming a single returning player.
type Reconnect struct {
	Who  int
	Name string
}

// Bye records a player leaving their seat.
type Bye struct {
	Who int
}

// Taikyoku starts the match proper and names the first dealer.
type Taikyoku struct {
	Oya int
}

// Init starts a round: seed, scores in 100-point units, dealer seat and the
// four starting hands.
type Init struct {
	Seed InitSeed
	Ten  []int
	Oya  int
	Hai  [4][]Hai
}

// ReachDeclared is the first half of a riichi: the declaration. The discard
// that follows carries the stick.
type ReachDeclared struct {
	Who int
}

// ReachConfirmed is the second half of a riichi, recorded once the declaring
// discard passes without a ron. Ten holds the scores after the 1000-point
// stick is paid.
type ReachConfirmed struct {
	Who int
	Ten []int
}

// Call exposes a meld.
type Call struct {
	Who  int
	Meld Meld
}

// Dora reveals a new dora indicator after a kan.
type Dora struct {
	Hai Hai
}

// Agari records one player's win. PaoWho is -1 when no seat carries
// liability; Owari is nil unless this win concludes the match.
type Agari struct {
	Honba      int
	Kyoutaku   int
	Hai        []Hai
	Melds      []Meld
	Machi      Hai
	Fu         int
	NetScore   int
	Limit      Limit
	Yaku       []YakuHan
	Yakuman    []Yaku
	DoraHai    []Hai
	DoraHaiUra []Hai
	Who        int
	FromWho    int
	PaoWho     int
	BeforeTen  []int
	DeltaTen   []int
	Owari      *Owari
}

// IsTsumo reports whether the win was self-drawn.
func (a *Agari) IsTsumo() bool { return a.Who == a.FromWho }

// Ryuukyoku records a drawn round. Tenpai marks which seats revealed a
// closing hand; Hands holds those hands when present.
type Ryuukyoku struct {
	Honba     int
	Kyoutaku  int
	BeforeTen []int
	DeltaTen  []int
	Tenpai    [4]bool
	Hands     [4][]Hai
	Reason    DrawReason
	HasReason bool
	Owari     *Owari
}

// Draw is one tile drawn by a seat.
type Draw struct {
	Who int
	Hai Hai
}

// Discard is one tile discarded by a seat.
type Discard struct {
	Who int
	Hai Hai
}

func (Shuffle) action()        {}
func (Go) action()             {}
func (Roster) action()         {}
func (Reconnect) action()      {}
func (Bye) action()            {}
func (Taikyoku) action()       {}
func (Init) action()           {}
func (ReachDeclared) action()  {}
func (ReachConfirmed) action() {}
func (Call) action()           {}
func (Dora) action()           {}
func (*Agari) action()         {}
func (*Ryuukyoku) action()     {}
func (Draw) action()           {}
func (Discard) action()        {}

// Log is a complete parsed document: the format version plus the flat action
// sequence.
type Log struct {
	Ver     string
	Actions []Action
}
