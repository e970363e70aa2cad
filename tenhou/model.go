package tenhou

import "fmt"

// Direction is the relative seat a call came from. Note the ordering runs
// counterclockwise here, the reverse of the packed-integer format.
type Direction uint8

const (
	DirSelf Direction = iota
	DirKamicha
	DirToimen
	DirShimocha
)

func (d Direction) String() string {
	switch d {
	case DirSelf:
		return "self"
	case DirKamicha:
		return "kamicha"
	case DirToimen:
		return "toimen"
	case DirShimocha:
		return "shimocha"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// IncomingTile is one entry of a seat's per-turn acquisition stream: a plain
// draw or an open call.
type IncomingTile interface {
	incoming()
}

// Tsumo is a plain draw from the wall.
type Tsumo struct {
	Tile Tile
}

// Chii is an exposed run, in display order. A chii always comes from the
// seat to the left, so it carries no direction.
type Chii struct {
	Combination [3]Tile
}

// Pon is an exposed triple in display order.
type Pon struct {
	Combination [3]Tile
	Dir         Direction
}

// Daiminkan is an open kan called off a discard, all four copies in display
// order.
type Daiminkan struct {
	Combination [4]Tile
	Dir         Direction
}

func (Tsumo) incoming()     {}
func (Chii) incoming()      {}
func (Pon) incoming()       {}
func (Daiminkan) incoming() {}

// OutgoingTile is one entry of a seat's per-turn release stream: a discard,
// a riichi declaration, or a kan that consumes hand tiles.
type OutgoingTile interface {
	outgoing()
}

// Discard is a tile thrown from the hand.
type Discard struct {
	Tile Tile
}

// Riichi is the riichi declaration discard, thrown from the hand.
type Riichi struct {
	Tile Tile
}

// Ankan is a closed kan. Only the defining tile is recorded; when the kan
// holds a red five the red code is the one kept.
type Ankan struct {
	Tile Tile
}

// Kakan extends an earlier pon. Combination is the pon as displayed, Added
// the fourth copy.
type Kakan struct {
	Combination [3]Tile
	Dir         Direction
	Added       Tile
}

// Tsumogiri is discarding the tile just drawn.
type Tsumogiri struct{}

// TsumogiriRiichi is declaring riichi while discarding the tile just drawn.
type TsumogiriRiichi struct{}

// Dummy pads the release stream after an open kan so draw and release
// indexes stay aligned.
type Dummy struct{}

func (Discard) outgoing()         {}
func (Riichi) outgoing()          {}
func (Ankan) outgoing()           {}
func (Kakan) outgoing()           {}
func (Tsumogiri) outgoing()       {}
func (TsumogiriRiichi) outgoing() {}
func (Dummy) outgoing()           {}

// RoundSettings is the round header: counters, entry scores and the dora
// indicators revealed during the round.
type RoundSettings struct {
	Kyoku    int
	Honba    int
	Kyoutaku int
	Points   []int
	Dora     []Tile
	UraDora  []Tile
}

// YakuLevel is the value of one yaku: a han count, or a yakuman.
type YakuLevel struct {
	Han     int
	Yakuman bool
}

func (l YakuLevel) String() string {
	if l.Yakuman {
		return "役満"
	}
	return fmt.Sprintf("%d飜", l.Han)
}

// YakuPair is one scored yaku, printed as "平和(1飜)".
type YakuPair struct {
	Yaku  Yaku
	Level YakuLevel
}

func (p YakuPair) String() string {
	return fmt.Sprintf("%s(%s)", p.Yaku, p.Level)
}

// Agari is one player's win inside a round result.
type Agari struct {
	DeltaPoints []int
	Who         int
	FromWho     int
	// PaoWho repeats Who when no seat carries liability.
	PaoWho      int
	RankedScore RankedScore
	Yaku        []YakuPair
}

// RoundResult closes a round: one or more wins, or a draw.
type RoundResult interface {
	roundResult()
}

// AgariResult holds the winners of the round, in seat order.
type AgariResult struct {
	Wins []Agari
}

// RyuukyokuResult is a drawn round. DeltaPoints is empty unless the draw
// moved points.
type RyuukyokuResult struct {
	Reason      DrawReason
	DeltaPoints []int
}

func (AgariResult) roundResult()     {}
func (RyuukyokuResult) roundResult() {}

// DrawReason is the display word of a drawn round.
type DrawReason uint8

const (
	// DrawExhaustive is the plain word when tenpai display is unavailable.
	DrawExhaustive DrawReason = iota
	DrawKyuushuuKyuuhai
	DrawSuuchaRiichi
	DrawSanchaHoura
	DrawSuukanSanra
	DrawSuufuuRenda
	DrawNagashiMangan
	DrawTenpaiEverybody
	DrawTenpaiNobody
)

var drawReasonNames = [...]string{
	"流局",
	"九種九牌",
	"四家立直",
	"三家和了",
	"四槓散了",
	"四風連打",
	"流し満貫",
	"全員聴牌",
	"全員不聴",
}

func (r DrawReason) String() string {
	if int(r) < len(drawReasonNames) {
		return drawReasonNames[r]
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// ParseDrawReason maps a display word back to its reason.
func ParseDrawReason(s string) (DrawReason, bool) {
	for i, name := range drawReasonNames {
		if name == s {
			return DrawReason(i), true
		}
	}
	return 0, false
}

// Rule is the ruleset block: the display string plus one flag per red five.
type Rule struct {
	Disp  string
	Aka51 bool
	Aka52 bool
	Aka53 bool
}

// RoundPlayer is one seat's view of a round: the dealt hand plus the
// index-aligned acquisition and release streams.
type RoundPlayer struct {
	Hand     []Tile
	Incoming []IncomingTile
	Outgoing []OutgoingTile
}

// Round is one complete round record.
type Round struct {
	Settings RoundSettings
	Players  [4]RoundPlayer
	Result   RoundResult
}

// Connection is one leave or return event. Log is the round index it
// happened in, -1 before the first round; Step counts the in-round actions
// that precede it.
type Connection struct {
	What int
	Log  int
	Who  int
	Step int
}

// Log is a complete match document.
type Log struct {
	Ver          float64
	Ref          string
	Rounds       []Round
	Connections  []Connection
	RatingC      string
	Rule         Rule
	Lobby        int
	Dan          []string
	Rate         []float64
	Sx           []string
	FinalPoints  []int
	FinalResults []float64
	Names        []string
}

// Yaku identifies a winning-hand combination. The identifiers are shared
// with the packed-integer format; the display names live here.
type Yaku uint8

var yakuNames = [...]string{
	"門前清自摸和",
	"立直",
	"一発",
	"槍槓",
	"嶺上開花",
	"海底摸月",
	"河底撈魚",
	"平和",
	"断幺九",
	"一盃口",
	"自風 東",
	"自風 南",
	"自風 西",
	"自風 北",
	"場風 東",
	"場風 南",
	"場風 西",
	"場風 北",
	"役牌 白",
	"役牌 發",
	"役牌 中",
	"両立直",
	"七対子",
	"混全帯幺九",
	"一気通貫",
	"三色同順",
	"三色同刻",
	"三槓子",
	"対々和",
	"三暗刻",
	"小三元",
	"混老頭",
	"二盃口",
	"純全帯幺九",
	"混一色",
	"清一色",
	"人和",
	"天和",
	"地和",
	"大三元",
	"四暗刻",
	"四暗刻単騎",
	"字一色",
	"緑一色",
	"清老頭",
	"九蓮宝燈",
	"純正九蓮宝燈",
	"国士無双",
	"国士無双１３面",
	"大四喜",
	"小四喜",
	"四槓子",
	"ドラ",
	"裏ドラ",
	"赤ドラ",
}

// YakuCount is the size of the yaku identifier space.
const YakuCount = len(yakuNames)

func (y Yaku) String() string {
	if int(y) < len(yakuNames) {
		return yakuNames[y]
	}
	return fmt.Sprintf("yaku(%d)", uint8(y))
}

// ParseYaku maps a display name back to its identifier.
func ParseYaku(s string) (Yaku, bool) {
	for i, name := range yakuNames {
		if name == s {
			return Yaku(i), true
		}
	}
	return 0, false
}

// DanNames are the rank display names, newcomer through the top title,
// indexed by the packed rank value.
var DanNames = [...]string{
	"新人",
	"９級",
	"８級",
	"７級",
	"６級",
	"５級",
	"４級",
	"３級",
	"２級",
	"１級",
	"初段",
	"二段",
	"三段",
	"四段",
	"五段",
	"六段",
	"七段",
	"八段",
	"九段",
	"十段",
	"天鳳",
}
