// Package convert transforms a parsed attribute-format match log into the
// array-format document, and back again. The forward direction is total over
// well-formed inputs; the reverse direction rebuilds a canonical action
// sequence whose forward conversion reproduces the document exactly.
package convert

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mjarchive/mjconv/mjlog"
	"github.com/mjarchive/mjconv/tenhou"
)

var (
	// ErrMissingGo marks a log without a table-open action.
	ErrMissingGo = errors.New("convert: no table-open action")

	// ErrMissingRoster marks a log without a four-player roster.
	ErrMissingRoster = errors.New("convert: no roster action")

	// ErrMissingRound marks a log that never deals a round.
	ErrMissingRound = errors.New("convert: no rounds")

	// ErrMissingTerminal marks a round that neither ends in a win nor a draw.
	ErrMissingTerminal = errors.New("convert: round has no terminal action")

	// ErrMissingFinalResult marks a log whose last terminal carries no final
	// standing.
	ErrMissingFinalResult = errors.New("convert: no final standing")

	// ErrRoundFormat marks a round whose actions do not form a valid record.
	ErrRoundFormat = errors.New("convert: invalid round format")

	// ErrUnknownRank marks a rank display name outside the 21-entry table.
	ErrUnknownRank = errors.New("convert: unknown rank name")

	// ErrUnknownRule marks a ruleset display string that cannot be decoded.
	ErrUnknownRule = errors.New("convert: unknown ruleset display")

	// ErrRoundShape marks per-seat streams that cannot be arranged into a
	// turn order.
	ErrRoundShape = errors.New("convert: round streams are inconsistent")
)

// Convert builds the array-format document for a parsed match log.
func Convert(actions []mjlog.Action) (*tenhou.Log, error) {
	var goAction *mjlog.Go
	var roster *mjlog.Roster
	for _, a := range actions {
		switch v := a.(type) {
		case mjlog.Go:
			if goAction == nil {
				g := v
				goAction = &g
			}
		case mjlog.Roster:
			if roster == nil {
				r := v
				roster = &r
			}
		}
	}
	if goAction == nil {
		return nil, ErrMissingGo
	}
	if roster == nil {
		return nil, ErrMissingRoster
	}

	indices := roundIndices(actions)
	if len(indices) == 0 {
		return nil, ErrMissingRound
	}

	owari, err := findFinalResult(actions)
	if err != nil {
		return nil, err
	}

	rounds := make([]tenhou.Round, len(indices))
	for i, span := range indices {
		r, err := convRound(actions[span[0]:span[1]])
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		rounds[i] = r
	}

	dans := make([]string, len(roster.Dans))
	for i, rank := range roster.Dans {
		if int(rank) >= len(tenhou.DanNames) {
			return nil, fmt.Errorf("%w: rank %d", ErrUnknownRank, rank)
		}
		dans[i] = tenhou.DanNames[rank]
	}

	return &tenhou.Log{
		Ver:          2.3,
		Ref:          "",
		Rounds:       rounds,
		Connections:  convConnections(actions, indices),
		RatingC:      "PF4",
		Rule:         convRule(goAction.Settings),
		Lobby:        goAction.Lobby,
		Dan:          dans,
		Rate:         roster.Rates,
		Sx:           roster.Sx,
		FinalPoints:  scale100(owari.Points),
		FinalResults: owari.Results,
		Names:        roster.Names,
	}, nil
}

// roundIndices finds the half-open action span of each round: an INIT opens
// a round, the next INIT (or the end of the log) closes it.
func roundIndices(actions []mjlog.Action) [][2]int {
	var indices [][2]int
	start := -1
	for i, a := range actions {
		if _, ok := a.(mjlog.Init); ok {
			if start >= 0 {
				indices = append(indices, [2]int{start, i})
			}
			start = i
		}
	}
	if start >= 0 {
		indices = append(indices, [2]int{start, len(actions)})
	}
	return indices
}

// findFinalResult pulls the final standing off the last terminal action.
func findFinalResult(actions []mjlog.Action) (*mjlog.Owari, error) {
	for i := len(actions) - 1; i >= 0; i-- {
		switch v := actions[i].(type) {
		case *mjlog.Agari:
			if v.Owari == nil {
				return nil, fmt.Errorf("%w: last win carries no standing", ErrMissingFinalResult)
			}
			return v.Owari, nil
		case *mjlog.Ryuukyoku:
			if v.Owari == nil {
				return nil, fmt.Errorf("%w: last draw carries no standing", ErrMissingFinalResult)
			}
			return v.Owari, nil
		}
	}
	return nil, ErrMissingFinalResult
}

func convRule(s mjlog.GameSettings) tenhou.Rule {
	var disp strings.Builder
	switch s.Room {
	case mjlog.RoomJoukyu:
		disp.WriteString("上")
	case mjlog.RoomTokujou:
		disp.WriteString("特")
	case mjlog.RoomHouou:
		disp.WriteString("鳳")
	default:
		disp.WriteString("般")
	}
	if s.Hanchan {
		disp.WriteString("南")
	} else {
		disp.WriteString("東")
	}
	if !s.NoKuitan {
		disp.WriteString("喰")
	}
	if !s.NoRed {
		disp.WriteString("赤")
	}
	if s.Soku {
		disp.WriteString("速")
	}

	red := !s.NoRed
	return tenhou.Rule{Disp: disp.String(), Aka51: red, Aka52: red, Aka53: red}
}

// haiToTile maps a physical ordinal to its display code. Which copy of a
// suited five is the red one is fixed by the deal, so the three red ordinals
// always map to the red codes.
func haiToTile(h mjlog.Hai) tenhou.Tile {
	switch h {
	case 16:
		return 51
	case 52:
		return 52
	case 88:
		return 53
	}
	pict := h.PictIndex()
	return tenhou.Tile((pict/9+1)*10 + pict%9 + 1)
}

// tileKind is the inverse of the kind part of haiToTile: display code to
// pict index 0..33.
func tileKind(t tenhou.Tile) int {
	b := t.ToBlack()
	return (int(b)/10-1)*9 + int(b)%10 - 1
}

func convRound(actions []mjlog.Action) (tenhou.Round, error) {
	init, ok := actions[0].(mjlog.Init)
	if !ok {
		return tenhou.Round{}, ErrRoundFormat
	}

	settings, err := convRoundSettings(init, actions)
	if err != nil {
		return tenhou.Round{}, err
	}
	players, err := convRoundPlayers(init, actions)
	if err != nil {
		return tenhou.Round{}, err
	}
	result, err := convRoundResult(actions, init.Oya)
	if err != nil {
		return tenhou.Round{}, err
	}
	return tenhou.Round{Settings: settings, Players: players, Result: result}, nil
}

func convRoundSettings(init mjlog.Init, actions []mjlog.Action) (tenhou.RoundSettings, error) {
	dora := []tenhou.Tile{haiToTile(init.Seed.DoraHyouji)}
	for _, a := range actions {
		if d, ok := a.(mjlog.Dora); ok {
			dora = append(dora, haiToTile(d.Hai))
		}
	}

	ura, terminal := uraDora(actions)
	if !terminal {
		return tenhou.RoundSettings{}, ErrMissingTerminal
	}

	return tenhou.RoundSettings{
		Kyoku:    init.Seed.Kyoku,
		Honba:    init.Seed.Honba,
		Kyoutaku: init.Seed.Kyoutaku,
		Points:   scale100(init.Ten),
		Dora:     dora,
		UraDora:  ura,
	}, nil
}

// uraDora finds the hidden indicators. They are recorded only in the win of
// the riichi declarer, so on a double ron the first non-empty set wins; they
// are the same for every winner.
func uraDora(actions []mjlog.Action) ([]tenhou.Tile, bool) {
	terminal := false
	for _, a := range actions {
		switch v := a.(type) {
		case *mjlog.Agari:
			terminal = true
			if len(v.DoraHaiUra) > 0 {
				ura := make([]tenhou.Tile, len(v.DoraHaiUra))
				for i, h := range v.DoraHaiUra {
					ura[i] = haiToTile(h)
				}
				return ura, true
			}
		case *mjlog.Ryuukyoku:
			terminal = true
		}
	}
	return []tenhou.Tile{}, terminal
}

func convRoundPlayers(init mjlog.Init, actions []mjlog.Action) ([4]tenhou.RoundPlayer, error) {
	var players [4]tenhou.RoundPlayer
	for seat := 0; seat < 4; seat++ {
		hand := make([]tenhou.Tile, len(init.Hai[seat]))
		for i, h := range init.Hai[seat] {
			hand[i] = haiToTile(h)
		}
		sort.SliceStable(hand, func(i, j int) bool {
			return handOrder(hand[i]) < handOrder(hand[j])
		})

		incoming, outgoing := replaySeat(actions, seat)
		players[seat] = tenhou.RoundPlayer{Hand: hand, Incoming: incoming, Outgoing: outgoing}
	}
	return players, nil
}

// handOrder sorts a dealt hand the way the platform displays it: the black
// five ahead of the red, the red ahead of the six.
func handOrder(t tenhou.Tile) int {
	switch t {
	case 51:
		return 151
	case 52:
		return 251
	case 53:
		return 351
	}
	return int(t) * 10
}

func convRoundResult(actions []mjlog.Action, oya int) (tenhou.RoundResult, error) {
	var draws []*mjlog.Ryuukyoku
	var wins []*mjlog.Agari
	for _, a := range actions {
		switch v := a.(type) {
		case *mjlog.Ryuukyoku:
			draws = append(draws, v)
		case *mjlog.Agari:
			wins = append(wins, v)
		}
	}

	if len(draws) == 1 {
		return drawResult(draws[0]), nil
	}
	if len(wins) > 0 {
		result := tenhou.AgariResult{}
		for _, w := range wins {
			agari, err := convAgari(w, oya)
			if err != nil {
				return nil, err
			}
			result.Wins = append(result.Wins, agari)
		}
		return result, nil
	}
	return nil, ErrRoundFormat
}

func drawResult(v *mjlog.Ryuukyoku) tenhou.RoundResult {
	reason := tenhou.DrawExhaustive
	if v.HasReason {
		// The special-draw identifiers line up between the two formats.
		reason = tenhou.DrawReason(v.Reason)
	} else {
		tenpai := 0
		for _, t := range v.Tenpai {
			if t {
				tenpai++
			}
		}
		switch tenpai {
		case 4:
			reason = tenhou.DrawTenpaiEverybody
		case 0:
			reason = tenhou.DrawTenpaiNobody
		}
	}

	var deltas []int
	for _, d := range v.DeltaTen {
		if d != 0 {
			deltas = scale100(v.DeltaTen)
			break
		}
	}
	return tenhou.RyuukyokuResult{Reason: reason, DeltaPoints: deltas}
}

// yakuUraDora is the hidden-indicator bonus identifier in the shared yaku
// space. The attribute format records it with zero han when the winner had
// no riichi; the text format drops the empty entry.
const yakuUraDora = mjlog.Yaku(53)

func convAgari(v *mjlog.Agari, oya int) (tenhou.Agari, error) {
	out := tenhou.Agari{
		DeltaPoints: scale100(v.DeltaTen),
		Who:         v.Who,
		FromWho:     v.FromWho,
		PaoWho:      v.Who,
	}
	if v.PaoWho >= 0 {
		out.PaoWho = v.PaoWho
	}

	dealer := v.Who == oya
	tsumo := v.IsTsumo()
	switch {
	case len(v.Yaku) > 0:
		han := 0
		for _, yh := range v.Yaku {
			if yh.Yaku == yakuUraDora && yh.Han == 0 {
				continue
			}
			out.Yaku = append(out.Yaku, tenhou.YakuPair{
				Yaku:  tenhou.Yaku(yh.Yaku),
				Level: tenhou.YakuLevel{Han: yh.Han},
			})
			han += yh.Han
		}
		out.RankedScore = tenhou.Score(v.Fu, han, dealer, tsumo)
	case len(v.Yakuman) > 0:
		for _, y := range v.Yakuman {
			out.Yaku = append(out.Yaku, tenhou.YakuPair{
				Yaku:  tenhou.Yaku(y),
				Level: tenhou.YakuLevel{Han: 1, Yakuman: true},
			})
		}
		out.RankedScore = tenhou.ScoreYakuman(len(v.Yakuman), dealer, tsumo)
	default:
		return tenhou.Agari{}, fmt.Errorf("%w: win carries no yaku", ErrRoundFormat)
	}
	return out, nil
}

// convConnections collects leave and return events. Events before the first
// deal carry the -1 round sentinel; in-round events record how many draws,
// discards and calls preceded them.
func convConnections(actions []mjlog.Action, indices [][2]int) []tenhou.Connection {
	var conns []tenhou.Connection
	for _, a := range actions[:indices[0][0]] {
		switch v := a.(type) {
		case mjlog.Bye:
			conns = append(conns, tenhou.Connection{What: 0, Log: -1, Who: v.Who})
		case mjlog.Reconnect:
			conns = append(conns, tenhou.Connection{What: 1, Log: -1, Who: v.Who})
		}
	}

	for logIndex, span := range indices {
		step := 0
		for _, a := range actions[span[0]:span[1]] {
			switch v := a.(type) {
			case mjlog.Bye:
				conns = append(conns, tenhou.Connection{What: 0, Log: logIndex, Who: v.Who, Step: step})
			case mjlog.Reconnect:
				conns = append(conns, tenhou.Connection{What: 1, Log: logIndex, Who: v.Who, Step: step})
			case mjlog.Draw, mjlog.Discard, mjlog.Call:
				step++
			}
		}
	}
	return conns
}

func convDir(d mjlog.Direction) tenhou.Direction {
	switch d {
	case mjlog.DirShimocha:
		return tenhou.DirShimocha
	case mjlog.DirToimen:
		return tenhou.DirToimen
	case mjlog.DirKamicha:
		return tenhou.DirKamicha
	default:
		return tenhou.DirSelf
	}
}

// scale100 converts 100-point units to points.
func scale100(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = x * 100
	}
	return out
}
