package convert

import (
	"github.com/mjarchive/mjconv/mjlog"
	"github.com/mjarchive/mjconv/tenhou"
)

// replaySeat walks one seat's actions of a round and rebuilds its
// acquisition and release streams. A discard whose ordinal matches the
// preceding draw is a tsumogiri; a riichi declaration decorates the discard
// that follows it.
func replaySeat(actions []mjlog.Action, seat int) ([]tenhou.IncomingTile, []tenhou.OutgoingTile) {
	var incoming []tenhou.IncomingTile
	var outgoing []tenhou.OutgoingTile
	reachDeclared := false
	lastDraw := -1

	for _, a := range actions {
		switch v := a.(type) {
		case mjlog.Draw:
			if v.Who != seat {
				continue
			}
			incoming = append(incoming, tenhou.Tsumo{Tile: haiToTile(v.Hai)})
			lastDraw = int(v.Hai)
		case mjlog.Discard:
			if v.Who != seat {
				continue
			}
			switch {
			case int(v.Hai) == lastDraw && reachDeclared:
				outgoing = append(outgoing, tenhou.TsumogiriRiichi{})
			case int(v.Hai) == lastDraw:
				outgoing = append(outgoing, tenhou.Tsumogiri{})
			case reachDeclared:
				outgoing = append(outgoing, tenhou.Riichi{Tile: haiToTile(v.Hai)})
			default:
				outgoing = append(outgoing, tenhou.Discard{Tile: haiToTile(v.Hai)})
			}
			reachDeclared = false
			lastDraw = -1
		case mjlog.ReachDeclared:
			if v.Who != seat {
				continue
			}
			reachDeclared = true
		case mjlog.Call:
			if v.Who != seat {
				continue
			}
			in, out := replayCall(v.Meld)
			if in != nil {
				incoming = append(incoming, in)
			}
			if out != nil {
				outgoing = append(outgoing, out)
			}
		}
	}

	// An open kan pads the release stream to keep the two streams aligned;
	// padding with nothing after it carries no information.
	for len(outgoing) > 0 {
		if _, ok := outgoing[len(outgoing)-1].(tenhou.Dummy); !ok {
			break
		}
		outgoing = outgoing[:len(outgoing)-1]
	}
	return incoming, outgoing
}

// replayCall maps one exposed meld onto the stream entries it produces. A
// chii, pon or open kan is an acquisition; an added or closed kan is a
// release; an open kan additionally pads the release stream.
func replayCall(meld mjlog.Meld) (tenhou.IncomingTile, tenhou.OutgoingTile) {
	switch m := meld.(type) {
	case mjlog.Chii:
		return tenhou.Chii{Combination: chiiDisplay(m)}, nil
	case mjlog.Pon:
		dir := convDir(m.Dir)
		return tenhou.Pon{Combination: ponDisplay(m.Called, m.Unused, dir), Dir: dir}, nil
	case mjlog.Kakan:
		dir := convDir(m.Dir)
		comb, added := kakanDisplay(m.Called, m.Added, dir)
		return nil, tenhou.Kakan{Combination: comb, Dir: dir, Added: added}
	case mjlog.Daiminkan:
		dir := convDir(m.Dir)
		return tenhou.Daiminkan{Combination: daiminkanDisplay(m.Hai, dir), Dir: dir}, tenhou.Dummy{}
	case mjlog.Ankan:
		// A closed kan of fives always holds the red copy, and the red code
		// is the one recorded.
		return nil, tenhou.Ankan{Tile: haiToTile(m.Hai).ToRed()}
	}
	return nil, nil
}

// chiiDisplay reorders the ascending run into board placement: the claimed
// tile is shown first.
func chiiDisplay(m mjlog.Chii) [3]tenhou.Tile {
	a := haiToTile(m.Combination[0])
	b := haiToTile(m.Combination[1])
	c := haiToTile(m.Combination[2])
	switch m.CalledSlot {
	case 1:
		a, b = b, a
	case 2:
		a, b, c = c, a, b
	}
	return [3]tenhou.Tile{a, b, c}
}

// ponDisplay lays an exposed triple out the way the board shows it. For a
// five exactly one of the four physical copies is red, and its display
// position depends on whether it was the claimed copy, the copy left
// unused, or a hand copy.
func ponDisplay(called, unused mjlog.Hai, dir tenhou.Direction) [3]tenhou.Tile {
	tile := haiToTile(called)
	if !called.IsNumberFive() {
		return [3]tenhou.Tile{tile, tile, tile}
	}

	black := tile.ToBlack()
	comb := [3]tenhou.Tile{black, black, black}
	switch {
	case haiToTile(unused).IsRed():
		// The red copy stayed in the wall or another hand.
	case tile.IsRed():
		comb[calledSlot3(dir)] = tile
	case dir == tenhou.DirShimocha:
		comb[1] = black.ToRed()
	default:
		comb[2] = black.ToRed()
	}
	return comb
}

// kakanDisplay is ponDisplay for the added-kan case: the fourth copy sits
// apart from the original triple.
func kakanDisplay(called, added mjlog.Hai, dir tenhou.Direction) ([3]tenhou.Tile, tenhou.Tile) {
	tile := haiToTile(called)
	addedTile := haiToTile(added)
	if !called.IsNumberFive() {
		return [3]tenhou.Tile{tile, tile, tile}, addedTile
	}

	black := tile.ToBlack()
	comb := [3]tenhou.Tile{black, black, black}
	switch {
	case addedTile.IsRed():
	case tile.IsRed():
		comb[calledSlot3(dir)] = tile
	case dir == tenhou.DirShimocha:
		comb[1] = black.ToRed()
	default:
		comb[2] = black.ToRed()
	}
	return comb, addedTile
}

func daiminkanDisplay(hai mjlog.Hai, dir tenhou.Direction) [4]tenhou.Tile {
	tile := haiToTile(hai)
	if !hai.IsNumberFive() {
		return [4]tenhou.Tile{tile, tile, tile, tile}
	}

	black := tile.ToBlack()
	comb := [4]tenhou.Tile{black, black, black, black}
	switch {
	case tile.IsRed():
		comb[calledSlot4(dir)] = tile
	case dir == tenhou.DirShimocha:
		comb[2] = black.ToRed()
	default:
		comb[3] = black.ToRed()
	}
	return comb
}

// calledSlot3 is the display position of the claimed tile in a three-tile
// meld.
func calledSlot3(dir tenhou.Direction) int {
	switch dir {
	case tenhou.DirKamicha:
		return 0
	case tenhou.DirToimen:
		return 1
	default:
		return 2
	}
}

// calledSlot4 is the display position of the claimed tile in an open kan.
func calledSlot4(dir tenhou.Direction) int {
	switch dir {
	case tenhou.DirKamicha:
		return 0
	case tenhou.DirToimen:
		return 1
	default:
		return 3
	}
}
