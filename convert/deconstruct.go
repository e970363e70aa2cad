package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mjarchive/mjconv/mjlog"
	"github.com/mjarchive/mjconv/tenhou"
)

// Deconstruct rebuilds a canonical attribute-format action sequence from an
// array-format document. The byte-level original is gone for good (dice,
// wall seeds and the fu of hands at a named tier are not recorded in the
// text format), so the target is the syntactic inverse: converting the
// rebuilt sequence reproduces the document exactly.
func Deconstruct(l *tenhou.Log) ([]mjlog.Action, error) {
	if len(l.Rounds) == 0 {
		return nil, ErrMissingRound
	}

	settings, err := parseRuleDisp(l.Rule)
	if err != nil {
		return nil, err
	}
	roster, err := rebuildRoster(l)
	if err != nil {
		return nil, err
	}

	actions := []mjlog.Action{
		mjlog.Go{Settings: settings, Lobby: l.Lobby},
		roster,
	}
	for _, c := range l.Connections {
		if c.Log < 0 {
			actions = append(actions, connectionAction(c, roster.Names))
		}
	}

	oya := l.Rounds[0].Settings.Kyoku % 4
	actions = append(actions, mjlog.Taikyoku{Oya: oya})

	for i := range l.Rounds {
		final := i == len(l.Rounds)-1
		round, err := deconstructRound(&l.Rounds[i], l, i, final)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		actions = append(actions, round...)
	}
	return actions, nil
}

// parseRuleDisp decodes the ruleset display string back into the table-open
// bitfield. The display never records the vs-human flag, so it is assumed.
func parseRuleDisp(r tenhou.Rule) (mjlog.GameSettings, error) {
	s := mjlog.GameSettings{VsHuman: true, NoRed: !r.Aka51}
	switch {
	case strings.HasPrefix(r.Disp, "般"):
		s.Room = mjlog.RoomIppan
	case strings.HasPrefix(r.Disp, "上"):
		s.Room = mjlog.RoomJoukyu
	case strings.HasPrefix(r.Disp, "特"):
		s.Room = mjlog.RoomTokujou
	case strings.HasPrefix(r.Disp, "鳳"):
		s.Room = mjlog.RoomHouou
	default:
		return mjlog.GameSettings{}, fmt.Errorf("%w: %q", ErrUnknownRule, r.Disp)
	}
	s.Hanchan = strings.Contains(r.Disp, "南")
	s.NoKuitan = !strings.Contains(r.Disp, "喰")
	s.Soku = strings.Contains(r.Disp, "速")
	return s, nil
}

func rebuildRoster(l *tenhou.Log) (mjlog.Roster, error) {
	dans := make([]mjlog.Rank, len(l.Dan))
	for i, name := range l.Dan {
		rank, ok := lookupRank(name)
		if !ok {
			return mjlog.Roster{}, fmt.Errorf("%w: %q", ErrUnknownRank, name)
		}
		dans[i] = rank
	}
	return mjlog.Roster{Names: l.Names, Dans: dans, Rates: l.Rate, Sx: l.Sx}, nil
}

func lookupRank(name string) (mjlog.Rank, bool) {
	for i, n := range tenhou.DanNames {
		if n == name {
			return mjlog.Rank(i), true
		}
	}
	return 0, false
}

func connectionAction(c tenhou.Connection, names []string) mjlog.Action {
	if c.What == 1 {
		name := ""
		if c.Who >= 0 && c.Who < len(names) {
			name = names[c.Who]
		}
		return mjlog.Reconnect{Who: c.Who, Name: name}
	}
	return mjlog.Bye{Who: c.Who}
}

func deconstructRound(r *tenhou.Round, l *tenhou.Log, logIndex int, final bool) ([]mjlog.Action, error) {
	if len(r.Settings.Dora) == 0 {
		return nil, fmt.Errorf("%w: no dora indicator", ErrRoundShape)
	}

	alloc := &haiAlloc{}
	var hands [4][]mjlog.Hai
	for seat, p := range r.Players {
		hand := make([]mjlog.Hai, len(p.Hand))
		for i, t := range p.Hand {
			hand[i] = alloc.take(t)
		}
		hands[seat] = hand
	}

	doraHais := make([]mjlog.Hai, len(r.Settings.Dora))
	for i, d := range r.Settings.Dora {
		doraHais[i] = alloc.take(d)
	}

	oya := r.Settings.Kyoku % 4
	init := mjlog.Init{
		Seed: mjlog.InitSeed{
			Kyoku:      r.Settings.Kyoku,
			Honba:      r.Settings.Honba,
			Kyoutaku:   r.Settings.Kyoutaku,
			Dice:       [2]int{1, 1},
			DoraHyouji: doraHais[0],
		},
		Ten: unscale100(r.Settings.Points),
		Oya: oya,
		Hai: hands,
	}

	engine := &turnEngine{alloc: alloc, dora: doraHais[1:]}
	copy(engine.scores[:], init.Ten)
	for seat := range engine.seats {
		engine.seats[seat] = seatState{
			in:  r.Players[seat].Incoming,
			out: r.Players[seat].Outgoing,
		}
		engine.remaining += len(r.Players[seat].Incoming) + len(r.Players[seat].Outgoing)
	}
	if err := engine.run(oya); err != nil {
		return nil, err
	}

	actions := append([]mjlog.Action{init}, engine.actions...)
	// Indicators not consumed by a kan reveal (which cannot happen in a
	// well-formed document) still have to reach the dora list.
	for _, h := range engine.dora {
		actions = append(actions, mjlog.Dora{Hai: h})
	}

	terminal, err := terminalActions(r, l, doraHais, alloc, engine.lastHai, final)
	if err != nil {
		return nil, err
	}
	actions = append(actions, terminal...)

	return insertRoundConnections(actions, l, logIndex), nil
}

// insertRoundConnections re-places leave/return events inside the round so
// that the recorded number of draws, discards and calls precedes each one.
func insertRoundConnections(actions []mjlog.Action, l *tenhou.Log, logIndex int) []mjlog.Action {
	var events []tenhou.Connection
	for _, c := range l.Connections {
		if c.Log == logIndex {
			events = append(events, c)
		}
	}
	if len(events) == 0 {
		return actions
	}

	out := make([]mjlog.Action, 0, len(actions)+len(events))
	count, j := 0, 0
	for _, a := range actions {
		if isStepAction(a) {
			for j < len(events) && events[j].Step <= count {
				c := connectionAction(events[j], l.Names)
				// A riichi declaration and its discard stay adjacent, so an
				// event landing on the discard goes before the pair.
				if n := len(out); n > 0 {
					if _, ok := out[n-1].(mjlog.ReachDeclared); ok {
						decl := out[n-1]
						out = append(out[:n-1], c, decl)
						j++
						continue
					}
				}
				out = append(out, c)
				j++
			}
			count++
		}
		out = append(out, a)
	}
	for ; j < len(events); j++ {
		out = append(out, connectionAction(events[j], l.Names))
	}
	return out
}

func isStepAction(a mjlog.Action) bool {
	switch a.(type) {
	case mjlog.Draw, mjlog.Discard, mjlog.Call:
		return true
	}
	return false
}

// haiAlloc hands out physical copies for display codes. The red copy of a
// suited five is pinned to its fixed ordinal; everything else cycles through
// the remaining copies so the same kind taken twice yields distinct tiles.
type haiAlloc struct {
	next [34]int
}

func (a *haiAlloc) take(t tenhou.Tile) mjlog.Hai {
	switch t {
	case 51:
		return 16
	case 52:
		return 52
	case 53:
		return 88
	}
	kind := tileKind(t)
	span, first := 4, 0
	if fiveKind(kind) {
		span, first = 3, 1
	}
	off := first + a.next[kind]%span
	a.next[kind]++
	return mjlog.Hai(kind*4 + off)
}

// takeAvoid takes a copy that is not the given ordinal, so a fresh discard
// of the kind just drawn is not mistaken for a tsumogiri.
func (a *haiAlloc) takeAvoid(t tenhou.Tile, avoid mjlog.Hai) mjlog.Hai {
	h := a.take(t)
	if h == avoid {
		h = a.take(t)
	}
	return h
}

func fiveKind(kind int) bool { return kind < 27 && kind%9 == 4 }

type seatState struct {
	in       []tenhou.IncomingTile
	out      []tenhou.OutgoingTile
	inIdx    int
	outIdx   int
	lastDraw mjlog.Hai
	hasDraw  bool
}

// turnEngine interleaves the four per-seat streams back into a single
// turn-ordered action sequence. After each discard the turn passes to a seat
// whose next recorded event claims the tile, or to the seat to the right.
type turnEngine struct {
	seats     [4]seatState
	actions   []mjlog.Action
	alloc     *haiAlloc
	dora      []mjlog.Hai
	scores    [4]int
	lastHai   mjlog.Hai
	remaining int
}

func (e *turnEngine) emit(a mjlog.Action) {
	switch v := a.(type) {
	case mjlog.Draw:
		e.lastHai = v.Hai
	case mjlog.Discard:
		e.lastHai = v.Hai
	}
	e.actions = append(e.actions, a)
}

// revealDora emits the next pending indicator. Every kan past the first
// indicator reveals one.
func (e *turnEngine) revealDora() {
	if len(e.dora) > 0 {
		e.emit(mjlog.Dora{Hai: e.dora[0]})
		e.dora = e.dora[1:]
	}
}

func (e *turnEngine) run(oya int) error {
	cur := oya
	for e.remaining > 0 {
		next, err := e.playTurn(cur)
		if err != nil {
			return err
		}
		cur = next
	}
	return nil
}

// playTurn plays one seat's turn: an acquisition (draw or call), any number
// of kans with their replacement draws, and the closing release. A turn with
// no release ends the round for this seat (tsumo win or abortive draw).
func (e *turnEngine) playTurn(cur int) (int, error) {
	s := &e.seats[cur]
	for {
		if s.inIdx >= len(s.in) {
			if e.remaining > 0 {
				return 0, fmt.Errorf("%w: seat %d has no acquisition left", ErrRoundShape, cur)
			}
			return cur, nil
		}

		switch v := s.in[s.inIdx].(type) {
		case tenhou.Tsumo:
			s.inIdx++
			e.remaining--
			hai := e.alloc.take(v.Tile)
			s.lastDraw, s.hasDraw = hai, true
			e.emit(mjlog.Draw{Who: cur, Hai: hai})
		case tenhou.Chii:
			s.inIdx++
			e.remaining--
			meld, err := chiiMeld(v, e.alloc)
			if err != nil {
				return 0, err
			}
			e.emit(mjlog.Call{Who: cur, Meld: meld})
		case tenhou.Pon:
			s.inIdx++
			e.remaining--
			meld, err := ponMeld(v)
			if err != nil {
				return 0, err
			}
			e.emit(mjlog.Call{Who: cur, Meld: meld})
		case tenhou.Daiminkan:
			s.inIdx++
			e.remaining--
			meld, err := daiminkanMeld(v)
			if err != nil {
				return 0, err
			}
			e.emit(mjlog.Call{Who: cur, Meld: meld})
			e.revealDora()
			if s.outIdx < len(s.out) {
				if _, ok := s.out[s.outIdx].(tenhou.Dummy); ok {
					s.outIdx++
					e.remaining--
				}
			}
			// Replacement draw next, still this seat's turn.
			continue
		default:
			return 0, fmt.Errorf("%w: seat %d acquisition %T", ErrRoundShape, cur, s.in[s.inIdx])
		}

		if s.outIdx >= len(s.out) {
			// No release recorded: the round ends on this seat's turn.
			return cur, nil
		}
		switch o := s.out[s.outIdx].(type) {
		case tenhou.Ankan:
			s.outIdx++
			e.remaining--
			meld, err := ankanMeld(o)
			if err != nil {
				return 0, err
			}
			e.emit(mjlog.Call{Who: cur, Meld: meld})
			e.revealDora()
		case tenhou.Kakan:
			s.outIdx++
			e.remaining--
			meld, err := kakanMeld(o)
			if err != nil {
				return 0, err
			}
			e.emit(mjlog.Call{Who: cur, Meld: meld})
			e.revealDora()
		case tenhou.Dummy:
			s.outIdx++
			e.remaining--
		default:
			return e.release(cur, o)
		}
	}
}

// release emits the closing discard of a turn and picks the next actor.
func (e *turnEngine) release(cur int, o tenhou.OutgoingTile) (int, error) {
	s := &e.seats[cur]
	s.outIdx++
	e.remaining--

	var hai mjlog.Hai
	riichi := false
	switch v := o.(type) {
	case tenhou.Tsumogiri:
		if !s.hasDraw {
			return 0, fmt.Errorf("%w: seat %d tsumogiri without a draw", ErrRoundShape, cur)
		}
		hai = s.lastDraw
	case tenhou.TsumogiriRiichi:
		if !s.hasDraw {
			return 0, fmt.Errorf("%w: seat %d tsumogiri without a draw", ErrRoundShape, cur)
		}
		hai = s.lastDraw
		riichi = true
	case tenhou.Discard:
		hai = e.alloc.takeAvoid(v.Tile, s.lastDraw)
	case tenhou.Riichi:
		hai = e.alloc.takeAvoid(v.Tile, s.lastDraw)
		riichi = true
	default:
		return 0, fmt.Errorf("%w: seat %d release %T", ErrRoundShape, cur, o)
	}

	if riichi {
		e.emit(mjlog.ReachDeclared{Who: cur})
	}
	e.emit(mjlog.Discard{Who: cur, Hai: hai})
	if riichi {
		e.scores[cur] -= 10
		e.emit(mjlog.ReachConfirmed{Who: cur, Ten: append([]int(nil), e.scores[:]...)})
	}
	return e.nextSeat(cur, hai), nil
}

// nextSeat decides who acts after a discard: a seat whose next recorded
// acquisition claims the tile, or the seat to the right. A run can only come
// from the right seat, which the fall-through already covers.
func (e *turnEngine) nextSeat(cur int, discarded mjlog.Hai) int {
	kind := discarded.PictIndex()
	for t := 0; t < 4; t++ {
		if t == cur {
			continue
		}
		st := &e.seats[t]
		if st.inIdx >= len(st.in) {
			continue
		}
		switch v := st.in[st.inIdx].(type) {
		case tenhou.Pon:
			if seatDirection(t, cur) == v.Dir && tileKind(v.Combination[0]) == kind {
				return t
			}
		case tenhou.Daiminkan:
			if seatDirection(t, cur) == v.Dir && tileKind(v.Combination[0]) == kind {
				return t
			}
		}
	}
	return (cur + 1) % 4
}

// seatDirection is where the discarder sits from the caller's point of view.
func seatDirection(caller, discarder int) tenhou.Direction {
	switch (discarder - caller + 4) % 4 {
	case 1:
		return tenhou.DirShimocha
	case 2:
		return tenhou.DirToimen
	case 3:
		return tenhou.DirKamicha
	}
	return tenhou.DirSelf
}

// chiiMeld rebuilds the ascending run from its display order. The claimed
// tile is displayed first; its rank within the run is the called slot.
func chiiMeld(v tenhou.Chii, alloc *haiAlloc) (mjlog.Meld, error) {
	idx := []int{0, 1, 2}
	sort.Slice(idx, func(i, j int) bool {
		return tileKind(v.Combination[idx[i]]) < tileKind(v.Combination[idx[j]])
	})

	var comb [3]mjlog.Hai
	calledSlot := -1
	for slot, i := range idx {
		comb[slot] = alloc.take(v.Combination[i])
		if i == 0 {
			calledSlot = slot
		}
	}

	minKind := comb[0].PictIndex()
	if minKind/9 > 2 || minKind%9 > 6 ||
		comb[1].PictIndex() != minKind+1 || comb[2].PictIndex() != minKind+2 {
		return nil, fmt.Errorf("%w: run %v", ErrRoundShape, v.Combination)
	}

	meld := mjlog.Chii{Combination: comb, CalledSlot: calledSlot}
	if chiiDisplay(meld) != v.Combination {
		return nil, fmt.Errorf("%w: run display %v", ErrRoundShape, v.Combination)
	}
	return meld, nil
}

// meldCopies picks the physical copies of a triple-based meld. calledRed
// claims the red copy; combRed keeps the red inside the exposed triple with
// a black copy claimed; otherwise the red copy is the one set apart.
func meldCopies(kind int, calledRed, combRed bool) (comb [3]mjlog.Hai, called, fourth mjlog.Hai) {
	base := kind * 4
	if fiveKind(kind) && !calledRed && !combRed {
		// The fourth (unused or added) copy is the red one: the triple is
		// the three black copies.
		return [3]mjlog.Hai{mjlog.Hai(base + 3), mjlog.Hai(base + 1), mjlog.Hai(base + 2)},
			mjlog.Hai(base + 3), mjlog.Hai(base)
	}
	comb = [3]mjlog.Hai{mjlog.Hai(base), mjlog.Hai(base + 1), mjlog.Hai(base + 2)}
	called = comb[0]
	if combRed {
		called = comb[1]
	}
	return comb, called, mjlog.Hai(base + 3)
}

func ponMeld(v tenhou.Pon) (mjlog.Meld, error) {
	kind, redSlot, err := tripleShape(v.Combination[:])
	if err != nil {
		return nil, err
	}
	dir := deconvDir(v.Dir)
	if dir == mjlog.DirSelf {
		return nil, fmt.Errorf("%w: triple from self", ErrRoundShape)
	}

	calledRed := redSlot >= 0 && redSlot == calledSlot3(v.Dir)
	combRed := redSlot >= 0 && !calledRed
	comb, called, unused := meldCopies(kind, calledRed, combRed)
	meld := mjlog.Pon{Dir: dir, Combination: comb, Called: called, Unused: unused}
	if ponDisplay(called, unused, v.Dir) != v.Combination {
		return nil, fmt.Errorf("%w: triple display %v", ErrRoundShape, v.Combination)
	}
	return meld, nil
}

func kakanMeld(v tenhou.Kakan) (mjlog.Meld, error) {
	kind, redSlot, err := tripleShape(v.Combination[:])
	if err != nil {
		return nil, err
	}
	if tileKind(v.Added) != kind {
		return nil, fmt.Errorf("%w: added copy %d outside the triple", ErrRoundShape, v.Added)
	}
	dir := deconvDir(v.Dir)
	if dir == mjlog.DirSelf {
		return nil, fmt.Errorf("%w: added kan from self", ErrRoundShape)
	}

	var comb [3]mjlog.Hai
	var called, added mjlog.Hai
	if v.Added.IsRed() {
		// The red copy is the one added on top.
		base := kind * 4
		comb = [3]mjlog.Hai{mjlog.Hai(base + 3), mjlog.Hai(base + 1), mjlog.Hai(base + 2)}
		called, added = comb[0], mjlog.Hai(base)
	} else {
		calledRed := redSlot >= 0 && redSlot == calledSlot3(v.Dir)
		combRed := redSlot >= 0 && !calledRed
		comb, called, added = meldCopies(kind, calledRed, combRed)
	}

	meld := mjlog.Kakan{Dir: dir, Combination: comb, Called: called, Added: added}
	gotComb, gotAdded := kakanDisplay(called, added, v.Dir)
	if gotComb != v.Combination || gotAdded != v.Added {
		return nil, fmt.Errorf("%w: added-kan display %v+%d", ErrRoundShape, v.Combination, v.Added)
	}
	return meld, nil
}

func daiminkanMeld(v tenhou.Daiminkan) (mjlog.Meld, error) {
	kind := tileKind(v.Combination[0])
	for _, t := range v.Combination {
		if tileKind(t) != kind {
			return nil, fmt.Errorf("%w: open kan %v", ErrRoundShape, v.Combination)
		}
	}
	dir := deconvDir(v.Dir)
	if dir == mjlog.DirSelf {
		return nil, fmt.Errorf("%w: open kan from self", ErrRoundShape)
	}

	base := kind * 4
	hai := mjlog.Hai(base)
	if fiveKind(kind) && !v.Combination[calledSlot4(v.Dir)].IsRed() {
		hai = mjlog.Hai(base + 1)
	}
	meld := mjlog.Daiminkan{Dir: dir, Hai: hai}
	if daiminkanDisplay(hai, v.Dir) != v.Combination {
		return nil, fmt.Errorf("%w: open-kan display %v", ErrRoundShape, v.Combination)
	}
	return meld, nil
}

func ankanMeld(v tenhou.Ankan) (mjlog.Meld, error) {
	hai := mjlog.Hai(tileKind(v.Tile) * 4)
	if haiToTile(hai).ToRed() != v.Tile {
		return nil, fmt.Errorf("%w: closed kan of %d", ErrRoundShape, v.Tile)
	}
	return mjlog.Ankan{Hai: hai}, nil
}

// tripleShape validates that three display tiles are one kind and locates
// the red copy, -1 when the triple is all black.
func tripleShape(tiles []tenhou.Tile) (kind, redSlot int, err error) {
	kind = tileKind(tiles[0])
	redSlot = -1
	for i, t := range tiles {
		if tileKind(t) != kind {
			return 0, 0, fmt.Errorf("%w: triple %v", ErrRoundShape, tiles)
		}
		if t.IsRed() {
			if redSlot >= 0 {
				return 0, 0, fmt.Errorf("%w: triple %v holds two red copies", ErrRoundShape, tiles)
			}
			redSlot = i
		}
	}
	return kind, redSlot, nil
}

func deconvDir(d tenhou.Direction) mjlog.Direction {
	switch d {
	case tenhou.DirShimocha:
		return mjlog.DirShimocha
	case tenhou.DirToimen:
		return mjlog.DirToimen
	case tenhou.DirKamicha:
		return mjlog.DirKamicha
	}
	return mjlog.DirSelf
}

func terminalActions(r *tenhou.Round, l *tenhou.Log, doraHais []mjlog.Hai, alloc *haiAlloc, machi mjlog.Hai, final bool) ([]mjlog.Action, error) {
	var owari *mjlog.Owari
	if final {
		owari = &mjlog.Owari{Points: unscale100(l.FinalPoints), Results: l.FinalResults}
	}

	switch res := r.Result.(type) {
	case tenhou.AgariResult:
		if len(res.Wins) == 0 {
			return nil, fmt.Errorf("%w: empty win list", ErrRoundShape)
		}
		var out []mjlog.Action
		for i := range res.Wins {
			a, err := agariAction(&res.Wins[i], r, doraHais, machi)
			if err != nil {
				return nil, err
			}
			if i == 0 && len(r.Settings.UraDora) > 0 {
				ura := make([]mjlog.Hai, len(r.Settings.UraDora))
				for j, t := range r.Settings.UraDora {
					ura[j] = alloc.take(t)
				}
				a.DoraHaiUra = ura
			}
			if i == len(res.Wins)-1 {
				a.Owari = owari
			}
			out = append(out, a)
		}
		return out, nil
	case tenhou.RyuukyokuResult:
		ry := ryuukyokuAction(res, r)
		ry.Owari = owari
		return []mjlog.Action{ry}, nil
	}
	return nil, fmt.Errorf("%w: no terminal result", ErrRoundShape)
}

// agariAction rebuilds a win record. The winning tile is the last tile the
// engine moved (the final draw on a tsumo, the final discard on a ron); the
// concealed hand and melds are not recorded per winner and stay empty.
func agariAction(w *tenhou.Agari, r *tenhou.Round, doraHais []mjlog.Hai, machi mjlog.Hai) (*mjlog.Agari, error) {
	a := &mjlog.Agari{
		Honba:     r.Settings.Honba,
		Kyoutaku:  r.Settings.Kyoutaku,
		Who:       w.Who,
		FromWho:   w.FromWho,
		Machi:     machi,
		PaoWho:    -1,
		BeforeTen: unscale100(r.Settings.Points),
		DeltaTen:  unscale100(w.DeltaPoints),
		DoraHai:   doraHais,
		NetScore:  netScore(w.RankedScore.Payment),
	}
	if w.PaoWho != w.Who {
		a.PaoWho = w.PaoWho
	}

	dealer := w.Who == r.Settings.Kyoku%4
	tsumo := w.Who == w.FromWho

	yakuman := false
	for _, p := range w.Yaku {
		if p.Level.Yakuman {
			yakuman = true
			break
		}
	}
	if yakuman {
		for _, p := range w.Yaku {
			if !p.Level.Yakuman {
				return nil, fmt.Errorf("%w: mixed yakuman and han yaku", ErrRoundShape)
			}
			a.Yakuman = append(a.Yakuman, mjlog.Yaku(p.Yaku))
		}
		a.Limit = mjlog.LimitYakuman
		if tenhou.ScoreYakuman(len(a.Yakuman), dealer, tsumo) != w.RankedScore {
			return nil, fmt.Errorf("%w: yakuman score %s", ErrRoundShape, w.RankedScore)
		}
		return a, nil
	}

	han := 0
	for _, p := range w.Yaku {
		a.Yaku = append(a.Yaku, mjlog.YakuHan{Yaku: mjlog.Yaku(p.Yaku), Han: p.Level.Han})
		han += p.Level.Han
	}
	fu, ok := recoverFu(w.RankedScore, han, dealer, tsumo)
	if !ok {
		return nil, fmt.Errorf("%w: score %s does not match %d han", ErrRoundShape, w.RankedScore, han)
	}
	a.Fu = fu
	// The winning-tier identifiers line up between the two formats.
	a.Limit = mjlog.Limit(w.RankedScore.Rank.Tier)
	return a, nil
}

// recoverFu finds a fu value reproducing the recorded score. Below a named
// tier the fu is part of the score text; at mangan and above it is not, and
// the smallest fu clearing the tier threshold serves.
func recoverFu(score tenhou.RankedScore, han int, dealer, tsumo bool) (int, bool) {
	if score.Rank.Tier == tenhou.TierNormal {
		return score.Rank.Fu, tenhou.Score(score.Rank.Fu, han, dealer, tsumo) == score
	}
	for fu := 20; fu <= 110; fu += 5 {
		if tenhou.Score(fu, han, dealer, tsumo) == score {
			return fu, true
		}
	}
	return 0, false
}

func netScore(p tenhou.Payment) int {
	switch v := p.(type) {
	case tenhou.Ron:
		return v.Points
	case tenhou.OyaTsumo:
		return v.Points * 3
	case tenhou.KoTsumo:
		return v.Ko*2 + v.Oya
	}
	return 0
}

func ryuukyokuAction(res tenhou.RyuukyokuResult, r *tenhou.Round) *mjlog.Ryuukyoku {
	ry := &mjlog.Ryuukyoku{
		Honba:     r.Settings.Honba,
		Kyoutaku:  r.Settings.Kyoutaku,
		BeforeTen: unscale100(r.Settings.Points),
		DeltaTen:  make([]int, len(r.Settings.Points)),
	}
	if len(res.DeltaPoints) > 0 {
		ry.DeltaTen = unscale100(res.DeltaPoints)
	}

	switch res.Reason {
	case tenhou.DrawTenpaiEverybody:
		ry.Tenpai = [4]bool{true, true, true, true}
	case tenhou.DrawTenpaiNobody:
		// All closed hands stay hidden.
	case tenhou.DrawExhaustive:
		// The plain word means a mix of open and hidden closing hands; which
		// seats were waiting is not recorded, so one is chosen.
		ry.Tenpai = [4]bool{true, false, false, false}
	default:
		// The special-draw identifiers line up between the two formats.
		ry.Reason = mjlog.DrawReason(res.Reason)
		ry.HasReason = true
	}
	return ry
}

// unscale100 converts points to 100-point units.
func unscale100(xs []int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = x / 100
	}
	return out
}
