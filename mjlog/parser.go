package mjlog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrAttributeNotFound marks a required tag attribute that is absent.
	ErrAttributeNotFound = errors.New("mjlog: attribute not found")

	// ErrMalformedAttribute marks an attribute whose value does not parse.
	ErrMalformedAttribute = errors.New("mjlog: malformed attribute")

	// ErrUnexpectedTag marks a tag the format does not define, or document
	// structure (nested elements, text content) the format forbids.
	ErrUnexpectedTag = errors.New("mjlog: unexpected tag")

	// ErrUnexpectedEOF marks a document that ends inside an open log element.
	ErrUnexpectedEOF = errors.New("mjlog: unexpected end of document")
)

// element is one empty tag with attribute lookup.
type element struct {
	name  string
	attrs []xml.Attr
}

func (e *element) lookup(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *element) str(name string) (string, error) {
	v, ok := e.lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s/@%s", ErrAttributeNotFound, e.name, name)
	}
	return v, nil
}

func (e *element) int(name string) (int, error) {
	s, err := e.str(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s/@%s=%q", ErrMalformedAttribute, e.name, name, s)
	}
	return v, nil
}

func (e *element) uint16(name string) (uint16, error) {
	s, err := e.str(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %s/@%s=%q", ErrMalformedAttribute, e.name, name, s)
	}
	return uint16(v), nil
}

// splitCSV splits a comma-separated attribute. An empty value is an empty
// list, which is how a three-player log writes its vacant fourth hand.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (e *element) csvInts(name string) ([]int, error) {
	s, err := e.str(name)
	if err != nil {
		return nil, err
	}
	return e.parseInts(name, s)
}

func (e *element) parseInts(name, s string) ([]int, error) {
	parts := splitCSV(s)
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/@%s=%q", ErrMalformedAttribute, e.name, name, s)
		}
		out[i] = v
	}
	return out, nil
}

func (e *element) csvFloats(name string) ([]float64, error) {
	s, err := e.str(name)
	if err != nil {
		return nil, err
	}
	parts := splitCSV(s)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/@%s=%q", ErrMalformedAttribute, e.name, name, s)
		}
		out[i] = v
	}
	return out, nil
}

func (e *element) csvHais(name string) ([]Hai, error) {
	ints, err := e.csvInts(name)
	if err != nil {
		return nil, err
	}
	return e.haisFromInts(name, ints)
}

func (e *element) haisFromInts(name string, ints []int) ([]Hai, error) {
	out := make([]Hai, len(ints))
	for i, v := range ints {
		if v < 0 || !Hai(v).Valid() {
			return nil, fmt.Errorf("%w: %s/@%s tile ordinal %d", ErrMalformedAttribute, e.name, name, v)
		}
		out[i] = Hai(v)
	}
	return out, nil
}

func (e *element) hai(name string) (Hai, error) {
	v, err := e.int(name)
	if err != nil {
		return 0, err
	}
	if v < 0 || !Hai(v).Valid() {
		return 0, fmt.Errorf("%w: %s/@%s tile ordinal %d", ErrMalformedAttribute, e.name, name, v)
	}
	return Hai(v), nil
}

// partitionEvenOdd splits interleaved pairs: elements at even offsets go to
// the first slice, odd offsets to the second. The sc attribute stores scores
// and deltas this way.
func partitionEvenOdd(v []int) (even, odd []int) {
	for i, x := range v {
		if i%2 == 0 {
			even = append(even, x)
		} else {
			odd = append(odd, x)
		}
	}
	return even, odd
}

func decodePercent(s string) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: name %q: %v", ErrMalformedAttribute, s, err)
	}
	return out, nil
}

func parseShuffle(e *element) (Action, error) {
	seed, err := e.str("seed")
	if err != nil {
		return nil, err
	}
	return Shuffle{Seed: seed}, nil
}

func parseGo(e *element) (Action, error) {
	t, err := e.int("type")
	if err != nil {
		return nil, err
	}
	lobby, err := e.int("lobby")
	if err != nil {
		return nil, err
	}
	return Go{
		Settings: GameSettings{
			VsHuman:  t&0x01 != 0,
			NoRed:    t&0x02 != 0,
			NoKuitan: t&0x04 != 0,
			Hanchan:  t&0x08 != 0,
			Sanma:    t&0x10 != 0,
			Soku:     t&0x40 != 0,
			Room:     Room((t&0x20)>>4 | (t&0x80)>>7),
		},
		Lobby: lobby,
	}, nil
}

// parseUN handles both UN shapes: the opening roster carries all four name
// attributes (a vacant three-player seat is an empty string, still present),
// a reconnection carries exactly one.
func parseUN(e *element) (Action, error) {
	var names []string
	var present []int
	for i := 0; i < 4; i++ {
		raw, ok := e.lookup(fmt.Sprintf("n%d", i))
		if !ok {
			continue
		}
		name, err := decodePercent(raw)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		present = append(present, i)
	}

	switch len(present) {
	case 4:
		danInts, err := e.csvInts("dan")
		if err != nil {
			return nil, err
		}
		dans := make([]Rank, len(danInts))
		for i, d := range danInts {
			if d < 0 || d >= rankCount {
				return nil, fmt.Errorf("%w: UN/@dan rank %d", ErrMalformedAttribute, d)
			}
			dans[i] = Rank(d)
		}
		rates, err := e.csvFloats("rate")
		if err != nil {
			return nil, err
		}
		sxRaw, err := e.str("sx")
		if err != nil {
			return nil, err
		}
		return Roster{Names: names, Dans: dans, Rates: rates, Sx: splitCSV(sxRaw)}, nil
	case 1:
		return Reconnect{Who: present[0], Name: names[0]}, nil
	default:
		return nil, fmt.Errorf("%w: UN carries %d names, want 1 or 4", ErrMalformedAttribute, len(present))
	}
}

func parseBye(e *element) (Action, error) {
	who, err := e.int("who")
	if err != nil {
		return nil, err
	}
	return Bye{Who: who}, nil
}

func parseTaikyoku(e *element) (Action, error) {
	oya, err := e.int("oya")
	if err != nil {
		return nil, err
	}
	return Taikyoku{Oya: oya}, nil
}

func parseInit(e *element) (Action, error) {
	seed, err := e.csvInts("seed")
	if err != nil {
		return nil, err
	}
	if len(seed) != 6 {
		return nil, fmt.Errorf("%w: INIT/@seed has %d fields, want 6", ErrMalformedAttribute, len(seed))
	}
	dora, err := e.haisFromInts("seed", seed[5:6])
	if err != nil {
		return nil, err
	}
	ten, err := e.csvInts("ten")
	if err != nil {
		return nil, err
	}
	oya, err := e.int("oya")
	if err != nil {
		return nil, err
	}

	var hands [4][]Hai
	for i := 0; i < 4; i++ {
		h, err := e.csvHais(fmt.Sprintf("hai%d", i))
		if err != nil {
			return nil, err
		}
		hands[i] = h
	}

	return Init{
		Seed: InitSeed{
			Kyoku:      seed[0],
			Honba:      seed[1],
			Kyoutaku:   seed[2],
			Dice:       [2]int{seed[3], seed[4]},
			DoraHyouji: dora[0],
		},
		Ten: ten,
		Oya: oya,
		Hai: hands,
	}, nil
}

func parseReach(e *element) (Action, error) {
	step, err := e.int("step")
	if err != nil {
		return nil, err
	}
	who, err := e.int("who")
	if err != nil {
		return nil, err
	}
	switch step {
	case 1:
		return ReachDeclared{Who: who}, nil
	case 2:
		ten, err := e.csvInts("ten")
		if err != nil {
			return nil, err
		}
		return ReachConfirmed{Who: who, Ten: ten}, nil
	default:
		return nil, fmt.Errorf("%w: REACH/@step=%d", ErrMalformedAttribute, step)
	}
}

func parseCall(e *element) (Action, error) {
	who, err := e.int("who")
	if err != nil {
		return nil, err
	}
	m, err := e.uint16("m")
	if err != nil {
		return nil, err
	}
	meld, err := DecodeMeld(m)
	if err != nil {
		return nil, err
	}
	return Call{Who: who, Meld: meld}, nil
}

func parseDora(e *element) (Action, error) {
	hai, err := e.hai("hai")
	if err != nil {
		return nil, err
	}
	return Dora{Hai: hai}, nil
}

func parseOwari(e *element) (*Owari, error) {
	raw, ok := e.lookup("owari")
	if !ok {
		return nil, nil
	}
	parts := splitCSV(raw)
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("%w: %s/@owari=%q", ErrMalformedAttribute, e.name, raw)
	}
	var out Owari
	for i := 0; i < len(parts); i += 2 {
		p, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s/@owari=%q", ErrMalformedAttribute, e.name, raw)
		}
		r, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/@owari=%q", ErrMalformedAttribute, e.name, raw)
		}
		out.Points = append(out.Points, p)
		out.Results = append(out.Results, r)
	}
	return &out, nil
}

// yakuCount is the size of the shared yaku identifier table (tsumo through
// red dora).
const yakuCount = 55

func parseAgari(e *element) (Action, error) {
	ba, err := e.csvInts("ba")
	if err != nil {
		return nil, err
	}
	if len(ba) != 2 {
		return nil, fmt.Errorf("%w: AGARI/@ba has %d fields, want 2", ErrMalformedAttribute, len(ba))
	}
	hai, err := e.csvHais("hai")
	if err != nil {
		return nil, err
	}

	var melds []Meld
	if raw, ok := e.lookup("m"); ok {
		for _, p := range splitCSV(raw) {
			mv, err := strconv.ParseUint(p, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("%w: AGARI/@m=%q", ErrMalformedAttribute, raw)
			}
			meld, err := DecodeMeld(uint16(mv))
			if err != nil {
				return nil, err
			}
			melds = append(melds, meld)
		}
	}

	machi, err := e.hai("machi")
	if err != nil {
		return nil, err
	}
	ten, err := e.csvInts("ten")
	if err != nil {
		return nil, err
	}
	if len(ten) != 3 {
		return nil, fmt.Errorf("%w: AGARI/@ten has %d fields, want 3", ErrMalformedAttribute, len(ten))
	}
	if ten[2] < 0 || ten[2] > int(LimitYakuman) {
		return nil, fmt.Errorf("%w: AGARI/@ten limit %d", ErrMalformedAttribute, ten[2])
	}

	var yaku []YakuHan
	if raw, ok := e.lookup("yaku"); ok {
		ints, err := e.parseInts("yaku", raw)
		if err != nil {
			return nil, err
		}
		if len(ints)%2 != 0 {
			return nil, fmt.Errorf("%w: AGARI/@yaku=%q", ErrMalformedAttribute, raw)
		}
		for i := 0; i < len(ints); i += 2 {
			if ints[i] < 0 || ints[i] >= yakuCount {
				return nil, fmt.Errorf("%w: AGARI/@yaku id %d", ErrMalformedAttribute, ints[i])
			}
			yaku = append(yaku, YakuHan{Yaku: Yaku(ints[i]), Han: ints[i+1]})
		}
	}

	var yakuman []Yaku
	if raw, ok := e.lookup("yakuman"); ok {
		ints, err := e.parseInts("yakuman", raw)
		if err != nil {
			return nil, err
		}
		for _, v := range ints {
			if v < 0 || v >= yakuCount {
				return nil, fmt.Errorf("%w: AGARI/@yakuman id %d", ErrMalformedAttribute, v)
			}
			yakuman = append(yakuman, Yaku(v))
		}
	}

	doraHai, err := e.csvHais("doraHai")
	if err != nil {
		return nil, err
	}
	var doraHaiUra []Hai
	if _, ok := e.lookup("doraHaiUra"); ok {
		doraHaiUra, err = e.csvHais("doraHaiUra")
		if err != nil {
			return nil, err
		}
	}

	who, err := e.int("who")
	if err != nil {
		return nil, err
	}
	fromWho, err := e.int("fromWho")
	if err != nil {
		return nil, err
	}
	paoWho := -1
	if _, ok := e.lookup("paoWho"); ok {
		paoWho, err = e.int("paoWho")
		if err != nil {
			return nil, err
		}
	}

	sc, err := e.csvInts("sc")
	if err != nil {
		return nil, err
	}
	before, delta := partitionEvenOdd(sc)

	owari, err := parseOwari(e)
	if err != nil {
		return nil, err
	}

	return &Agari{
		Honba:      ba[0],
		Kyoutaku:   ba[1],
		Hai:        hai,
		Melds:      melds,
		Machi:      machi,
		Fu:         ten[0],
		NetScore:   ten[1],
		Limit:      Limit(ten[2]),
		Yaku:       yaku,
		Yakuman:    yakuman,
		DoraHai:    doraHai,
		DoraHaiUra: doraHaiUra,
		Who:        who,
		FromWho:    fromWho,
		PaoWho:     paoWho,
		BeforeTen:  before,
		DeltaTen:   delta,
		Owari:      owari,
	}, nil
}

var drawReasons = map[string]DrawReason{
	"yao9":   DrawKyuushuuKyuuhai,
	"reach4": DrawSuuchaRiichi,
	"ron3":   DrawSanchaHoura,
	"kan4":   DrawSuukanSanra,
	"kaze4":  DrawSuufuuRenda,
	"nm":     DrawNagashiMangan,
}

func parseRyuukyoku(e *element) (Action, error) {
	ba, err := e.csvInts("ba")
	if err != nil {
		return nil, err
	}
	if len(ba) != 2 {
		return nil, fmt.Errorf("%w: RYUUKYOKU/@ba has %d fields, want 2", ErrMalformedAttribute, len(ba))
	}

	sc, err := e.csvInts("sc")
	if err != nil {
		return nil, err
	}
	before, delta := partitionEvenOdd(sc)

	var tenpai [4]bool
	var hands [4][]Hai
	for i := 0; i < 4; i++ {
		if _, ok := e.lookup(fmt.Sprintf("hai%d", i)); !ok {
			continue
		}
		h, err := e.csvHais(fmt.Sprintf("hai%d", i))
		if err != nil {
			return nil, err
		}
		tenpai[i] = true
		hands[i] = h
	}

	reason := DrawPlain
	hasReason := false
	if s, ok := e.lookup("type"); ok {
		reason, ok = drawReasons[s]
		if !ok {
			return nil, fmt.Errorf("%w: RYUUKYOKU/@type=%q", ErrMalformedAttribute, s)
		}
		hasReason = true
	}

	owari, err := parseOwari(e)
	if err != nil {
		return nil, err
	}

	return &Ryuukyoku{
		Honba:     ba[0],
		Kyoutaku:  ba[1],
		BeforeTen: before,
		DeltaTen:  delta,
		Tenpai:    tenpai,
		Hands:     hands,
		Reason:    reason,
		HasReason: hasReason,
		Owari:     owari,
	}, nil
}

// parseTileTag handles the per-seat draw and discard tags: T/U/V/W carry a
// draw for seats 0..3, D/E/F/G a discard. The ordinal is part of the tag
// name itself.
func parseTileTag(name string) (Action, bool) {
	if name == "" {
		return nil, false
	}
	seat := strings.IndexByte("TUVWDEFG", name[0])
	if seat < 0 {
		return nil, false
	}
	v, err := strconv.Atoi(name[1:])
	if err != nil || v < 0 || !Hai(v).Valid() {
		return nil, false
	}
	if seat < 4 {
		return Draw{Who: seat, Hai: Hai(v)}, true
	}
	return Discard{Who: seat - 4, Hai: Hai(v)}, true
}

func parseAction(e *element) (Action, error) {
	switch e.name {
	case "SHUFFLE":
		return parseShuffle(e)
	case "GO":
		return parseGo(e)
	case "UN":
		return parseUN(e)
	case "BYE":
		return parseBye(e)
	case "TAIKYOKU":
		return parseTaikyoku(e)
	case "INIT":
		return parseInit(e)
	case "REACH":
		return parseReach(e)
	case "N":
		return parseCall(e)
	case "DORA":
		return parseDora(e)
	case "AGARI":
		return parseAgari(e)
	case "RYUUKYOKU":
		return parseRyuukyoku(e)
	default:
		if a, ok := parseTileTag(e.name); ok {
			return a, nil
		}
		return nil, fmt.Errorf("%w: <%s>", ErrUnexpectedTag, e.name)
	}
}

// Parse reads mjlog documents from r. Each document is a single mjloggm
// element whose children are all empty action tags; several documents may be
// concatenated in one stream.
func Parse(r io.Reader) ([]Log, error) {
	dec := xml.NewDecoder(r)

	var logs []Log
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return logs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("mjlog: %w", err)
		}

		switch t := tok.(type) {
		case xml.ProcInst, xml.Directive, xml.Comment:
			continue
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: text outside log element", ErrUnexpectedTag)
			}
		case xml.StartElement:
			if t.Name.Local != "mjloggm" {
				return nil, fmt.Errorf("%w: <%s>", ErrUnexpectedTag, t.Name.Local)
			}
			log, err := parseDocument(dec, t)
			if err != nil {
				return nil, err
			}
			logs = append(logs, log)
		case xml.EndElement:
			return nil, fmt.Errorf("%w: </%s>", ErrUnexpectedTag, t.Name.Local)
		}
	}
}

// ParseString parses mjlog documents held in memory.
func ParseString(s string) ([]Log, error) {
	return Parse(strings.NewReader(s))
}

// parseDocument consumes the body of one mjloggm element. The format writes
// every action as an empty tag, so each child start must be immediately
// closed.
func parseDocument(dec *xml.Decoder, root xml.StartElement) (Log, error) {
	e := &element{name: root.Name.Local, attrs: root.Attr}
	ver, err := e.str("ver")
	if err != nil {
		return Log{}, err
	}

	var actions []Action
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return Log{}, ErrUnexpectedEOF
		}
		if err != nil {
			return Log{}, fmt.Errorf("mjlog: %w", err)
		}

		switch t := tok.(type) {
		case xml.ProcInst, xml.Directive, xml.Comment:
			continue
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return Log{}, fmt.Errorf("%w: text inside log element", ErrUnexpectedTag)
			}
		case xml.StartElement:
			action, err := parseAction(&element{name: t.Name.Local, attrs: t.Attr})
			if err != nil {
				return Log{}, err
			}
			if err := expectSelfClose(dec, t.Name.Local); err != nil {
				return Log{}, err
			}
			actions = append(actions, action)
		case xml.EndElement:
			if t.Name.Local != "mjloggm" {
				return Log{}, fmt.Errorf("%w: </%s>", ErrUnexpectedTag, t.Name.Local)
			}
			return Log{Ver: ver, Actions: actions}, nil
		}
	}
}

func expectSelfClose(dec *xml.Decoder, name string) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return ErrUnexpectedEOF
		}
		if err != nil {
			return fmt.Errorf("mjlog: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return fmt.Errorf("%w: text inside <%s>", ErrUnexpectedTag, name)
			}
		case xml.EndElement:
			return nil
		default:
			return fmt.Errorf("%w: content inside <%s>", ErrUnexpectedTag, name)
		}
	}
}
