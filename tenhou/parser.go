package tenhou

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingField marks a required document field that is absent.
	ErrMissingField = errors.New("tenhou: missing field")

	// ErrTypeMismatch marks a field holding the wrong JSON type.
	ErrTypeMismatch = errors.New("tenhou: type mismatch")

	// ErrArrayLength marks an array of the wrong shape.
	ErrArrayLength = errors.New("tenhou: invalid array length")

	// ErrInvalidReason marks an unknown draw-reason word.
	ErrInvalidReason = errors.New("tenhou: invalid draw reason")

	// ErrInvalidYaku marks yaku text that is not "name(level)".
	ErrInvalidYaku = errors.New("tenhou: invalid yaku text")

	// ErrInvalidAgari marks a win record with too few fields.
	ErrInvalidAgari = errors.New("tenhou: invalid win record")
)

// ParseLog decodes a whole match document. Errors carry the path of the
// offending field.
func ParseLog(data []byte) (*Log, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("tenhou: %w", err)
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not an object", ErrTypeMismatch)
	}

	var (
		l   Log
		err error
	)
	if l.Ver, err = fieldFloat(obj, "ver"); err != nil {
		return nil, err
	}
	if l.Ref, err = fieldString(obj, "ref"); err != nil {
		return nil, err
	}
	if l.Rounds, err = fieldRounds(obj, "log"); err != nil {
		return nil, err
	}
	if l.Connections, err = fieldConnections(obj, "connection"); err != nil {
		return nil, err
	}
	if l.RatingC, err = fieldString(obj, "ratingc"); err != nil {
		return nil, err
	}
	if l.Rule, err = fieldRule(obj, "rule"); err != nil {
		return nil, err
	}
	if l.Lobby, err = fieldInt(obj, "lobby"); err != nil {
		return nil, err
	}
	if l.Dan, err = fieldStrings(obj, "dan"); err != nil {
		return nil, err
	}
	if l.Rate, err = fieldFloats(obj, "rate"); err != nil {
		return nil, err
	}
	if l.Sx, err = fieldStrings(obj, "sx"); err != nil {
		return nil, err
	}
	if l.FinalPoints, l.FinalResults, err = fieldStanding(obj, "sc"); err != nil {
		return nil, err
	}
	if l.Names, err = fieldStrings(obj, "name"); err != nil {
		return nil, err
	}
	return &l, nil
}

func context(err error, path string) error {
	return fmt.Errorf("%s: %w", path, err)
}

func indexContext(err error, i int) error {
	return context(err, fmt.Sprintf("[%d]", i))
}

func asInt(v any) (int, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: not a number", ErrTypeMismatch)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, n.String())
	}
	return int(i), nil
}

func asFloat(v any) (float64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: not a number", ErrTypeMismatch)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, n.String())
	}
	return f, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: not a string", ErrTypeMismatch)
	}
	return s, nil
}

func asArray(v any) ([]any, error) {
	a, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: not an array", ErrTypeMismatch)
	}
	return a, nil
}

func asInts(v any) ([]int, error) {
	a, err := asArray(v)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(a))
	for i, x := range a {
		if out[i], err = asInt(x); err != nil {
			return nil, indexContext(err, i)
		}
	}
	return out, nil
}

func asTile(v any) (Tile, error) {
	n, err := asInt(v)
	if err != nil {
		return 0, err
	}
	return NewTile(n)
}

func asTiles(v any) ([]Tile, error) {
	a, err := asArray(v)
	if err != nil {
		return nil, err
	}
	out := make([]Tile, len(a))
	for i, x := range a {
		if out[i], err = asTile(x); err != nil {
			return nil, indexContext(err, i)
		}
	}
	return out, nil
}

func fieldValue(obj map[string]any, key string) (any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	return v, nil
}

func fieldInt(obj map[string]any, key string) (int, error) {
	v, err := fieldValue(obj, key)
	if err != nil {
		return 0, err
	}
	n, err := asInt(v)
	if err != nil {
		return 0, context(err, key)
	}
	return n, nil
}

func fieldFloat(obj map[string]any, key string) (float64, error) {
	v, err := fieldValue(obj, key)
	if err != nil {
		return 0, err
	}
	f, err := asFloat(v)
	if err != nil {
		return 0, context(err, key)
	}
	return f, nil
}

func fieldString(obj map[string]any, key string) (string, error) {
	v, err := fieldValue(obj, key)
	if err != nil {
		return "", err
	}
	s, err := asString(v)
	if err != nil {
		return "", context(err, key)
	}
	return s, nil
}

func fieldStrings(obj map[string]any, key string) ([]string, error) {
	v, err := fieldValue(obj, key)
	if err != nil {
		return nil, err
	}
	a, err := asArray(v)
	if err != nil {
		return nil, context(err, key)
	}
	out := make([]string, len(a))
	for i, x := range a {
		if out[i], err = asString(x); err != nil {
			return nil, context(indexContext(err, i), key)
		}
	}
	return out, nil
}

func fieldFloats(obj map[string]any, key string) ([]float64, error) {
	v, err := fieldValue(obj, key)
	if err != nil {
		return nil, err
	}
	a, err := asArray(v)
	if err != nil {
		return nil, context(err, key)
	}
	out := make([]float64, len(a))
	for i, x := range a {
		if out[i], err = asFloat(x); err != nil {
			return nil, context(indexContext(err, i), key)
		}
	}
	return out, nil
}

// fieldStanding splits the final standing array: points at even offsets,
// placement bonuses at odd ones.
func fieldStanding(obj map[string]any, key string) ([]int, []float64, error) {
	v, err := fieldValue(obj, key)
	if err != nil {
		return nil, nil, err
	}
	a, err := asArray(v)
	if err != nil {
		return nil, nil, context(err, key)
	}

	var points []int
	var results []float64
	for i, x := range a {
		if i%2 == 0 {
			p, err := asInt(x)
			if err != nil {
				return nil, nil, context(indexContext(err, i), key)
			}
			points = append(points, p)
		} else {
			r, err := asFloat(x)
			if err != nil {
				return nil, nil, context(indexContext(err, i), key)
			}
			results = append(results, r)
		}
	}
	return points, results, nil
}

func fieldRule(obj map[string]any, key string) (Rule, error) {
	v, err := fieldValue(obj, key)
	if err != nil {
		return Rule{}, err
	}
	ro, ok := v.(map[string]any)
	if !ok {
		return Rule{}, context(fmt.Errorf("%w: not an object", ErrTypeMismatch), key)
	}

	var rule Rule
	if rule.Disp, err = fieldString(ro, "disp"); err != nil {
		return Rule{}, context(err, key)
	}
	for _, aka := range []struct {
		key  string
		dest *bool
	}{{"aka51", &rule.Aka51}, {"aka52", &rule.Aka52}, {"aka53", &rule.Aka53}} {
		n, err := fieldInt(ro, aka.key)
		if err != nil {
			return Rule{}, context(err, key)
		}
		*aka.dest = n != 0
	}
	return rule, nil
}

func fieldConnections(obj map[string]any, key string) ([]Connection, error) {
	v, ok := obj[key]
	if !ok {
		return nil, nil
	}
	a, err := asArray(v)
	if err != nil {
		return nil, context(err, key)
	}

	out := make([]Connection, len(a))
	for i, x := range a {
		co, ok := x.(map[string]any)
		if !ok {
			return nil, context(indexContext(fmt.Errorf("%w: not an object", ErrTypeMismatch), i), key)
		}
		var c Connection
		if c.What, err = fieldInt(co, "what"); err != nil {
			return nil, context(indexContext(err, i), key)
		}
		if c.Log, err = fieldInt(co, "log"); err != nil {
			return nil, context(indexContext(err, i), key)
		}
		if c.Who, err = fieldInt(co, "who"); err != nil {
			return nil, context(indexContext(err, i), key)
		}
		if c.Step, err = fieldInt(co, "step"); err != nil {
			return nil, context(indexContext(err, i), key)
		}
		out[i] = c
	}
	return out, nil
}

func fieldRounds(obj map[string]any, key string) ([]Round, error) {
	v, err := fieldValue(obj, key)
	if err != nil {
		return nil, err
	}
	a, err := asArray(v)
	if err != nil {
		return nil, context(err, key)
	}
	out := make([]Round, len(a))
	for i, x := range a {
		r, err := parseRound(x)
		if err != nil {
			return nil, context(indexContext(err, i), key)
		}
		out[i] = r
	}
	return out, nil
}

// parseRound decodes one round array: header (4 elements), four seats of
// three streams each, and the result.
func parseRound(v any) (Round, error) {
	a, err := asArray(v)
	if err != nil {
		return Round{}, err
	}
	if len(a) != 17 {
		return Round{}, fmt.Errorf("%w: round has %d elements, want 17", ErrArrayLength, len(a))
	}

	var r Round
	if r.Settings, err = parseRoundSettings(a[:4]); err != nil {
		return Round{}, err
	}
	for seat := 0; seat < 4; seat++ {
		base := 4 + seat*3
		if r.Players[seat].Hand, err = asTiles(a[base]); err != nil {
			return Round{}, indexContext(err, base)
		}
		if r.Players[seat].Incoming, err = parseIncomingTiles(a[base+1]); err != nil {
			return Round{}, indexContext(err, base+1)
		}
		if r.Players[seat].Outgoing, err = parseOutgoingTiles(a[base+2]); err != nil {
			return Round{}, indexContext(err, base+2)
		}
	}
	if r.Result, err = parseRoundResult(a[16]); err != nil {
		return Round{}, indexContext(err, 16)
	}
	return r, nil
}

func parseRoundSettings(a []any) (RoundSettings, error) {
	header, err := asInts(a[0])
	if err != nil {
		return RoundSettings{}, indexContext(err, 0)
	}
	if len(header) != 3 {
		return RoundSettings{}, fmt.Errorf("%w: round header has %d elements, want 3", ErrArrayLength, len(header))
	}

	var s RoundSettings
	s.Kyoku, s.Honba, s.Kyoutaku = header[0], header[1], header[2]
	if s.Points, err = asInts(a[1]); err != nil {
		return RoundSettings{}, indexContext(err, 1)
	}
	if s.Dora, err = asTiles(a[2]); err != nil {
		return RoundSettings{}, indexContext(err, 2)
	}
	if s.UraDora, err = asTiles(a[3]); err != nil {
		return RoundSettings{}, indexContext(err, 3)
	}
	return s, nil
}

func parseIncomingTiles(v any) ([]IncomingTile, error) {
	a, err := asArray(v)
	if err != nil {
		return nil, err
	}
	out := make([]IncomingTile, len(a))
	for i, x := range a {
		switch t := x.(type) {
		case json.Number:
			tile, err := asTile(t)
			if err != nil {
				return nil, indexContext(err, i)
			}
			out[i] = Tsumo{Tile: tile}
		case string:
			in, err := parseIncomingString(t)
			if err != nil {
				return nil, indexContext(err, i)
			}
			out[i] = in
		default:
			return nil, indexContext(fmt.Errorf("%w: not a tile or call", ErrTypeMismatch), i)
		}
	}
	return out, nil
}

func parseOutgoingTiles(v any) ([]OutgoingTile, error) {
	a, err := asArray(v)
	if err != nil {
		return nil, err
	}
	out := make([]OutgoingTile, len(a))
	for i, x := range a {
		switch t := x.(type) {
		case json.Number:
			n, err := asInt(t)
			if err != nil {
				return nil, indexContext(err, i)
			}
			switch n {
			case 60:
				out[i] = Tsumogiri{}
			case 0:
				out[i] = Dummy{}
			default:
				tile, err := NewTile(n)
				if err != nil {
					return nil, indexContext(err, i)
				}
				out[i] = Discard{Tile: tile}
			}
		case string:
			o, err := parseOutgoingString(t)
			if err != nil {
				return nil, indexContext(err, i)
			}
			out[i] = o
		default:
			return nil, indexContext(fmt.Errorf("%w: not a tile or call", ErrTypeMismatch), i)
		}
	}
	return out, nil
}

// parseRoundResult decodes the closing array: the win marker followed by
// delta/detail pairs per winner, or a draw word with optional deltas.
func parseRoundResult(v any) (RoundResult, error) {
	a, err := asArray(v)
	if err != nil {
		return nil, err
	}
	if len(a) == 0 {
		return nil, fmt.Errorf("%w: empty result", ErrArrayLength)
	}

	head, err := asString(a[0])
	if err != nil {
		return nil, indexContext(err, 0)
	}

	if head == "和了" {
		rest := a[1:]
		if len(rest)%2 != 0 {
			return nil, fmt.Errorf("%w: win result has %d detail elements", ErrArrayLength, len(rest))
		}
		var wins []Agari
		for i := 0; i < len(rest); i += 2 {
			w, err := parseAgari(rest[i], rest[i+1])
			if err != nil {
				return nil, indexContext(err, i+1)
			}
			wins = append(wins, w)
		}
		return AgariResult{Wins: wins}, nil
	}

	reason, ok := ParseDrawReason(head)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReason, head)
	}
	var deltas []int
	if len(a) >= 2 {
		if deltas, err = asInts(a[1]); err != nil {
			return nil, indexContext(err, 1)
		}
	}
	return RyuukyokuResult{Reason: reason, DeltaPoints: deltas}, nil
}

func parseAgari(deltaV, detailV any) (Agari, error) {
	deltas, err := asInts(deltaV)
	if err != nil {
		return Agari{}, err
	}
	detail, err := asArray(detailV)
	if err != nil {
		return Agari{}, err
	}
	if len(detail) <= 4 {
		return Agari{}, fmt.Errorf("%w: %d detail fields", ErrInvalidAgari, len(detail))
	}

	var a Agari
	a.DeltaPoints = deltas
	if a.Who, err = asInt(detail[0]); err != nil {
		return Agari{}, indexContext(err, 0)
	}
	if a.FromWho, err = asInt(detail[1]); err != nil {
		return Agari{}, indexContext(err, 1)
	}
	if a.PaoWho, err = asInt(detail[2]); err != nil {
		return Agari{}, indexContext(err, 2)
	}

	scoreText, err := asString(detail[3])
	if err != nil {
		return Agari{}, indexContext(err, 3)
	}
	if a.RankedScore, err = ParseRankedScore(scoreText); err != nil {
		return Agari{}, indexContext(err, 3)
	}

	for i, x := range detail[4:] {
		text, err := asString(x)
		if err != nil {
			return Agari{}, indexContext(err, i+4)
		}
		pair, err := ParseYakuPair(text)
		if err != nil {
			return Agari{}, indexContext(err, i+4)
		}
		a.Yaku = append(a.Yaku, pair)
	}
	return a, nil
}

// ParseYakuPair parses "name(level)" yaku text, e.g. "平和(1飜)" or
// "四暗刻(役満)".
func ParseYakuPair(s string) (YakuPair, error) {
	open, end := -1, -1
	for i, c := range s {
		if c == '(' && open < 0 {
			open = i
		}
		if c == ')' {
			end = i
			break
		}
	}
	if open < 0 || end < open {
		return YakuPair{}, fmt.Errorf("%w: %q", ErrInvalidYaku, s)
	}

	yaku, ok := ParseYaku(s[:open])
	if !ok {
		return YakuPair{}, fmt.Errorf("%w: unknown name in %q", ErrInvalidYaku, s)
	}

	levelText := s[open+1 : end]
	if levelText == "役満" {
		return YakuPair{Yaku: yaku, Level: YakuLevel{Han: 1, Yakuman: true}}, nil
	}
	var han int
	i := 0
	for i < len(levelText) && levelText[i] >= '0' && levelText[i] <= '9' {
		han = han*10 + int(levelText[i]-'0')
		i++
	}
	if i == 0 || levelText[i:] != "飜" {
		return YakuPair{}, fmt.Errorf("%w: level in %q", ErrInvalidYaku, s)
	}
	return YakuPair{Yaku: yaku, Level: YakuLevel{Han: han}}, nil
}
