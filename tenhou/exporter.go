package tenhou

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Export renders a match document as the platform's JSON, reproducing its
// field order and number formatting so a parse/export cycle is
// byte-identical. Floats with no fractional part print as integers; the
// connection field is omitted when empty.
func Export(l *Log) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')

	writeKey(&b, "ver", true)
	writeFloat(&b, l.Ver)

	writeKey(&b, "ref", false)
	if err := writeJSON(&b, l.Ref); err != nil {
		return nil, err
	}

	writeKey(&b, "log", false)
	b.WriteByte('[')
	for i := range l.Rounds {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeRound(&b, &l.Rounds[i]); err != nil {
			return nil, err
		}
	}
	b.WriteByte(']')

	if len(l.Connections) > 0 {
		writeKey(&b, "connection", false)
		b.WriteByte('[')
		for i, c := range l.Connections {
			if i > 0 {
				b.WriteByte(',')
			}
			writeConnection(&b, c)
		}
		b.WriteByte(']')
	}

	writeKey(&b, "ratingc", false)
	if err := writeJSON(&b, l.RatingC); err != nil {
		return nil, err
	}

	writeKey(&b, "rule", false)
	if err := writeRule(&b, l.Rule); err != nil {
		return nil, err
	}

	writeKey(&b, "lobby", false)
	b.WriteString(strconv.Itoa(l.Lobby))

	writeKey(&b, "dan", false)
	if err := writeStrings(&b, l.Dan); err != nil {
		return nil, err
	}

	writeKey(&b, "rate", false)
	b.WriteByte('[')
	for i, r := range l.Rate {
		if i > 0 {
			b.WriteByte(',')
		}
		writeFloat(&b, r)
	}
	b.WriteByte(']')

	writeKey(&b, "sx", false)
	if err := writeStrings(&b, l.Sx); err != nil {
		return nil, err
	}

	// Final standing interleaves points and placement bonuses.
	writeKey(&b, "sc", false)
	b.WriteByte('[')
	for i := range l.FinalPoints {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(l.FinalPoints[i]))
		b.WriteByte(',')
		if i < len(l.FinalResults) {
			writeFloat(&b, l.FinalResults[i])
		}
	}
	b.WriteByte(']')

	writeKey(&b, "name", false)
	if err := writeStrings(&b, l.Names); err != nil {
		return nil, err
	}

	b.WriteByte('}')
	return b.Bytes(), nil
}

func writeKey(b *bytes.Buffer, key string, first bool) {
	if !first {
		b.WriteByte(',')
	}
	b.WriteByte('"')
	b.WriteString(key)
	b.WriteString(`":`)
}

// writeJSON marshals one value without HTML escaping, which the platform
// never applies.
func writeJSON(b *bytes.Buffer, v any) error {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	b.Truncate(b.Len() - 1) // Encode appends a newline
	return nil
}

// writeFloat prints an integral float without a fractional part.
func writeFloat(b *bytes.Buffer, f float64) {
	if f == float64(int64(f)) {
		b.WriteString(strconv.FormatInt(int64(f), 10))
		return
	}
	b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

func writeStrings(b *bytes.Buffer, ss []string) error {
	b.WriteByte('[')
	for i, s := range ss {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeJSON(b, s); err != nil {
			return err
		}
	}
	b.WriteByte(']')
	return nil
}

func writeInts(b *bytes.Buffer, ns []int) {
	b.WriteByte('[')
	for i, n := range ns {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	b.WriteByte(']')
}

func writeTiles(b *bytes.Buffer, ts []Tile) {
	b.WriteByte('[')
	for i, t := range ts {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(t)))
	}
	b.WriteByte(']')
}

func writeRule(b *bytes.Buffer, r Rule) error {
	b.WriteString(`{"disp":`)
	if err := writeJSON(b, r.Disp); err != nil {
		return err
	}
	b.WriteString(`,"aka53":`)
	b.WriteString(boolFlag(r.Aka53))
	b.WriteString(`,"aka52":`)
	b.WriteString(boolFlag(r.Aka52))
	b.WriteString(`,"aka51":`)
	b.WriteString(boolFlag(r.Aka51))
	b.WriteByte('}')
	return nil
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func writeConnection(b *bytes.Buffer, c Connection) {
	b.WriteString(`{"what":`)
	b.WriteString(strconv.Itoa(c.What))
	b.WriteString(`,"log":`)
	b.WriteString(strconv.Itoa(c.Log))
	b.WriteString(`,"who":`)
	b.WriteString(strconv.Itoa(c.Who))
	b.WriteString(`,"step":`)
	b.WriteString(strconv.Itoa(c.Step))
	b.WriteByte('}')
}

func writeRound(b *bytes.Buffer, r *Round) error {
	b.WriteByte('[')
	writeInts(b, []int{r.Settings.Kyoku, r.Settings.Honba, r.Settings.Kyoutaku})
	b.WriteByte(',')
	writeInts(b, r.Settings.Points)
	b.WriteByte(',')
	writeTiles(b, r.Settings.Dora)
	b.WriteByte(',')
	writeTiles(b, r.Settings.UraDora)

	for seat := range r.Players {
		p := &r.Players[seat]
		b.WriteByte(',')
		writeTiles(b, p.Hand)
		b.WriteByte(',')
		if err := writeStream(b, len(p.Incoming), func(i int) (any, error) {
			return formatIncoming(p.Incoming[i])
		}); err != nil {
			return err
		}
		b.WriteByte(',')
		if err := writeStream(b, len(p.Outgoing), func(i int) (any, error) {
			return formatOutgoing(p.Outgoing[i])
		}); err != nil {
			return err
		}
	}

	b.WriteByte(',')
	if err := writeRoundResult(b, r.Result); err != nil {
		return err
	}
	b.WriteByte(']')
	return nil
}

func writeStream(b *bytes.Buffer, n int, format func(int) (any, error)) error {
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		v, err := format(i)
		if err != nil {
			return err
		}
		switch x := v.(type) {
		case int:
			b.WriteString(strconv.Itoa(x))
		case string:
			if err := writeJSON(b, x); err != nil {
				return err
			}
		}
	}
	b.WriteByte(']')
	return nil
}

func writeRoundResult(b *bytes.Buffer, result RoundResult) error {
	switch res := result.(type) {
	case AgariResult:
		b.WriteByte('[')
		if err := writeJSON(b, "和了"); err != nil {
			return err
		}
		for _, w := range res.Wins {
			b.WriteByte(',')
			writeInts(b, w.DeltaPoints)
			b.WriteByte(',')
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(w.Who))
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(w.FromWho))
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(w.PaoWho))
			b.WriteByte(',')
			if err := writeJSON(b, w.RankedScore.String()); err != nil {
				return err
			}
			for _, pair := range w.Yaku {
				b.WriteByte(',')
				if err := writeJSON(b, pair.String()); err != nil {
					return err
				}
			}
			b.WriteByte(']')
		}
		b.WriteByte(']')
		return nil
	case RyuukyokuResult:
		b.WriteByte('[')
		if err := writeJSON(b, res.Reason.String()); err != nil {
			return err
		}
		if len(res.DeltaPoints) > 0 {
			b.WriteByte(',')
			writeInts(b, res.DeltaPoints)
		}
		b.WriteByte(']')
		return nil
	default:
		return ErrInvalidAgari
	}
}
