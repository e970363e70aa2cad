package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjarchive/mjconv/mjlog"
	"github.com/mjarchive/mjconv/tenhou"
)

// Converting a rebuilt action sequence must reproduce the document exactly,
// even though the rebuilt ordinals and dice differ from the originals.
func TestDeconstructRoundTrip(t *testing.T) {
	fixtures := map[string][]mjlog.Action{
		"ron":        fixtureRon(),
		"two rounds": fixtureTwoRounds(),
		"kans":       fixtureKans(),
	}

	for name, fx := range fixtures {
		t.Run(name, func(t *testing.T) {
			doc, err := Convert(fx)
			require.NoError(t, err)

			rebuilt, err := Deconstruct(doc)
			require.NoError(t, err)

			doc2, err := Convert(rebuilt)
			require.NoError(t, err)

			want, err := tenhou.Export(doc)
			require.NoError(t, err)
			got, err := tenhou.Export(doc2)
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		})
	}
}

func TestDeconstructShape(t *testing.T) {
	doc, err := Convert(fixtureRon())
	require.NoError(t, err)
	rebuilt, err := Deconstruct(doc)
	require.NoError(t, err)

	require.Greater(t, len(rebuilt), 6)
	assert.IsType(t, mjlog.Go{}, rebuilt[0])
	assert.IsType(t, mjlog.Roster{}, rebuilt[1])
	assert.Equal(t, mjlog.Bye{Who: 2}, rebuilt[2])
	assert.Equal(t, mjlog.Reconnect{Who: 2, Name: "C"}, rebuilt[3])
	assert.Equal(t, mjlog.Taikyoku{Oya: 0}, rebuilt[4])
	assert.IsType(t, mjlog.Init{}, rebuilt[5])

	// The riichi declaration brackets its discard, with the stick paid in
	// the confirmation scores.
	declared := -1
	for i, a := range rebuilt {
		if r, ok := a.(mjlog.ReachDeclared); ok {
			declared = i
			assert.Equal(t, 3, r.Who)
		}
	}
	require.GreaterOrEqual(t, declared, 0)
	d, ok := rebuilt[declared+1].(mjlog.Discard)
	require.True(t, ok)
	assert.Equal(t, 3, d.Who)
	assert.Equal(t, mjlog.ReachConfirmed{Who: 3, Ten: []int{250, 250, 250, 240}}, rebuilt[declared+2])

	// The return recorded on the riichi discard's step lands before the
	// declaration, not between it and the discard.
	assert.Equal(t, mjlog.Reconnect{Who: 1, Name: "B"}, rebuilt[declared-1])

	var lastDiscard mjlog.Discard
	for _, a := range rebuilt {
		if d, ok := a.(mjlog.Discard); ok {
			lastDiscard = d
		}
	}

	last, ok := rebuilt[len(rebuilt)-1].(*mjlog.Agari)
	require.True(t, ok)
	assert.Equal(t, 3, last.Who)
	assert.Equal(t, 0, last.FromWho)
	assert.Equal(t, lastDiscard.Hai, last.Machi)
	assert.Equal(t, 30, last.Fu)
	assert.Equal(t, 3900, last.NetScore)
	assert.Equal(t, -1, last.PaoWho)
	require.NotNil(t, last.Owari)
	assert.Equal(t, []int{211, 250, 250, 289}, last.Owari.Points)
}

func TestParseRuleDisp(t *testing.T) {
	tests := []struct {
		rule tenhou.Rule
		want mjlog.GameSettings
	}{
		{
			tenhou.Rule{Disp: "般東喰赤", Aka51: true, Aka52: true, Aka53: true},
			mjlog.GameSettings{VsHuman: true},
		},
		{
			tenhou.Rule{Disp: "鳳南喰赤速", Aka51: true, Aka52: true, Aka53: true},
			mjlog.GameSettings{VsHuman: true, Hanchan: true, Soku: true, Room: mjlog.RoomHouou},
		},
		{
			tenhou.Rule{Disp: "上東"},
			mjlog.GameSettings{VsHuman: true, NoRed: true, NoKuitan: true, Room: mjlog.RoomJoukyu},
		},
		{
			tenhou.Rule{Disp: "特南喰赤", Aka51: true, Aka52: true, Aka53: true},
			mjlog.GameSettings{VsHuman: true, Hanchan: true, Room: mjlog.RoomTokujou},
		},
	}

	for _, tt := range tests {
		got, err := parseRuleDisp(tt.rule)
		require.NoError(t, err, tt.rule.Disp)
		assert.Equal(t, tt.want, got, tt.rule.Disp)
	}

	_, err := parseRuleDisp(tenhou.Rule{Disp: "三南喰赤"})
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestRecoverFu(t *testing.T) {
	score := func(s string) tenhou.RankedScore {
		r, err := tenhou.ParseRankedScore(s)
		require.NoError(t, err)
		return r
	}

	fu, ok := recoverFu(score("30符2飜2000点"), 2, false, false)
	require.True(t, ok)
	assert.Equal(t, 30, fu)

	// The fu of a mangan hand is not in the text; the smallest value
	// clearing the threshold serves.
	fu, ok = recoverFu(score("満貫8000点"), 5, false, false)
	require.True(t, ok)
	assert.Equal(t, 20, fu)

	fu, ok = recoverFu(score("満貫4000点∀"), 4, true, true)
	require.True(t, ok)
	assert.Equal(t, 35, fu)

	_, ok = recoverFu(score("30符1飜8000点"), 1, false, false)
	assert.False(t, ok)
}

func TestChiiMeld(t *testing.T) {
	alloc := &haiAlloc{}
	meld, err := chiiMeld(tenhou.Chii{Combination: [3]tenhou.Tile{12, 11, 13}}, alloc)
	require.NoError(t, err)
	chii, ok := meld.(mjlog.Chii)
	require.True(t, ok)
	assert.Equal(t, [3]mjlog.Hai{0, 4, 8}, chii.Combination)
	assert.Equal(t, 1, chii.CalledSlot)

	_, err = chiiMeld(tenhou.Chii{Combination: [3]tenhou.Tile{11, 13, 14}}, &haiAlloc{})
	assert.ErrorIs(t, err, ErrRoundShape)

	_, err = chiiMeld(tenhou.Chii{Combination: [3]tenhou.Tile{41, 42, 43}}, &haiAlloc{})
	assert.ErrorIs(t, err, ErrRoundShape)
}

func TestPonMeld(t *testing.T) {
	meld, err := ponMeld(tenhou.Pon{Combination: [3]tenhou.Tile{25, 52, 25}, Dir: tenhou.DirShimocha})
	require.NoError(t, err)
	pon, ok := meld.(mjlog.Pon)
	require.True(t, ok)
	assert.Equal(t, mjlog.DirShimocha, pon.Dir)
	assert.Equal(t, [3]mjlog.Hai{52, 53, 54}, pon.Combination)
	assert.Equal(t, mjlog.Hai(53), pon.Called)
	assert.Equal(t, mjlog.Hai(55), pon.Unused)

	meld, err = ponMeld(tenhou.Pon{Combination: [3]tenhou.Tile{52, 25, 25}, Dir: tenhou.DirKamicha})
	require.NoError(t, err)
	pon = meld.(mjlog.Pon)
	assert.Equal(t, mjlog.Hai(52), pon.Called)

	// The claimed-tile slot for a call from the right is the last one, so a
	// red shown first there is not a layout this format produces.
	_, err = ponMeld(tenhou.Pon{Combination: [3]tenhou.Tile{52, 25, 25}, Dir: tenhou.DirShimocha})
	assert.ErrorIs(t, err, ErrRoundShape)

	_, err = ponMeld(tenhou.Pon{Combination: [3]tenhou.Tile{25, 25, 26}, Dir: tenhou.DirToimen})
	assert.ErrorIs(t, err, ErrRoundShape)

	_, err = ponMeld(tenhou.Pon{Combination: [3]tenhou.Tile{25, 25, 25}, Dir: tenhou.DirSelf})
	assert.ErrorIs(t, err, ErrRoundShape)
}

func TestKakanMeld(t *testing.T) {
	meld, err := kakanMeld(tenhou.Kakan{
		Combination: [3]tenhou.Tile{45, 45, 45},
		Dir:         tenhou.DirToimen,
		Added:       45,
	})
	require.NoError(t, err)
	kakan, ok := meld.(mjlog.Kakan)
	require.True(t, ok)
	assert.Equal(t, [3]mjlog.Hai{124, 125, 126}, kakan.Combination)
	assert.Equal(t, mjlog.Hai(127), kakan.Added)

	meld, err = kakanMeld(tenhou.Kakan{
		Combination: [3]tenhou.Tile{25, 25, 25},
		Dir:         tenhou.DirKamicha,
		Added:       52,
	})
	require.NoError(t, err)
	kakan = meld.(mjlog.Kakan)
	assert.Equal(t, mjlog.Hai(52), kakan.Added)

	_, err = kakanMeld(tenhou.Kakan{
		Combination: [3]tenhou.Tile{25, 25, 25},
		Dir:         tenhou.DirKamicha,
		Added:       26,
	})
	assert.ErrorIs(t, err, ErrRoundShape)
}

func TestDaiminkanMeld(t *testing.T) {
	meld, err := daiminkanMeld(tenhou.Daiminkan{
		Combination: [4]tenhou.Tile{25, 25, 52, 25},
		Dir:         tenhou.DirShimocha,
	})
	require.NoError(t, err)
	kan, ok := meld.(mjlog.Daiminkan)
	require.True(t, ok)
	assert.Equal(t, mjlog.Hai(53), kan.Hai)

	meld, err = daiminkanMeld(tenhou.Daiminkan{
		Combination: [4]tenhou.Tile{52, 25, 25, 25},
		Dir:         tenhou.DirKamicha,
	})
	require.NoError(t, err)
	kan = meld.(mjlog.Daiminkan)
	assert.Equal(t, mjlog.Hai(52), kan.Hai)

	_, err = daiminkanMeld(tenhou.Daiminkan{
		Combination: [4]tenhou.Tile{25, 25, 25, 26},
		Dir:         tenhou.DirToimen,
	})
	assert.ErrorIs(t, err, ErrRoundShape)
}

func TestAnkanMeld(t *testing.T) {
	meld, err := ankanMeld(tenhou.Ankan{Tile: 52})
	require.NoError(t, err)
	assert.Equal(t, mjlog.Ankan{Hai: 52}, meld)

	meld, err = ankanMeld(tenhou.Ankan{Tile: 44})
	require.NoError(t, err)
	assert.Equal(t, mjlog.Ankan{Hai: 120}, meld)

	// A closed kan of fives always holds the red copy, so the black code
	// cannot stand for one.
	_, err = ankanMeld(tenhou.Ankan{Tile: 25})
	assert.ErrorIs(t, err, ErrRoundShape)
}

func TestHaiAlloc(t *testing.T) {
	alloc := &haiAlloc{}
	assert.Equal(t, mjlog.Hai(0), alloc.take(11))
	assert.Equal(t, mjlog.Hai(1), alloc.take(11))
	assert.Equal(t, mjlog.Hai(2), alloc.take(11))
	assert.Equal(t, mjlog.Hai(3), alloc.take(11))

	// Red ordinals are pinned; black fives cycle around them.
	assert.Equal(t, mjlog.Hai(52), alloc.take(52))
	assert.Equal(t, mjlog.Hai(53), alloc.take(25))
	assert.Equal(t, mjlog.Hai(54), alloc.take(25))
	assert.Equal(t, mjlog.Hai(55), alloc.take(25))

	avoided := alloc.takeAvoid(31, alloc.take(31))
	assert.NotEqual(t, mjlog.Hai(72), avoided)
}

func TestDeconstructErrors(t *testing.T) {
	_, err := Deconstruct(&tenhou.Log{})
	assert.ErrorIs(t, err, ErrMissingRound)

	doc, err := Convert(fixtureRon())
	require.NoError(t, err)

	bad := *doc
	bad.Rule = tenhou.Rule{Disp: "雀東喰赤"}
	_, err = Deconstruct(&bad)
	assert.ErrorIs(t, err, ErrUnknownRule)

	bad = *doc
	bad.Dan = []string{"初段", "段位外", "三段", "四段"}
	_, err = Deconstruct(&bad)
	assert.ErrorIs(t, err, ErrUnknownRank)
}
