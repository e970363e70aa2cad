package tenhou

// Score recomputes the textual score of a win from its fu and han. Payouts
// of 2000 base points and up stop scaling and fall into the named tiers,
// graded by han alone.
//
// The fixed tier payouts, indexed mangan through yakuman:
//
//	dealer ron        12000 18000 24000 36000 48000
//	non-dealer ron     8000 12000 16000 24000 32000
//	dealer tsumo       4000  6000  8000 12000 16000 (from each)
//	non-dealer tsumo   2000  3000  4000  6000  8000 (dealer pays double)
func Score(fu, han int, dealer, tsumo bool) RankedScore {
	base := fu << (han + 2)
	if base >= 2000 {
		return tierScore(tierForHan(han), dealer, tsumo, 1)
	}

	rank := ScoreRank{Tier: TierNormal, Fu: fu, Han: han}
	switch {
	case dealer && tsumo:
		return RankedScore{Rank: rank, Payment: OyaTsumo{Points: ceil100(base * 2)}}
	case tsumo:
		return RankedScore{Rank: rank, Payment: KoTsumo{Ko: ceil100(base), Oya: ceil100(base * 2)}}
	case dealer:
		return RankedScore{Rank: rank, Payment: Ron{Points: ceil100(base * 6)}}
	default:
		return RankedScore{Rank: rank, Payment: Ron{Points: ceil100(base * 4)}}
	}
}

// ScoreYakuman scores a yakuman win; count > 1 is a stacked yakuman and
// multiplies the payout.
func ScoreYakuman(count int, dealer, tsumo bool) RankedScore {
	return tierScore(TierYakuman, dealer, tsumo, count)
}

func tierForHan(han int) Tier {
	switch {
	case han >= 13:
		return TierYakuman
	case han >= 11:
		return TierSanbaiman
	case han >= 8:
		return TierBaiman
	case han >= 6:
		return TierHaneman
	default:
		return TierMangan
	}
}

// tierUnit is the non-dealer tsumo share per tier; every other payout is a
// fixed multiple of it.
var tierUnit = map[Tier]int{
	TierMangan:    2000,
	TierHaneman:   3000,
	TierBaiman:    4000,
	TierSanbaiman: 6000,
	TierYakuman:   8000,
}

func tierScore(tier Tier, dealer, tsumo bool, count int) RankedScore {
	unit := tierUnit[tier] * count
	rank := ScoreRank{Tier: tier}
	switch {
	case dealer && tsumo:
		return RankedScore{Rank: rank, Payment: OyaTsumo{Points: unit * 2}}
	case tsumo:
		return RankedScore{Rank: rank, Payment: KoTsumo{Ko: unit, Oya: unit * 2}}
	case dealer:
		return RankedScore{Rank: rank, Payment: Ron{Points: unit * 6}}
	default:
		return RankedScore{Rank: rank, Payment: Ron{Points: unit * 4}}
	}
}

func ceil100(x int) int {
	return (x + 99) / 100 * 100
}
