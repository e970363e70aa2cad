package main

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mjarchive/mjconv/tenhou"
)

// ScoreCmd prints the textual score of a win, the same string the array
// format embeds in its result records.
type ScoreCmd struct {
	Fu      int  `help:"Fu of the hand" default:"30"`
	Han     int  `help:"Total han of the hand" default:"1"`
	Yakuman int  `help:"Score as a yakuman of this multiplicity instead of fu and han"`
	Dealer  bool `help:"The winner is the dealer"`
	Tsumo   bool `help:"The win is self-drawn"`
}

func (cmd ScoreCmd) Run(logger *log.Logger) error {
	var score tenhou.RankedScore
	if cmd.Yakuman > 0 {
		score = tenhou.ScoreYakuman(cmd.Yakuman, cmd.Dealer, cmd.Tsumo)
	} else {
		if cmd.Fu < 20 || cmd.Fu > 110 || cmd.Fu%5 != 0 {
			return fmt.Errorf("fu must be a multiple of 5 between 20 and 110, got %d", cmd.Fu)
		}
		if cmd.Han < 1 {
			return fmt.Errorf("han must be positive, got %d", cmd.Han)
		}
		score = tenhou.Score(cmd.Fu, cmd.Han, cmd.Dealer, cmd.Tsumo)
	}
	fmt.Println(score)
	return nil
}
