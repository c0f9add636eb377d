package tracker

import (
	"github.com/claude/liftlog/internal/analysis"
	"github.com/claude/liftlog/internal/config"
)

// OptionsFromConfig validates the analysis section and turns it into Options.
func OptionsFromConfig(cfg config.AnalysisConfig) (Options, error) {
	formula, err := analysis.ParseFormula(cfg.Formula)
	if err != nil {
		return Options{}, err
	}
	rule, err := analysis.ParseRule(cfg.Rule)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Formula:          formula,
		Rule:             rule,
		BalanceCap:       cfg.BalanceCap,
		ReferenceWeights: cfg.ReferenceWeights,
	}, nil
}
