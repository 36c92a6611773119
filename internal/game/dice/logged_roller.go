package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, dice values, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source { return r.src }

// RollTotal parses and rolls expr, logs the result and returns its total.
// A malformed expression logs a warning and yields 0 so that a bad content
// entry never aborts a tick.
func (r *Roller) RollTotal(expr string) int {
	result, err := RollExpr(expr, r.src)
	if err != nil {
		r.logger.Warn("dice roll failed", zap.String("expression", expr), zap.Error(err))
		return 0
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result.Total()
}
