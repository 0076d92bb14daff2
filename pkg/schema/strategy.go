// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned for strategy names outside the
// accepted set.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy selects a downsampling kernel. Max, Min and Avg are
// persisted in the pyramid; LTTB is computed at query time only.
type Strategy int

const (
	StrategyMax Strategy = iota
	StrategyMin
	StrategyAvg
	StrategyLTTB
)

// PersistedStrategies are built once per pyramid level during
// preprocessing, in this fixed order.
var PersistedStrategies = []Strategy{StrategyMax, StrategyMin, StrategyAvg}

func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "max":
		return StrategyMax, nil
	case "min":
		return StrategyMin, nil
	case "avg":
		return StrategyAvg, nil
	case "lttb":
		return StrategyLTTB, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

func (s Strategy) String() string {
	switch s {
	case StrategyMax:
		return "max"
	case StrategyMin:
		return "min"
	case StrategyAvg:
		return "avg"
	case StrategyLTTB:
		return "lttb"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Persisted reports whether pyramid levels above zero exist for this
// strategy.
func (s Strategy) Persisted() bool {
	return s == StrategyMax || s == StrategyMin || s == StrategyAvg
}
