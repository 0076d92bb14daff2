// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package downsample implements the per-channel reduction kernels.
// All kernels expect the input sorted by time ascending and never
// mutate it. They return a new sequence, except where the input passes
// unchanged, in which case the input slice itself is returned.
package downsample

import (
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
	"github.com/ClusterCockpit/pdg-backend/pkg/util"
)

// ByFactor reduces records by an integer factor: one output record per
// contiguous block of factor inputs (the last block may be shorter).
// A factor of one or less returns the input unchanged.
func ByFactor(s schema.Strategy, records []schema.Record, factor int) []schema.Record {
	if factor <= 1 || len(records) == 0 {
		return records
	}

	switch s {
	case schema.StrategyMax:
		return pickByFactor(records, factor, func(best, r schema.Record) bool { return r.Value > best.Value })
	case schema.StrategyMin:
		return pickByFactor(records, factor, func(best, r schema.Record) bool { return r.Value < best.Value })
	case schema.StrategyAvg:
		return avgByFactor(records, factor)
	case schema.StrategyLTTB:
		return LTTB(records, util.CeilDiv(len(records), factor))
	}
	return records
}

// ByTarget reduces records to at most target outputs. For the
// persisted strategies the per-sequence factor is ceil(len / target);
// LTTB uses the target directly.
func ByTarget(s schema.Strategy, records []schema.Record, target int) []schema.Record {
	if target <= 0 {
		return nil
	}
	if s == schema.StrategyLTTB {
		return LTTB(records, target)
	}
	if len(records) == 0 {
		return records
	}
	return ByFactor(s, records, util.CeilDiv(len(records), target))
}

// pickByFactor emits the first record of each block that wins the
// better comparison. Ties keep the earliest occurrence.
func pickByFactor(records []schema.Record, factor int, better func(best, r schema.Record) bool) []schema.Record {
	out := make([]schema.Record, 0, util.CeilDiv(len(records), factor))
	for start := 0; start < len(records); start += factor {
		end := min(start+factor, len(records))
		best := records[start]
		for _, r := range records[start+1 : end] {
			if better(best, r) {
				best = r
			}
		}
		out = append(out, best)
	}
	return out
}

// avgByFactor emits per block the floored mean time, the mean value
// rounded to four decimals and the channel of the block's first
// record.
func avgByFactor(records []schema.Record, factor int) []schema.Record {
	out := make([]schema.Record, 0, util.CeilDiv(len(records), factor))
	for start := 0; start < len(records); start += factor {
		end := min(start+factor, len(records))
		var sumTime int64
		var sumValue float64
		for _, r := range records[start:end] {
			sumTime += r.Time
			sumValue += r.Value
		}
		n := int64(end - start)
		out = append(out, schema.Record{
			Time:    sumTime / n,
			Value:   schema.Round4(sumValue / float64(n)),
			Channel: records[start].Channel,
		})
	}
	return out
}
