// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package downsample

import (
	"testing"

	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
)

// tenRows is the shared fixture: ten records of one channel with a
// spike at index 2 and a dip at index 8.
func tenRows() []schema.Record {
	values := []float64{100, 100, 300, 100, 100, 100, 100, 100, 5, 100}
	records := make([]schema.Record, len(values))
	for i, v := range values {
		records[i] = schema.Record{Time: int64(i * 100), Value: v, Channel: "PPX_ASYS"}
	}
	return records
}

func assertIndices(t *testing.T, got []schema.Record, want []int) {
	t.Helper()
	rows := tenRows()
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, idx := range want {
		if got[i] != rows[idx] {
			t.Errorf("record %d: got %+v, want row %d (%+v)", i, got[i], idx, rows[idx])
		}
	}
}

func TestMaxByFactor(t *testing.T) {
	assertIndices(t, ByFactor(schema.StrategyMax, tenRows(), 2), []int{0, 2, 4, 6, 9})
	assertIndices(t, ByFactor(schema.StrategyMax, tenRows(), 4), []int{2, 4, 9})
	assertIndices(t, ByFactor(schema.StrategyMax, tenRows(), 100), []int{2})
}

func TestMinByFactor(t *testing.T) {
	assertIndices(t, ByFactor(schema.StrategyMin, tenRows(), 2), []int{0, 3, 4, 6, 8})
	assertIndices(t, ByFactor(schema.StrategyMin, tenRows(), 4), []int{0, 4, 8})
	assertIndices(t, ByFactor(schema.StrategyMin, tenRows(), 100), []int{8})
}

func TestAvgByTarget(t *testing.T) {
	got := ByTarget(schema.StrategyAvg, tenRows(), 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	// Rows 0-4: times 0..400, values [100,100,300,100,100].
	want0 := schema.Record{Time: 200, Value: 140, Channel: "PPX_ASYS"}
	// Rows 5-9: times 500..900, values [100,100,100,5,100].
	want1 := schema.Record{Time: 700, Value: 81, Channel: "PPX_ASYS"}

	if got[0] != want0 {
		t.Errorf("block 0: got %+v, want %+v", got[0], want0)
	}
	if got[1] != want1 {
		t.Errorf("block 1: got %+v, want %+v", got[1], want1)
	}
}

func TestFactorIdentity(t *testing.T) {
	rows := tenRows()
	for _, s := range []schema.Strategy{schema.StrategyMax, schema.StrategyMin, schema.StrategyAvg} {
		for _, factor := range []int{0, 1, -3} {
			got := ByFactor(s, rows, factor)
			if len(got) != len(rows) {
				t.Errorf("%s factor %d: input must pass unchanged", s, factor)
			}
		}
	}
}

func TestSizeBounds(t *testing.T) {
	rows := tenRows()
	strategies := []schema.Strategy{
		schema.StrategyMax, schema.StrategyMin, schema.StrategyAvg, schema.StrategyLTTB,
	}

	for _, s := range strategies {
		for target := 1; target <= 12; target++ {
			got := ByTarget(s, rows, target)
			if len(got) > target {
				t.Errorf("%s target %d: %d records exceed the budget", s, target, len(got))
			}
			if len(got) > len(rows) {
				t.Errorf("%s target %d: output longer than input", s, target)
			}
		}
	}
}

func TestByTargetZero(t *testing.T) {
	for _, s := range []schema.Strategy{schema.StrategyMax, schema.StrategyLTTB} {
		if got := ByTarget(s, tenRows(), 0); len(got) != 0 {
			t.Errorf("%s target 0: expected no records, got %d", s, len(got))
		}
	}
}

func TestInputNotMutated(t *testing.T) {
	rows := tenRows()
	ByFactor(schema.StrategyMax, rows, 3)
	ByTarget(schema.StrategyAvg, rows, 2)
	ByTarget(schema.StrategyLTTB, rows, 4)

	for i, r := range tenRows() {
		if rows[i] != r {
			t.Fatalf("input mutated at %d", i)
		}
	}
}
