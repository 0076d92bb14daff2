// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package util

import "testing"

func TestSearchAscending(t *testing.T) {
	list := []int64{0, 2, 4, 6, 8, 10, 12}

	tests := []struct {
		value int64
		want  int
	}{
		{5, 2},
		{6, 2},
		{100, 6},
		{-1, 0},
		{0, 0},
	}

	for _, tc := range tests {
		if got := SearchAscending(list, tc.value); got != tc.want {
			t.Errorf("SearchAscending(%d): got %d, want %d", tc.value, got, tc.want)
		}
	}

	if got := SearchAscending([]int64{}, 5); got != -1 {
		t.Errorf("empty list: got %d, want -1", got)
	}
}

func TestSearchDescending(t *testing.T) {
	list := []float64{10, 8, 6, 4, 2, 0}

	tests := []struct {
		value float64
		want  int
	}{
		{100, 0},
		{8, 1},
		{0, 5},
		{-1, 5},
	}

	for _, tc := range tests {
		if got := SearchDescending(list, tc.value); got != tc.want {
			t.Errorf("SearchDescending(%v): got %d, want %d", tc.value, got, tc.want)
		}
	}

	if got := SearchDescending([]float64{}, 5); got != -1 {
		t.Errorf("empty list: got %d, want -1", got)
	}
}

func TestCeilDiv(t *testing.T) {
	if CeilDiv(10, 2) != 5 || CeilDiv(10, 3) != 4 || CeilDiv(1, 100) != 1 {
		t.Fail()
	}
}
