// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package downsample

import (
	"math"

	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
)

// Inspired by one of the algorithms from https://skemman.is/bitstream/1946/15343/3/SS_MSthesis.pdf
//
// The first and last records are always kept. The interior records are
// partitioned into target-2 buckets of equal timespan; empty buckets
// are skipped, so the result may be shorter than the target.
func LTTB(records []schema.Record, target int) []schema.Record {
	n := len(records)
	if target >= n {
		return records
	}
	if target <= 2 {
		if target <= 0 {
			return nil
		}
		ends := []schema.Record{records[0], records[n-1]}
		return ends[:target]
	}

	interior := records[1 : n-1]
	buckets := bucketByTime(interior, target-2)

	out := make([]schema.Record, 0, target)
	out = append(out, records[0])
	prev := records[0]

	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}

		// Average of the next non-empty bucket, the last record when
		// none remains.
		nextX, nextY := float64(records[n-1].Time), records[n-1].Value
		for _, next := range buckets[i+1:] {
			if len(next) > 0 {
				nextX, nextY = centroid(next)
				break
			}
		}

		best := bucket[0]
		bestArea := -1.0
		for _, r := range bucket {
			area := TriangleArea(
				float64(prev.Time), prev.Value,
				float64(r.Time), r.Value,
				nextX, nextY)
			if area > bestArea {
				bestArea = area
				best = r
			}
		}

		out = append(out, best)
		prev = best
	}

	return append(out, records[n-1])
}

// TriangleArea of the points (x1,y1), (x2,y2), (x3,y3).
func TriangleArea(x1, y1, x2, y2, x3, y3 float64) float64 {
	return math.Abs(x1*(y2-y3)+x2*(y3-y1)+x3*(y1-y2)) / 2
}

// bucketByTime splits records into count buckets of equal timespan.
// Records sharing a degenerate timespan all land in the first bucket.
func bucketByTime(records []schema.Record, count int) [][]schema.Record {
	buckets := make([][]schema.Record, count)
	first := records[0].Time
	span := records[len(records)-1].Time - first

	for _, r := range records {
		idx := 0
		if span > 0 {
			idx = int(int64(count) * (r.Time - first) / (span + 1))
		}
		buckets[idx] = append(buckets[idx], r)
	}
	return buckets
}

func centroid(records []schema.Record) (float64, float64) {
	var sumX, sumY float64
	for _, r := range records {
		sumX += float64(r.Time)
		sumY += r.Value
	}
	l := float64(len(records))
	return sumX / l, sumY / l
}
