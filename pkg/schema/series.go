// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

// ChannelSeries is the response payload of one channel: the name and
// [time, value] pairs.
type ChannelSeries struct {
	Name string       `json:"name"`
	Data [][2]float64 `json:"data"`
}

// FormatSeries renders a channel group to response payloads, one entry
// per channel in iteration order.
func FormatSeries(cg *ChannelGroup) []ChannelSeries {
	out := make([]ChannelSeries, 0, len(cg.Channels()))
	for _, name := range cg.Channels() {
		recs := cg.Records(name)
		data := make([][2]float64, len(recs))
		for i, r := range recs {
			data[i] = [2]float64{float64(r.Time), r.Value}
		}
		out = append(out, ChannelSeries{Name: name, Data: data})
	}
	return out
}
