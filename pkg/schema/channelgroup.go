// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import "sort"

// ChannelGroup maps channel names to their time-ordered record
// sequences. Iteration order is the insertion order of channels.
type ChannelGroup struct {
	order   []string
	records map[string][]Record
}

func NewChannelGroup() *ChannelGroup {
	return &ChannelGroup{records: map[string][]Record{}}
}

// Append adds one record to its channel's sequence.
func (cg *ChannelGroup) Append(r Record) {
	if _, ok := cg.records[r.Channel]; !ok {
		cg.order = append(cg.order, r.Channel)
	}
	cg.records[r.Channel] = append(cg.records[r.Channel], r)
}

// Extend appends a whole sequence to the named channel.
func (cg *ChannelGroup) Extend(channel string, records []Record) {
	if len(records) == 0 {
		return
	}
	if _, ok := cg.records[channel]; !ok {
		cg.order = append(cg.order, channel)
	}
	cg.records[channel] = append(cg.records[channel], records...)
}

// Merge extends this group by all channels of other.
func (cg *ChannelGroup) Merge(other *ChannelGroup) {
	for _, name := range other.order {
		cg.Extend(name, other.records[name])
	}
}

// Channels returns the channel names in insertion order.
func (cg *ChannelGroup) Channels() []string {
	return cg.order
}

// Records returns the sequence of the named channel, nil if absent.
func (cg *ChannelGroup) Records(channel string) []Record {
	return cg.records[channel]
}

// SetRecords replaces the sequence of the named channel.
func (cg *ChannelGroup) SetRecords(channel string, records []Record) {
	if _, ok := cg.records[channel]; !ok {
		cg.order = append(cg.order, channel)
	}
	cg.records[channel] = records
}

// Total counts records across all channels.
func (cg *ChannelGroup) Total() int {
	n := 0
	for _, recs := range cg.records {
		n += len(recs)
	}
	return n
}

// FirstTimestamp returns the earliest first-record time across
// channels, -1 for an empty group.
func (cg *ChannelGroup) FirstTimestamp() int64 {
	first := int64(-1)
	for _, name := range cg.order {
		recs := cg.records[name]
		if len(recs) == 0 {
			continue
		}
		if first < 0 || recs[0].Time < first {
			first = recs[0].Time
		}
	}
	return first
}

// Flatten merges all channels into one sequence sorted by time
// ascending. The sort is stable so that equal timestamps keep their
// channel insertion order.
func (cg *ChannelGroup) Flatten() []Record {
	all := make([]Record, 0, cg.Total())
	for _, name := range cg.order {
		all = append(all, cg.records[name]...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Time < all[j].Time })
	return all
}
