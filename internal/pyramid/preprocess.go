// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package pyramid

import (
	"context"
	"fmt"

	"github.com/ClusterCockpit/pdg-backend/internal/blobstore"
	"github.com/ClusterCockpit/pdg-backend/pkg/log"
	"github.com/ClusterCockpit/pdg-backend/pkg/schema"
	"github.com/ClusterCockpit/pdg-backend/pkg/util"
)

// PreprocessParams are the per-run tuning knobs: records per slice
// (S), the reduction factor between adjacent levels (F) and the
// minimum record count a level must keep to exist (M).
type PreprocessParams struct {
	NumberPerSlice     int
	DownsampleFactor   int
	MinimumNumberLevel int
}

// Preprocessor builds the whole pyramid of one raw file: level 0 by
// slicing the raw stream, one stack of downsampled levels per
// persisted strategy, and the metadata documents. The file metadata
// is written last and is the commit point; a run that fails earlier
// leaves no visible pyramid.
type Preprocessor struct {
	store  blobstore.Store
	root   string
	rawKey string
	file   string
	params PreprocessParams
}

func NewPreprocessor(store blobstore.Store, root, rawKey string, params PreprocessParams) *Preprocessor {
	return &Preprocessor{
		store:  store,
		root:   root,
		rawKey: rawKey,
		file:   FileBaseName(rawKey),
		params: params,
	}
}

func (p *Preprocessor) Run(ctx context.Context) error {
	if p.params.NumberPerSlice < 1 || p.params.DownsampleFactor < 2 || p.params.MinimumNumberLevel < 1 {
		return fmt.Errorf("invalid preprocess parameters: S=%d F=%d M=%d",
			p.params.NumberPerSlice, p.params.DownsampleFactor, p.params.MinimumNumberLevel)
	}

	log.Infof("Preprocess %s: S=%d F=%d M=%d",
		p.rawKey, p.params.NumberPerSlice, p.params.DownsampleFactor, p.params.MinimumNumberLevel)

	level0Names, rawNumber, start, end, err := p.splitRaw(ctx)
	if err != nil {
		return err
	}

	meta := p.planLevels(rawNumber, start, end, level0Names)

	for _, strategy := range schema.PersistedStrategies {
		if err := p.buildStrategy(ctx, strategy, meta); err != nil {
			return err
		}
	}

	// Commit point. Queries only see the pyramid from here on.
	if err := meta.Save(ctx, p.store, p.root, p.file); err != nil {
		return err
	}

	log.Infof("Preprocess %s: %d records, %d levels", p.rawKey, rawNumber, len(meta.Levels.Names))
	return nil
}

// splitRaw builds level 0: the raw stream cut into slices of exactly
// numberPerSlice records, stored verbatim in the source's natural
// order. Returns the slice names, the record total and the global
// time bounds.
func (p *Preprocessor) splitRaw(ctx context.Context) ([]string, int64, int64, int64, error) {
	streamer := NewRawStreamer(p.store, p.rawKey, p.params.NumberPerSlice)
	index := SliceIndex{}

	var names []string
	var rawNumber, start, end int64

	for streamer.Readable() {
		records, err := streamer.ReadNextSlice(ctx)
		if err != nil {
			return nil, 0, 0, 0, err
		}
		if len(records) == 0 {
			continue
		}

		name := sliceName(level0, len(names))
		slice := NewSlice(slicePath(p.root, p.file, "", name))
		if err := slice.SaveRecords(ctx, p.store, records); err != nil {
			return nil, 0, 0, 0, err
		}

		index[name] = records[0].Time
		if len(names) == 0 {
			start = records[0].Time
		}
		end = records[len(records)-1].Time
		rawNumber += int64(len(records))
		names = append(names, name)
	}

	if err := index.Save(ctx, p.store, p.root, p.file, "", level0); err != nil {
		return nil, 0, 0, 0, err
	}

	return names, rawNumber, start, end, nil
}

// planLevels computes the level fan-out: counts start at the raw
// total and divide by the downsample factor until the next level
// would fall below the minimum.
func (p *Preprocessor) planLevels(rawNumber, start, end int64, level0Names []string) *FileMeta {
	timespan := end - start

	frequency := func(count int64) float64 {
		if timespan <= 0 {
			return 0
		}
		return float64(count) / float64(timespan)
	}

	meta := &FileMeta{
		Start:     start,
		End:       end,
		RawNumber: rawNumber,
		RawFile:   p.rawKey,
		Levels: LevelSet{
			Names: []string{level0},
			ByName: map[string]*LevelMeta{
				level0: {Names: level0Names, Frequency: frequency(rawNumber), Number: rawNumber},
			},
		},
	}

	count := rawNumber
	for k := 1; ; k++ {
		count /= int64(p.params.DownsampleFactor)
		if count < int64(p.params.MinimumNumberLevel) {
			break
		}

		name := levelName(k)
		sliceCount := util.CeilDiv(int(count), p.params.NumberPerSlice)
		sliceNames := make([]string, sliceCount)
		for i := range sliceNames {
			sliceNames[i] = sliceName(name, i)
		}

		meta.Levels.Names = append(meta.Levels.Names, name)
		meta.Levels.ByName[name] = &LevelMeta{
			Names:     sliceNames,
			Frequency: frequency(count),
			Number:    count,
		}
	}

	return meta
}

// buildStrategy derives every level above zero for one strategy by
// downsampling the previous level slice by slice, flushing a slice
// whenever it reaches the slice size.
func (p *Preprocessor) buildStrategy(ctx context.Context, strategy schema.Strategy, meta *FileMeta) error {
	factor := p.params.DownsampleFactor
	prevNames := meta.Levels.ByName[level0].Names

	for k := 1; k < len(meta.Levels.Names); k++ {
		level := meta.Levels.Names[k]
		index := SliceIndex{}

		var names []string
		current := NewSlice(slicePath(p.root, p.file, strategy.String(), sliceName(level, 0)))
		currentName := sliceName(level, 0)

		flush := func() error {
			if current.Count() == 0 {
				return nil
			}
			if err := current.Save(ctx, p.store); err != nil {
				return err
			}
			index[currentName] = current.FirstTimestamp()
			names = append(names, currentName)
			currentName = sliceName(level, len(names))
			current = NewSlice(slicePath(p.root, p.file, strategy.String(), currentName))
			return nil
		}

		for _, prevName := range prevNames {
			prev := NewSlice(slicePath(p.root, p.file, strategy.String(), prevName))
			if err := prev.Read(ctx, p.store); err != nil {
				return err
			}

			current.Add(prev.Downsample(strategy, factor, 0))
			if current.Count() >= p.params.NumberPerSlice {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}

		if err := index.Save(ctx, p.store, p.root, p.file, strategy.String(), level); err != nil {
			return err
		}
		if len(names) > 0 {
			meta.Levels.ByName[level].Names = names
		}
		prevNames = names
	}

	return nil
}
