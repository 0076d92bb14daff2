// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of pdg-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package pyramid

import (
	"fmt"
	"strings"
)

// Layout below the store root:
//
//	<root>/<file>/metadata.json
//	<root>/<file>/level0/metadata.json
//	<root>/<file>/level0/s<i>.csv
//	<root>/<file>/<strategy>/level<k>/metadata.json   (k >= 1)
//	<root>/<file>/<strategy>/level<k>/s<i>.csv        (k >= 1)
//
// Slice names as recorded in metadata carry the level prefix, e.g.
// "level1/s0.csv".

const level0 = "level0"

// FileBaseName derives the pyramid directory name from a raw blob
// key: surrounding whitespace, a trailing ".csv" and any leading
// directory prefix are stripped.
func FileBaseName(rawKey string) string {
	name := strings.TrimSpace(rawKey)
	name = strings.TrimSuffix(name, ".csv")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

func levelName(k int) string {
	return fmt.Sprintf("level%d", k)
}

func sliceName(level string, index int) string {
	return fmt.Sprintf("%s/s%d.csv", level, index)
}

func fileMetaPath(root, file string) string {
	return fmt.Sprintf("%s/%s/metadata.json", root, file)
}

// levelMetaPath locates a level's slice-start index. Level 0 is
// strategy-independent; the strategy is ignored for it.
func levelMetaPath(root, file, strategy, level string) string {
	if level == level0 {
		return fmt.Sprintf("%s/%s/%s/metadata.json", root, file, level0)
	}
	return fmt.Sprintf("%s/%s/%s/%s/metadata.json", root, file, strategy, level)
}

// slicePath locates one slice blob given its metadata name. Level 0
// names resolve below the file directory directly.
func slicePath(root, file, strategy, name string) string {
	if strings.HasPrefix(name, level0+"/") {
		return fmt.Sprintf("%s/%s/%s", root, file, name)
	}
	return fmt.Sprintf("%s/%s/%s/%s", root, file, strategy, name)
}
