// Copyright (c) 2020-2023, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package lightdata

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/otns/vlcns/logger"
)

// Registry holds the radiation patterns and photodiodes by identifier. It is immutable after
// construction and shared by all attenuation models.
type Registry struct {
	patterns map[string]*RadiationPattern
	diodes   map[string]*PhotoDiode
}

func NewRegistry(patterns []*RadiationPattern, diodes []*PhotoDiode) (*Registry, error) {
	reg := &Registry{
		patterns: make(map[string]*RadiationPattern, len(patterns)),
		diodes:   make(map[string]*PhotoDiode, len(diodes)),
	}
	for _, rp := range patterns {
		if _, ok := reg.patterns[rp.Id]; ok {
			return nil, errors.Errorf("duplicate radiation pattern identifier %q", rp.Id)
		}
		reg.patterns[rp.Id] = rp
	}
	for _, pd := range diodes {
		if _, ok := reg.diodes[pd.Id]; ok {
			return nil, errors.Errorf("duplicate photodiode identifier %q", pd.Id)
		}
		reg.diodes[pd.Id] = pd
	}
	return reg, nil
}

// LoadRegistry parses the radiation-pattern and photodiode files.
func LoadRegistry(patternFile, diodeFile string) (*Registry, error) {
	patterns, err := parseFile(patternFile, ParseRadiationPatterns)
	if err != nil {
		return nil, err
	}
	diodes, err := parseFile(diodeFile, ParsePhotoDiodes)
	if err != nil {
		return nil, err
	}
	reg, err := NewRegistry(patterns, diodes)
	if err != nil {
		return nil, err
	}
	logger.Infof("light data loaded: %d radiation patterns, %d photodiodes", len(patterns), len(diodes))
	return reg, nil
}

func parseFile[T any](path string, parse func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	res, err := parse(f)
	return res, errors.Wrapf(err, "parse %s", path)
}

func (reg *Registry) RadiationPattern(id string) (*RadiationPattern, error) {
	rp, ok := reg.patterns[id]
	if !ok {
		return nil, errors.Errorf("radiation pattern %q not found", id)
	}
	return rp, nil
}

func (reg *Registry) PhotoDiode(id string) (*PhotoDiode, error) {
	pd, ok := reg.diodes[id]
	if !ok {
		return nil, errors.Errorf("photodiode %q not found", id)
	}
	return pd, nil
}

// PatternIds returns the sorted radiation pattern identifiers.
func (reg *Registry) PatternIds() []string {
	ids := make([]string, 0, len(reg.patterns))
	for id := range reg.patterns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PhotoDiodeIds returns the sorted photodiode identifiers.
func (reg *Registry) PhotoDiodeIds() []string {
	ids := make([]string, 0, len(reg.diodes))
	for id := range reg.diodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Loader loads a Registry on first use. Get may be called by any number of models during setup; the
// files are read once and every caller shares the result.
type Loader struct {
	PatternFile string
	DiodeFile   string

	once sync.Once
	reg  *Registry
	err  error
}

func (l *Loader) Get() (*Registry, error) {
	l.once.Do(func() {
		l.reg, l.err = LoadRegistry(l.PatternFile, l.DiodeFile)
	})
	return l.reg, l.err
}
