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
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	radiationPatternRecordLines = 6
	photoDiodeRecordLines       = 4
)

// recordReader reads fixed-size line records, skipping blank lines and '#' comments.
type recordReader struct {
	scanner *bufio.Scanner
	lineNo  int
}

func newRecordReader(r io.Reader) *recordReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &recordReader{scanner: sc}
}

// next returns the next record of n lines, or io.EOF if no record starts.
func (rr *recordReader) next(n int) ([]string, int, error) {
	var lines []string
	startLine := 0
	for len(lines) < n && rr.scanner.Scan() {
		rr.lineNo++
		line := strings.TrimSpace(rr.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(lines) == 0 {
			startLine = rr.lineNo
		}
		lines = append(lines, line)
	}
	if err := rr.scanner.Err(); err != nil {
		return nil, 0, errors.Wrapf(err, "read error at line %d", rr.lineNo)
	}
	if len(lines) == 0 {
		return nil, 0, io.EOF
	}
	if len(lines) < n {
		return nil, 0, errors.Errorf("truncated record starting at line %d: %d of %d lines", startLine, len(lines), n)
	}
	return lines, startLine, nil
}

func parseFloats(line string) ([]float64, error) {
	fields := strings.Fields(line)
	res := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", i+1)
		}
		res[i] = v
	}
	return res, nil
}

func parseFloat(line string) (float64, error) {
	vs, err := parseFloats(line)
	if err != nil {
		return 0, err
	}
	if len(vs) != 1 {
		return 0, errors.Errorf("expected a single value, got %d", len(vs))
	}
	return vs[0], nil
}

func parseIdentifier(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) != 1 {
		return "", errors.Errorf("identifier line must hold one token, got %q", line)
	}
	return fields[0], nil
}

// ParseRadiationPatterns reads all radiation-pattern records: identifier, left-lamp magnitudes,
// right-lamp magnitudes, left-lamp angles, right-lamp angles, spectral emission.
func ParseRadiationPatterns(r io.Reader) ([]*RadiationPattern, error) {
	rr := newRecordReader(r)
	var res []*RadiationPattern
	for {
		lines, at, err := rr.next(radiationPatternRecordLines)
		if err == io.EOF {
			return res, nil
		} else if err != nil {
			return nil, err
		}
		rp, err := parseRadiationPattern(lines)
		if err != nil {
			return nil, errors.Wrapf(err, "radiation pattern record at line %d", at)
		}
		res = append(res, rp)
	}
}

func parseRadiationPattern(lines []string) (*RadiationPattern, error) {
	id, err := parseIdentifier(lines[0])
	if err != nil {
		return nil, err
	}
	var vecs [5][]float64
	for i := range vecs {
		if vecs[i], err = parseFloats(lines[i+1]); err != nil {
			return nil, errors.Wrapf(err, "%s line %d", id, i+2)
		}
	}
	rp := &RadiationPattern{Id: id, spectralEmission: vecs[4]}
	if rp.lamps[LeftLamp], err = newLampPattern(vecs[0], vecs[2]); err != nil {
		return nil, errors.Wrapf(err, "%s left lamp", id)
	}
	if rp.lamps[RightLamp], err = newLampPattern(vecs[1], vecs[3]); err != nil {
		return nil, errors.Wrapf(err, "%s right lamp", id)
	}
	return rp, nil
}

// ParsePhotoDiodes reads all photodiode records: identifier, area, gain, spectral response.
func ParsePhotoDiodes(r io.Reader) ([]*PhotoDiode, error) {
	rr := newRecordReader(r)
	var res []*PhotoDiode
	for {
		lines, at, err := rr.next(photoDiodeRecordLines)
		if err == io.EOF {
			return res, nil
		} else if err != nil {
			return nil, err
		}
		pd, err := parsePhotoDiode(lines)
		if err != nil {
			return nil, errors.Wrapf(err, "photodiode record at line %d", at)
		}
		res = append(res, pd)
	}
}

func parsePhotoDiode(lines []string) (*PhotoDiode, error) {
	id, err := parseIdentifier(lines[0])
	if err != nil {
		return nil, err
	}
	pd := &PhotoDiode{Id: id}
	if pd.Area, err = parseFloat(lines[1]); err != nil {
		return nil, errors.Wrapf(err, "%s area", id)
	}
	if pd.Gain, err = parseFloat(lines[2]); err != nil {
		return nil, errors.Wrapf(err, "%s gain", id)
	}
	if pd.spectralResponse, err = parseFloats(lines[3]); err != nil {
		return nil, errors.Wrapf(err, "%s spectral response", id)
	}
	if pd.Area <= 0 {
		return nil, errors.Errorf("%s: area must be positive", id)
	}
	return pd, nil
}
