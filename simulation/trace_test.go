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

package simulation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otns/vlcns/dispatcher"
	"github.com/otns/vlcns/tracedb"
)

func TestRecordReceptions(t *testing.T) {
	ctx := context.Background()
	sim := newTestSimulation(t, testYamlFile)
	store := tracedb.NewSqliteStore(filepath.Join(t.TempDir(), "trace.sqlite"))
	defer func() { _ = store.Close() }()

	runId, err := store.CreateRun(ctx, "test", sim.Seed(), sim.Config())
	require.NoError(t, err)
	sim.RecordReceptions(store)
	sim.Run()
	require.NoError(t, store.Flush(ctx))

	res, err := store.Receptions(ctx, runId)
	require.NoError(t, err)
	require.NotEmpty(t, res)
	for _, r := range res {
		assert.NotEqual(t, r.SenderId, r.NodeId)
	}

	totals := dispatcher.Totals(sim.Dispatcher().PhyStats())
	counts, err := store.OutcomeCounts(ctx, runId)
	require.NoError(t, err)
	assert.Equal(t, totals.Decoded, counts["decoded"])
	assert.Equal(t, totals.NotDecoded, counts["not_decoded"])
	assert.Equal(t, totals.Collisions, counts["collision"])
	assert.LessOrEqual(t, uint64(len(res)), totals.Signals)
}

func TestRecordReceptionsStop(t *testing.T) {
	sim := newTestSimulation(t, testYamlFile)
	store := tracedb.NewSqliteStore(filepath.Join(t.TempDir(), "trace.sqlite"))
	defer func() { _ = store.Close() }()

	sim.RecordReceptions(store)
	sim.RecordReceptions(nil)
	// Add would panic without a run
	assert.NotPanics(t, sim.Run)
}
