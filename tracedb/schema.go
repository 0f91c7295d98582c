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

package tracedb

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    scenario   TEXT NOT NULL,
    seed       INTEGER NOT NULL,
    config     TEXT
);

CREATE TABLE IF NOT EXISTS receptions (
    run_id         INTEGER NOT NULL REFERENCES runs(id),
    time_ns        INTEGER NOT NULL,
    receiver       TEXT NOT NULL,
    node_id        INTEGER NOT NULL,
    light          TEXT NOT NULL,
    frame_id       INTEGER NOT NULL,
    sender_id      INTEGER NOT NULL,
    sender_light   TEXT NOT NULL,
    outcome        TEXT NOT NULL,
    recv_power_dbm REAL,
    sinr_min       REAL
);

CREATE INDEX IF NOT EXISTS idx_receptions_run ON receptions(run_id, time_ns);
`

const insertRunSQL = `INSERT INTO runs (scenario, seed, config) VALUES (?, ?, ?)`

const insertReceptionSQL = `
INSERT INTO receptions (run_id, time_ns, receiver, node_id, light, frame_id, sender_id, sender_light,
                        outcome, recv_power_dbm, sinr_min)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectReceptionsSQL = `
SELECT time_ns, receiver, node_id, light, frame_id, sender_id, sender_light, outcome, recv_power_dbm, sinr_min
FROM receptions
WHERE run_id = ?
ORDER BY time_ns, rowid`

const selectOutcomeCountsSQL = `
SELECT outcome, COUNT(*)
FROM receptions
WHERE run_id = ?
GROUP BY outcome`
