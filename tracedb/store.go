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

// Package tracedb records the reception result of every frame of a simulation run in a SQLite
// database, for analysis after the run.
package tracedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/otns/vlcns/logger"
	. "github.com/otns/vlcns/types"
)

// DefaultBatchSize is the number of receptions buffered before they are written in one transaction.
const DefaultBatchSize = 512

// Reception is one row of the trace: the decision of a receiver about one frame.
type Reception struct {
	Time         Timestamp
	Receiver     string
	NodeId       NodeId
	Light        LightModule
	FrameId      FrameId
	SenderId     NodeId
	SenderLight  LightModule
	Outcome      string
	RecvPowerDbm sql.NullFloat64 // NULL below sensitivity
	SinrMin      sql.NullFloat64 // NULL unless the receiver was synced to the frame
}

// SqliteStore writes receptions of one run into a SQLite file.
type SqliteStore struct {
	dbPath    string
	BatchSize int

	dbOnce sync.Once
	db     *sql.DB
	dbErr  error

	runId   int64
	pending []Reception
	flushAt int // pending size that triggers the next write from Add
}

func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath, BatchSize: DefaultBatchSize}
}

func (s *SqliteStore) getDB() (*sql.DB, error) {
	s.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.dbErr = errors.Wrap(err, "opening database")
			return
		}
		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			s.dbErr = errors.Wrap(err, "initializing schema")
			return
		}
		s.db = db
	})
	return s.db, s.dbErr
}

// CreateRun starts a new run; following receptions are recorded under its id.
func (s *SqliteStore) CreateRun(ctx context.Context, scenario string, seed int64, config interface{}) (int64, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, err
	}
	var configData sql.NullString
	if config != nil {
		js, err := json.Marshal(config)
		if err != nil {
			return 0, errors.Wrap(err, "marshaling config")
		}
		configData = sql.NullString{String: string(js), Valid: true}
	}
	res, err := db.ExecContext(ctx, insertRunSQL, scenario, seed, configData)
	if err != nil {
		return 0, errors.Wrap(err, "inserting run")
	}
	if s.runId, err = res.LastInsertId(); err != nil {
		return 0, errors.Wrap(err, "getting run id")
	}
	return s.runId, nil
}

func (s *SqliteStore) RunId() int64 {
	return s.runId
}

// Add buffers r and writes the buffer once it holds BatchSize receptions. A failed write is
// logged; the receptions stay buffered and are written again after another BatchSize
// receptions, or by Flush.
func (s *SqliteStore) Add(r Reception) {
	logger.AssertTrue(s.runId != 0, "no run created")
	s.pending = append(s.pending, r)
	if s.flushAt < s.BatchSize {
		s.flushAt = s.BatchSize
	}
	if len(s.pending) < s.flushAt {
		return
	}
	if err := s.Flush(context.Background()); err != nil {
		logger.Errorf("writing reception trace: %v", err)
		s.flushAt = len(s.pending) + s.BatchSize
	}
}

// Flush writes all buffered receptions. On failure they stay buffered for the next Flush.
func (s *SqliteStore) Flush(ctx context.Context) (err error) {
	if len(s.pending) == 0 {
		return nil
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	stmt, err := tx.PrepareContext(ctx, insertReceptionSQL)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "preparing statement")
	}
	defer closeWithError(stmt, &err)

	for _, r := range s.pending {
		if _, err = stmt.ExecContext(ctx, s.runId, int64(r.Time), r.Receiver, r.NodeId, r.Light.String(),
			int64(r.FrameId), r.SenderId, r.SenderLight.String(), r.Outcome, r.RecvPowerDbm, r.SinrMin); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "inserting reception")
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing receptions")
	}
	s.pending = s.pending[:0]
	s.flushAt = s.BatchSize
	return nil
}

// Receptions returns all receptions of run runId in time order.
func (s *SqliteStore) Receptions(ctx context.Context, runId int64) (res []Reception, err error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, selectReceptionsSQL, runId)
	if err != nil {
		return nil, errors.Wrap(err, "querying receptions")
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var (
			r           Reception
			ts, frameId int64
			light, sl   string
		)
		if err = rows.Scan(&ts, &r.Receiver, &r.NodeId, &light, &frameId, &r.SenderId, &sl, &r.Outcome,
			&r.RecvPowerDbm, &r.SinrMin); err != nil {
			return nil, errors.Wrap(err, "scanning reception")
		}
		r.Time, r.FrameId = Timestamp(ts), FrameId(frameId)
		if r.Light, err = ParseLightModule(light); err != nil {
			return nil, err
		}
		if r.SenderLight, err = ParseLightModule(sl); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// OutcomeCounts returns the number of receptions of run runId per outcome.
func (s *SqliteStore) OutcomeCounts(ctx context.Context, runId int64) (counts map[string]uint64, err error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, selectOutcomeCountsSQL, runId)
	if err != nil {
		return nil, errors.Wrap(err, "querying outcomes")
	}
	defer closeWithError(rows, &err)

	counts = map[string]uint64{}
	for rows.Next() {
		var (
			outcome string
			n       uint64
		)
		if err = rows.Scan(&outcome, &n); err != nil {
			return nil, errors.Wrap(err, "scanning outcome")
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// Close flushes pending receptions and closes the database.
func (s *SqliteStore) Close() error {
	if s.db == nil {
		return s.dbErr
	}
	err := s.Flush(context.Background())
	if cErr := s.db.Close(); cErr != nil && err == nil {
		err = cErr
	}
	return err
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// NullDbm converts a power in dBm to a nullable column value, mapping non-finite values to NULL.
func NullDbm(v float64) sql.NullFloat64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
