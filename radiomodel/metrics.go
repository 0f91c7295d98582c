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

package radiomodel

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	. "github.com/otns/vlcns/types"
)

// Metrics bundles the Prometheus metrics of all receivers of a simulation.
type Metrics struct {
	Frames        *prometheus.CounterVec
	BusySeconds   *prometheus.CounterVec
	RecvPowerDbm  *prometheus.HistogramVec
	SyncedSignals *prometheus.CounterVec
}

// NewMetrics registers the receiver metrics against reg, defaulting to the global Prometheus
// registry when nil. Metrics already registered with reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	frames, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vlcns_frames_total",
		Help: "Frames finished at a receiver, labeled by receiver and outcome.",
	}, []string{"receiver", "outcome"}), "vlcns_frames_total")
	if err != nil {
		return nil, err
	}
	busy, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vlcns_busy_seconds_total",
		Help: "Simulated time during which frames above sensitivity were on the air at a receiver.",
	}, []string{"receiver"}), "vlcns_busy_seconds_total")
	if err != nil {
		return nil, err
	}
	power, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vlcns_received_power_dbm",
		Help:    "Received power of frames above sensitivity at frame start.",
		Buckets: prometheus.LinearBuckets(-100, 10, 11),
	}, []string{"receiver"}), "vlcns_received_power_dbm")
	if err != nil {
		return nil, err
	}
	synced, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vlcns_synced_frames_total",
		Help: "Frames a receiver synchronized to and attempted to decode.",
	}, []string{"receiver"}), "vlcns_synced_frames_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Frames:        frames,
		BusySeconds:   busy,
		RecvPowerDbm:  power,
		SyncedSignals: synced,
	}, nil
}

// ForReceiver returns a StatsSink recording into m under the receiver label name.
func (m *Metrics) ForReceiver(name string) StatsSink {
	return &receiverMetrics{m: m, name: name}
}

type receiverMetrics struct {
	m    *Metrics
	name string
}

func (rm *receiverMetrics) OnSignalStart(recvPowerDbm DbValue, underSensitivity bool, duration Timestamp) {
	if underSensitivity {
		return
	}
	rm.m.BusySeconds.WithLabelValues(rm.name).Add(TimestampToSeconds(duration))
	rm.m.RecvPowerDbm.WithLabelValues(rm.name).Observe(recvPowerDbm)
}

func (rm *receiverMetrics) OnSignalEnd(result *DeciderResult, underSensitivity bool, synced bool) {
	outcome := result.Outcome.String()
	if underSensitivity {
		outcome = "under_sensitivity"
	}
	rm.m.Frames.WithLabelValues(rm.name, outcome).Inc()
	if synced {
		rm.m.SyncedSignals.WithLabelValues(rm.name).Inc()
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, errors.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
