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

package dispatcher

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/obstacle"
	"github.com/otns/vlcns/phy"
	. "github.com/otns/vlcns/types"
)

// NodeConfig describes a vehicle: its initial pose and body dimensions in meters.
type NodeConfig struct {
	Id     NodeId
	Pose   Pose
	Length float64
	Width  float64
	Height float64
}

func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Id:     InvalidNodeId,
		Length: 4.5,
		Width:  1.8,
		Height: 1.5,
	}
}

// Node is a vehicle with up to two VLC PHYs, one per light module.
type Node struct {
	D          *Dispatcher
	Id         NodeId
	Pose       Pose
	Length     float64
	Width      float64
	Height     float64
	CreateTime Timestamp

	gen  uint64
	phys map[LightModule]*phy.Phy
}

func newNode(d *Dispatcher, cfg *NodeConfig) *Node {
	logger.AssertTrue(cfg.Length >= 0 && cfg.Width >= 0 && cfg.Height >= 0)

	return &Node{
		D:          d,
		Id:         cfg.Id,
		Pose:       cfg.Pose,
		Length:     cfg.Length,
		Width:      cfg.Width,
		Height:     cfg.Height,
		CreateTime: d.curTime,
		gen:        d.nextNodeGen,
		phys:       map[LightModule]*phy.Phy{},
	}
}

// AttachPhy mounts p on the node at the light module p serves.
func (node *Node) AttachPhy(p *phy.Phy) error {
	if p.NodeId != node.Id {
		return errors.Errorf("PHY %s does not belong to node %d", p.Name(), node.Id)
	}
	if _, ok := node.phys[p.Direction()]; ok {
		return errors.Errorf("node %d already has a %s PHY", node.Id, p.Direction())
	}
	node.phys[p.Direction()] = p
	p.Tracker().SetStartTime(node.D.curTime)
	if lv, ok := node.D.watchingNodes[node.Id]; ok {
		p.Logger().SetDisplayLevel(lv)
	}
	return nil
}

// Phy returns the node's PHY for the single light module lm, or nil.
func (node *Node) Phy(lm LightModule) *phy.Phy {
	return node.phys[lm]
}

// Phys returns the node's PHYs, head first.
func (node *Node) Phys() []*phy.Phy {
	res := make([]*phy.Phy, 0, len(node.phys))
	for _, p := range node.phys {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Direction() < res[j].Direction() })
	return res
}

func (node *Node) vehicle() obstacle.Vehicle {
	return obstacle.Vehicle{
		Id:     node.Id,
		Pose:   node.Pose,
		Length: node.Length,
		Width:  node.Width,
		Height: node.Height,
	}
}
