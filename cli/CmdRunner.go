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

package cli

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/otns/vlcns/logger"
	"github.com/otns/vlcns/progctx"
	"github.com/otns/vlcns/simulation"
	. "github.com/otns/vlcns/types"
)

const (
	Prompt = "> "
)

const helpText = `counters                           dispatcher event and frame counters
del <node> [<node> ...]            remove vehicles
exit                               leave the console
go <time>[h|m|s|ms|us|ns] | end    advance the simulation, or run it to the scenario end
help                               this text
log [<level>]                      show or set the log level
move <node> <x> <y> [heading <deg>] place a vehicle; heading in TraCI degrees
nodes                              list vehicles
time                               current simulation time in ns
unwatch all | <node> [<node> ...]  stop watching receivers
watch [all | <node> ...] [<level>] list watched nodes or watch receivers at a level
`

type CommandContext struct {
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

// CmdRunner executes console commands on a simulation. It implements CliHandler.
type CmdRunner struct {
	sim *simulation.Simulation
	ctx *progctx.ProgCtx
}

func NewCmdRunner(ctx *progctx.ProgCtx, sim *simulation.Simulation) *CmdRunner {
	return &CmdRunner{
		ctx: ctx,
		sim: sim,
	}
}

// HandleCommand runs one command line, writing its result to output. It returns an error once the
// program context is done, which ends the console.
func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}
		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

func (rt *CmdRunner) GetPrompt() string {
	return Prompt
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else if cmd.Exit == nil {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Move != nil {
		rt.executeMoveNode(cc, cmd.Move)
	} else if cmd.Go != nil {
		rt.executeGo(cc, cmd.Go)
	} else if cmd.Nodes != nil {
		rt.executeLsNodes(cc)
	} else if cmd.Del != nil {
		rt.executeDelNode(cc, cmd.Del)
	} else if cmd.Counters != nil {
		rt.executeCounters(cc)
	} else if cmd.Exit != nil {
		rt.executeExit(cc)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Watch != nil {
		rt.executeWatch(cc, cmd.Watch)
	} else if cmd.Unwatch != nil {
		rt.executeUnwatch(cc, cmd.Unwatch)
	} else if cmd.Time != nil {
		rt.executeTime(cc)
	} else if cmd.Help != nil {
		cc.outputf("%s", helpText)
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

func (rt *CmdRunner) executeGo(cc *CommandContext, cmd *GoCmd) {
	if cmd.End != nil {
		rt.sim.Run()
		return
	}
	dur, err := time.ParseDuration(cmd.Time)
	if err != nil {
		dur, err = time.ParseDuration(cmd.Time + "s") // try parsing as seconds
		if err != nil {
			cc.errorf("could not parse time duration: %s", cmd.Time)
			return
		}
	}
	if dur <= 0 {
		cc.errorf("time duration must be positive: %s", cmd.Time)
		return
	}
	rt.sim.Go(Timestamp(dur.Nanoseconds()))
}

func (rt *CmdRunner) executeDelNode(cc *CommandContext, cmd *DelCmd) {
	for _, sel := range cmd.Nodes {
		if rt.sim.Dispatcher().GetNode(sel.Id) == nil {
			cc.outputf("Warn: node %d not found, skipping\n", sel.Id)
			continue
		}
		if err := rt.sim.DeleteNode(sel.Id); err != nil {
			cc.errorf("node %d, %+v", sel.Id, err)
		}
	}
}

func (rt *CmdRunner) executeExit(cc *CommandContext) {
	cc.outputf("exit\n")
	rt.ctx.Cancel(nil)
}

func (rt *CmdRunner) executeMoveNode(cc *CommandContext, cmd *MoveCmd) {
	x, err := strconv.ParseFloat(cmd.X, 64)
	if err != nil {
		cc.error(err)
		return
	}
	y, err := strconv.ParseFloat(cmd.Y, 64)
	if err != nil {
		cc.error(err)
		return
	}
	var heading *float64
	if cmd.Heading != nil {
		h, err := strconv.ParseFloat(*cmd.Heading, 64)
		if err != nil {
			cc.error(err)
			return
		}
		heading = &h
	}
	cc.error(rt.sim.MoveNode(cmd.Target.Id, x, y, heading))
}

func (rt *CmdRunner) executeLsNodes(cc *CommandContext) {
	d := rt.sim.Dispatcher()
	for _, nodeid := range rt.sim.GetNodes() {
		dnode := d.GetNode(nodeid)
		var lights []string
		for _, p := range dnode.Phys() {
			lights = append(lights, p.Direction().String())
		}
		var line strings.Builder
		line.WriteString(fmt.Sprintf("id=%d\tx=%s\ty=%s\theading=%s", nodeid,
			humanize.FtoaWithDigits(dnode.Pose.Pos.X, 2), humanize.FtoaWithDigits(dnode.Pose.Pos.Y, 2),
			humanize.FtoaWithDigits(CartesianToTraci(dnode.Pose.Heading), 1)))
		line.WriteString(fmt.Sprintf("\tlights=%s\tcreated=%ss", strings.Join(lights, ","),
			humanize.FtoaWithDigits(TimestampToSeconds(dnode.CreateTime), 3)))
		if app := rt.sim.App(nodeid); app != nil && app.Enabled() {
			line.WriteString(fmt.Sprintf("\tsent=%d", app.Sent))
		}
		cc.outputf("%s\n", line.String())
	}
}

func (rt *CmdRunner) executeCounters(cc *CommandContext) {
	d := rt.sim.Dispatcher()
	countersVal := reflect.ValueOf(d.Counters)
	countersTyp := reflect.TypeOf(d.Counters)
	for i := 0; i < countersVal.NumField(); i++ {
		fname := countersTyp.Field(i).Name
		fval := countersVal.Field(i)
		cc.outputf("%-40s %v\n", fname, fval.Uint())
	}
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", logger.GetLevelString(logger.GetLevel()))
		return
	}
	lv, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	logger.SetLevel(lv)
}

func (rt *CmdRunner) executeWatch(cc *CommandContext, cmd *WatchCmd) {
	d := rt.sim.Dispatcher()
	if len(cmd.Nodes) == 0 && len(cmd.All) == 0 && len(cmd.Level) == 0 {
		// variant: 'watch'
		watchedList := strings.Trim(fmt.Sprintf("%v", d.GetWatchingNodes()), "[]")
		cc.outputf("%v\n", watchedList)
		return
	}

	level := d.WatchLevel()
	if len(cmd.Level) > 0 {
		lv, err := logger.ParseLevelString(cmd.Level)
		if err != nil {
			cc.error(err)
			return
		}
		level = lv
	}

	nodesToWatch := cmd.Nodes
	if len(cmd.All) > 0 {
		if len(cmd.Nodes) > 0 {
			cc.errorf("watch: unsupported combination of command options")
			return
		}
		for _, nodeid := range rt.sim.GetNodes() {
			nodesToWatch = append(nodesToWatch, NodeSelector{Id: nodeid})
		}
	} else if len(cmd.Nodes) == 0 {
		// variant: 'watch <level>' applies to the nodes already watched
		for _, nodeid := range d.GetWatchingNodes() {
			nodesToWatch = append(nodesToWatch, NodeSelector{Id: nodeid})
		}
	}

	for _, sel := range nodesToWatch {
		if d.GetNode(sel.Id) == nil {
			cc.errorf("node %d not found", sel.Id)
			continue
		}
		d.WatchNode(sel.Id, level)
	}
}

func (rt *CmdRunner) executeUnwatch(cc *CommandContext, cmd *UnwatchCmd) {
	d := rt.sim.Dispatcher()
	// if no node-number(s) given, unwatch all.
	if len(cmd.Nodes) == 0 {
		for _, n := range d.GetWatchingNodes() {
			d.UnwatchNode(n)
		}
		return
	}
	for _, sel := range cmd.Nodes {
		if d.GetNode(sel.Id) == nil {
			cc.outputf("Warn: node %d not found, skipping\n", sel.Id)
			continue
		}
		d.UnwatchNode(sel.Id)
	}
}

func (rt *CmdRunner) executeTime(cc *CommandContext) {
	cc.outputf("%d\n", rt.sim.Dispatcher().CurTime())
}
