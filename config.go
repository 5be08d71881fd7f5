package simnet

import (
	"go.uber.org/zap"

	"simnet/eventlog"
	"simnet/fault"
	"simnet/protocol"
	"simnet/scheduler"
	"simnet/traffic"
)

// An Option configures a simulation assembled by Prepare.
type Option interface {
	simOpt()
}

type nodesOption struct{ n int }

func (nodesOption) simOpt() {}

// WithNodes sets the number of processes. Required, must be at least 1.
func WithNodes(n int) Option { return nodesOption{n: n} }

type protocolOption struct{ proto protocol.Protocol }

func (protocolOption) simOpt() {}

// WithProtocol sets the behavior strategy bound to every process.
// Required.
func WithProtocol(proto protocol.Protocol) Option { return protocolOption{proto: proto} }

type schedulerOption struct{ sch scheduler.Scheduler }

func (schedulerOption) simOpt() {}

// WithScheduler sets the scheduler. Defaults to an unseeded RandomAsync
// scheduler (non-reproducible runs).
func WithScheduler(sch scheduler.Scheduler) Option { return schedulerOption{sch: sch} }

type trafficOption struct{ gen traffic.Generator }

func (trafficOption) simOpt() {}

// WithTraffic sets the initial-traffic generator. Defaults to AllToAll.
func WithTraffic(gen traffic.Generator) Option { return trafficOption{gen: gen} }

type faultInjectorOption struct{ injector fault.Injector }

func (faultInjectorOption) simOpt() {}

// WithFaultInjector enables fault injection. Default: no faults.
func WithFaultInjector(injector fault.Injector) Option {
	return faultInjectorOption{injector: injector}
}

type recorderOption struct{ rec eventlog.Recorder }

func (recorderOption) simOpt() {}

// WithRecorder sets the event recorder. Default: events are discarded.
func WithRecorder(rec eventlog.Recorder) Option { return recorderOption{rec: rec} }

type loggerOption struct{ log *zap.Logger }

func (loggerOption) simOpt() {}

// WithLogger sets the logger used by the network and simulator.
// Default: logging disabled.
func WithLogger(log *zap.Logger) Option { return loggerOption{log: log} }

type statsIntervalOption struct{ interval int }

func (statsIntervalOption) simOpt() {}

// WithStatsInterval emits a STEP_STATS event every interval steps.
// Default: disabled.
func WithStatsInterval(interval int) Option { return statsIntervalOption{interval: interval} }
