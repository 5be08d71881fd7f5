package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"simnet"
	"simnet/analysis"
	"simnet/eventlog"
	"simnet/fault"
	"simnet/protocol"
	"simnet/scheduler"
	"simnet/traffic"
)

var (
	flagNodes     int
	flagMaxSteps  int
	flagSeed      int64
	flagProtocol  string
	flagF         int
	flagRounds    int
	flagCountSelf bool
	flagCommittee []int
	flagMode      string
	flagInitBit   int
	flagFaultP    float64
	flagMaxFaults int
	flagEventDB   string
	flagVerbose   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print the analysis report",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().IntVarP(&flagNodes, "nodes", "n", 10, "number of processes")
	runCmd.Flags().IntVar(&flagMaxSteps, "max-steps", 0, "step ceiling, 0 for unbounded")
	runCmd.Flags().Int64Var(&flagSeed, "seed", -1, "master seed, -1 for non-reproducible runs")
	runCmd.Flags().StringVarP(&flagProtocol, "protocol", "p", "echo", "protocol: echo, pingpong, reqresp, random, committee, consensus")
	runCmd.Flags().IntVarP(&flagF, "faults-tolerated", "f", 0, "consensus: tolerated crash faults")
	runCmd.Flags().IntVarP(&flagRounds, "rounds", "R", 0, "consensus: rounds per phase")
	runCmd.Flags().BoolVar(&flagCountSelf, "count-self", true, "consensus: count own contribution toward the round threshold")
	runCmd.Flags().IntSliceVar(&flagCommittee, "committee", nil, "committee member ids")
	runCmd.Flags().StringVar(&flagMode, "traffic-mode", traffic.ModeAllToCommittee, "committee traffic mode")
	runCmd.Flags().IntVar(&flagInitBit, "init-bit", -1, "consensus: initial bit for all processes, -1 for random")
	runCmd.Flags().Float64Var(&flagFaultP, "fault-p", 0, "per-step crash probability")
	runCmd.Flags().IntVar(&flagMaxFaults, "max-faults", 0, "maximum number of injected crashes")
	runCmd.Flags().StringVar(&flagEventDB, "event-db", "", "sqlite file to persist the event log to")
	runCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log every event")
}

// runSimulation validates all flags, assembles the simulation and runs
// it. Configuration errors surface before any simulation state exists.
func runSimulation(cmd *cobra.Command, args []string) error {
	seed := flagSeed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	// Independent seeds per randomness consumer, derived from the master
	derive := rand.New(rand.NewSource(seed))
	schedSeed, protoSeed, trafficSeed, faultSeed := derive.Int63(), derive.Int63(), derive.Int63(), derive.Int63()

	proto, err := buildProtocol(protoSeed)
	if err != nil {
		return err
	}
	gen, err := buildTraffic(proto, trafficSeed)
	if err != nil {
		return err
	}

	opts := []simnet.Option{
		simnet.WithNodes(flagNodes),
		simnet.WithProtocol(proto),
		simnet.WithScheduler(scheduler.NewRandomAsync(schedSeed)),
		simnet.WithTraffic(gen),
	}

	if flagMaxFaults > 0 {
		opts = append(opts, simnet.WithFaultInjector(fault.NewProbabilistic(flagFaultP, flagMaxFaults, faultSeed)))
	}
	if flagEventDB != "" {
		rec, err := eventlog.OpenSQLite(flagEventDB)
		if err != nil {
			return err
		}
		defer rec.Close()
		opts = append(opts, simnet.WithRecorder(rec))
	}
	if flagVerbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
		opts = append(opts, simnet.WithLogger(log))
	}

	sim, err := simnet.Prepare(opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	steps := sim.Run(flagMaxSteps)
	elapsed := time.Since(start)

	report := analysis.NewReport(sim.Network(), steps)
	fmt.Printf("--- simulation finished in %v ---\n", elapsed)
	fmt.Print(report)
	printDecisions(report)
	return nil
}

func buildProtocol(seed int64) (protocol.Protocol, error) {
	switch flagProtocol {
	case "echo":
		return protocol.EchoAll{}, nil
	case "pingpong":
		return protocol.PingPong{}, nil
	case "reqresp":
		return protocol.RequestResponse{}, nil
	case "random":
		return protocol.NewRandomSingle(seed), nil
	case "committee":
		if len(flagCommittee) == 0 {
			return nil, fmt.Errorf("the committee protocol requires --committee")
		}
		return protocol.NewCommittee(flagCommittee), nil
	case "consensus":
		if flagRounds == 0 {
			return nil, fmt.Errorf("the consensus protocol requires --rounds")
		}
		return protocol.NewConsensus(flagF, flagRounds, protocol.CountSelf(flagCountSelf)), nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", flagProtocol)
	}
}

func buildTraffic(proto protocol.Protocol, seed int64) (traffic.Generator, error) {
	switch proto.(type) {
	case *protocol.Consensus:
		if flagInitBit >= 0 {
			return traffic.NewConsensusFixed(flagInitBit)
		}
		return traffic.NewConsensusRandom(seed), nil
	case *protocol.Committee:
		return traffic.NewCommittee(flagCommittee, flagMode)
	default:
		return traffic.AllToAll{}, nil
	}
}

func printDecisions(report analysis.Report) {
	if len(report.Decisions) == 0 {
		return
	}
	pids := maps.Keys(report.Decisions)
	slices.Sort(pids)
	fmt.Println("decisions:")
	for _, pid := range pids {
		fmt.Printf("  process %v decided %v\n", pid, report.Decisions[pid])
	}
}
