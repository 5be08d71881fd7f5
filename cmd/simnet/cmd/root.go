package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simnet",
	Short: "Deterministic discrete-event simulator for message-passing networks",
	Long: `simnet simulates n processes exchanging messages over an asynchronous
network with reliable delivery, one delivery per tick, under pluggable
protocols, schedulers and crash-fault injection.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
