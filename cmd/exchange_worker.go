package cmd

import (
	"github.com/krobus00/order-intake-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// exchangeWorkerCmd represents the exchangeWorker command
var exchangeWorkerCmd = &cobra.Command{
	Use:   "exchange-worker",
	Short: "Start the Exchange Worker",
	Long: `The Exchange Worker drains buy jobs from the exchange work queue and
executes them against the exchange, outside the intake request and its
transaction. Executed jobs are recorded in the execution state store.`,
	Run: bootstrap.StartExchangeWorker,
}

func init() {
	rootCmd.AddCommand(exchangeWorkerCmd)
}
