package cmd

import (
	"github.com/krobus00/order-intake-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// orderIntakeCmd represents the orderIntakeGateway command
var orderIntakeCmd = &cobra.Command{
	Use:   "order-intake-gateway",
	Short: "Start the Order Intake Gateway service",
	Long: `The Order Intake Gateway exposes the HTTP surface for placing purchase
orders and managing customers. It runs the admission engine: balance
debit, threshold routing and pending-order batching, all inside one
database transaction, and publishes exchange buy jobs to the work queue.`,
	Run: bootstrap.StartOrderIntakeGateway,
}

func init() {
	rootCmd.AddCommand(orderIntakeCmd)
}
