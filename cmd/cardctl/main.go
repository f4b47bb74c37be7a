// Command cardctl validates and classifies card numbers offline.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application/services"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd(services.NewCardService(time.Now)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cards *services.CardService) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cardctl",
		Short:         "Validate and classify payment cards",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(validateCmd(cards))
	rootCmd.AddCommand(classifyCmd(cards))

	return rootCmd
}
