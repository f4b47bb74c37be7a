package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DanielPopoola/payment-intake/internal/application/services"
	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest"
	"github.com/spf13/cobra"
)

var errCardInvalid = errors.New("card is not valid")

func validateCmd(cards *services.CardService) *cobra.Command {
	var (
		card   domain.CardInput
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a card and report its expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := cards.Validate(card)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rest.ToCardValidationResponse(result)); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "valid:   %t\n", result.Valid)
				fmt.Fprintf(out, "type:    %s\n", result.Type)
				fmt.Fprintf(out, "number:  %s\n", result.MaskedNumber)
				fmt.Fprintf(out, "message: %s\n", result.Message)
				if result.Valid || result.Expired {
					fmt.Fprintf(out, "expiry:  %d days\n", result.DaysUntilExpiry)
				}
			}

			if !result.Valid {
				return errCardInvalid
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&card.Number, "number", "n", "", "Card number")
	cmd.Flags().StringVarP(&card.ExpiryMonth, "month", "m", "", "Expiry month (MM)")
	cmd.Flags().StringVarP(&card.ExpiryYear, "year", "y", "", "Expiry year (YYYY)")
	cmd.Flags().StringVar(&card.CVV, "cvv", "", "Card verification value")
	cmd.Flags().StringVar(&card.HolderName, "holder", "", "Card holder name")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}

func classifyCmd(cards *services.CardService) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [number...]",
		Short: "Print the network of each card number",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, number := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", domain.MaskCardNumber(number), cards.Classify(number))
			}
			return nil
		},
	}
}
