package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"frontoffice/internal/config"
	"frontoffice/internal/domain"
	"frontoffice/internal/service"
	"frontoffice/internal/store/memory"
)

// quoteCmd prints the bill for a set of charges without touching any stay.
func quoteCmd() *cobra.Command {
	var (
		branchID    string
		charges     []string
		extraNights int
		rate        string
		paid        string
	)

	cmd := &cobra.Command{
		Use:     "quote",
		Short:   "Compute a bill offline and print it as JSON",
		Example: "  frontoffice quote --branch anna-salai --charge 7500 --charge 750 --extra-nights 1 --rate 2500 --paid 5000",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildQuoteRequest(branchID, charges, extraNights, rate, paid)
			if err != nil {
				return err
			}

			policy, err := loadPolicy(config.Load())
			if err != nil {
				return err
			}
			svc := service.New(memory.New(), policy, branchID)

			resp, err := svc.Quote(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeQuote(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&branchID, "branch", "anna-salai", "branch id")
	cmd.Flags().StringArrayVar(&charges, "charge", nil, "charge amount, repeatable")
	cmd.Flags().IntVar(&extraNights, "extra-nights", 0, "extra nights beyond the booking")
	cmd.Flags().StringVar(&rate, "rate", "0", "nightly rate for extra nights")
	cmd.Flags().StringVar(&paid, "paid", "0", "amount already paid")
	return cmd
}

func buildQuoteRequest(branchID string, charges []string, extraNights int, rate string, paid string) (domain.QuoteRequest, error) {
	req := domain.QuoteRequest{BranchID: branchID, ExtraNights: extraNights}
	for i, raw := range charges {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.QuoteRequest{}, fmt.Errorf("charge %d: %w", i+1, err)
		}
		req.Charges = append(req.Charges, domain.Charge{Description: fmt.Sprintf("charge %d", i+1), Amount: amount})
	}

	var err error
	if req.NightlyRate, err = decimal.NewFromString(rate); err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("rate: %w", err)
	}
	if req.AmountPaid, err = decimal.NewFromString(paid); err != nil {
		return domain.QuoteRequest{}, fmt.Errorf("paid: %w", err)
	}
	return req, nil
}

func writeQuote(w io.Writer, resp domain.QuoteResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
