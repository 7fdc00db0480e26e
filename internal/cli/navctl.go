// Package cli implements navctl, the offline NAV calculator.
package cli

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"RenewraOracle/internal/logger"
	"RenewraOracle/internal/nav"
	"RenewraOracle/internal/notifier"
	"RenewraOracle/internal/portfolio"
)

type options struct {
	projects string
	verbose  bool
	simulate int
	seed     int64
}

// NewRootCmd builds the navctl command.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "navctl",
		Short: "Compute the Renewra fund NAV from a portfolio document",
		Long: `Load a portfolio document, optionally simulate N months of project
cash flows, then print the NAV per token and the total monthly yield.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.simulate < 0 {
				return fmt.Errorf("--simulate must not be negative")
			}
			return run(cmd.OutOrStdout(), opts, cmd.Flags().Changed("seed"))
		},
	}

	cmd.Flags().StringVar(&opts.projects, "projects", "data/projects.json", "Path or URL of the projects JSON document")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show detailed NAV breakdown")
	cmd.Flags().IntVarP(&opts.simulate, "simulate", "s", 0, "Run monthly simulation for N months before computing NAV")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Random seed for reproducible simulations")
	return cmd
}

// Execute runs navctl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func run(out io.Writer, opts *options, seeded bool) error {
	level := "warn"
	if opts.verbose {
		level = "info"
	}
	if err := logger.Init(logger.Options{Level: level}); err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if seeded {
		seed = opts.seed
		fmt.Fprintf(out, "Using random seed: %d\n", seed)
	}

	store, err := portfolio.Open(portfolio.NewSource(opts.projects, "", ""))
	if err != nil {
		return err
	}
	engine := nav.NewEngine(store, nav.StandardDefaults(), rand.New(rand.NewSource(seed)))

	if opts.simulate > 0 {
		fmt.Fprintf(out, "\n--- Running %d Month Simulation ---\n", opts.simulate)
		for month, s := range engine.SimulateMonths(opts.simulate) {
			fmt.Fprintf(out, "Month %d: Total yield = %s\n", month+1, notifier.USD(s.TotalMonthlyYield))
			if opts.verbose {
				for _, r := range s.Results {
					fmt.Fprintf(out, "  %s: %s -> %s (weather: %.2f%%)\n",
						r.ID, notifier.USD(r.OldCashFlow), notifier.USD(r.NewCashFlow), r.WeatherVariance*100)
				}
			}
		}
		fmt.Fprintln(out)
	}

	r := engine.Evaluate()
	if r.Err != nil {
		return r.Err
	}
	fmt.Fprintf(out, "NAV: %s (%d cents)\n", notifier.Cents(r.NavCents), r.NavCents)
	fmt.Fprintf(out, "Timestamp: %d\n", r.Timestamp)
	fmt.Fprintf(out, "Total Monthly Yield: %s\n", notifier.USD(r.MonthlyYield))

	if opts.verbose {
		b := r.Breakdown
		fmt.Fprintln(out, "\n--- NAV Breakdown ---")
		fmt.Fprintf(out, "Project Valuations: %s\n", notifier.USD(b.SumProjectValuations))
		fmt.Fprintf(out, "Cash on Hand: %s\n", notifier.USD(b.CashOnHand))
		fmt.Fprintf(out, "Total Debt: %s\n", notifier.USD(b.TotalDebt))
		fmt.Fprintf(out, "Pending CapEx: %s\n", notifier.USD(b.PendingCapex))
		fmt.Fprintf(out, "Net Asset Value: %s\n", notifier.USD(b.NetAssetValue))
		fmt.Fprintf(out, "Token Supply: %d\n", b.TokenSupply)
		fmt.Fprintf(out, "Operational Projects: %d/%d\n", b.OperationalProjects, b.TotalProjects)
	}
	return nil
}
