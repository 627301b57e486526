package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/notargets/ShenKernel/basis"
	"github.com/notargets/ShenKernel/operators"
	"github.com/notargets/ShenKernel/oracle"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	var (
		modes []int
		quads []string
	)
	cmd := &cobra.Command{
		Use:   "verify [operator...]",
		Short: "Compare closed-form operators with the quadrature projection",
		Long: `Builds every requested operator for each N and quadrature rule and
checks each band against the dense projection test^T W trial^(d). With no
arguments the config's operator list is used, or every registered operator.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = opts.cfg.Operators
			}
			if len(names) == 0 {
				names = operators.Names()
			}
			rules := make([]basis.Quadrature, 0, len(quads))
			for _, q := range quads {
				rule, err := basis.ParseQuadrature(q)
				if err != nil {
					return err
				}
				rules = append(rules, rule)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OPERATOR\tN\tQUAD\tBANDS\tRESULT")
			failed := 0
			for _, name := range names {
				for _, N := range modes {
					for _, q := range rules {
						result, bands := "ok", 0
						op, err := operators.New(name, N, q)
						if err == nil {
							bands = op.NumBands()
							err = op.Verify()
						}
						switch {
						case errors.Is(err, operators.ErrTooFewModes):
							result = "skipped"
						case err != nil:
							result = "FAIL: " + err.Error()
							failed++
							opts.logger.Error("verification failed",
								zap.String("operator", name), zap.Int("N", N),
								zap.Stringer("quadrature", q), zap.Error(err))
						default:
							opts.logger.Debug("verified",
								zap.String("operator", name), zap.Int("N", N),
								zap.Stringer("quadrature", q))
						}
						fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", name, N, q, bands, result)
					}
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d operator checks failed: %w", failed, oracle.ErrOracleMismatch)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&modes, "modes", []int{8, 16, 33, 64}, "numbers of Chebyshev modes")
	cmd.Flags().StringSliceVar(&quads, "quad", []string{"GC", "GL"}, "quadrature rules")
	return cmd
}
