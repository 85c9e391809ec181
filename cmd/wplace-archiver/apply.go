package main

import (
	"context"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/applyengine"
	"github.com/bczhc/wplace-archiver/internal/diffformat"
	"github.com/bczhc/wplace-archiver/internal/fetch"
)

func newApplyCmd() *cobra.Command {
	var output string
	var dryRun bool
	var noChecksum bool

	cmd := &cobra.Command{
		Use:   "apply INITIAL DIFF...",
		Short: "Apply one or more diffs sequentially onto INITIAL",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := args[0]
			diffs := args[1:]

			if dryRun {
				output = ""
			} else if output == "" {
				return errRequiredFlag("--output")
			}

			currentBase := base
			for i, diffPath := range diffs {
				f, err := os.Open(diffPath)
				if err != nil {
					return err
				}
				dr, err := diffformat.Open(f)
				if err != nil {
					f.Close()
					return err
				}

				baseFetcher, err := fetch.Open(currentBase)
				if err != nil {
					f.Close()
					return err
				}

				stepOut := output
				if dryRun {
					stepOut, err = os.MkdirTemp("", "wplace-apply-dry-*")
					if err != nil {
						f.Close()
						baseFetcher.Close()
						return err
					}
					defer os.RemoveAll(stepOut)
				} else if i < len(diffs)-1 {
					stepOut, err = os.MkdirTemp("", "wplace-apply-step-*")
					if err != nil {
						f.Close()
						baseFetcher.Close()
						return err
					}
					defer os.RemoveAll(stepOut)
				}

				log.Info().Str("diff", diffPath).Int("step", i+1).Int("total", len(diffs)).Msg("applying")
				err = applyengine.Apply(context.Background(), baseFetcher, dr, stepOut, applyengine.Options{
					Workers:    runtime.NumCPU(),
					NoChecksum: noChecksum,
				})
				f.Close()
				baseFetcher.Close()
				if err != nil {
					return err
				}
				currentBase = stepOut
			}

			log.Info().Msg("apply complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "output snapshot directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate without writing the final snapshot")
	cmd.Flags().BoolVar(&noChecksum, "no-checksum", false, "skip post-apply checksum verification")
	return cmd
}
