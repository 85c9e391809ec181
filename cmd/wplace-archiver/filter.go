package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/applyengine"
	"github.com/bczhc/wplace-archiver/internal/fetch"
)

func newFilterCmd() *cobra.Command {
	var rangeArg string

	cmd := &cobra.Command{
		Use:   "filter BASE OUTPUT -r x0,x1,y0,y1",
		Short: "Copy a rectangular subset of chunks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x0, x1, y0, y1, err := parseTilesRange(rangeArg)
			if err != nil {
				return err
			}

			baseFetcher, err := fetch.Open(args[0])
			if err != nil {
				return err
			}
			defer baseFetcher.Close()

			copied := 0
			for _, c := range baseFetcher.Chunks() {
				if c.X < x0 || c.X > x1 || c.Y < y0 || c.Y > y1 {
					continue
				}
				raw, err := baseFetcher.FetchRaw(c)
				if err != nil {
					return err
				}
				dst := args[1] + "/" + strconv.Itoa(int(c.X)) + "/" + strconv.Itoa(int(c.Y)) + ".png"
				err = applyengine.CopyRaw(dst, raw)
				raw.Close()
				if err != nil {
					return err
				}
				copied++
			}
			log.Info().Int("chunks", copied).Msg("filter complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&rangeArg, "tiles-range", "r", "", "x0,x1,y0,y1 inclusive tile range")
	return cmd
}

func parseTilesRange(s string) (x0, x1, y0, y1 uint16, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, errors.Errorf("tiles range must be x0,x1,y0,y1, got %q", s)
	}
	vals := make([]uint16, 4)
	for i, p := range parts {
		v, convErr := strconv.ParseUint(strings.TrimSpace(p), 10, 16)
		if convErr != nil {
			return 0, 0, 0, 0, errors.Wrapf(convErr, "bad tiles range component %q", p)
		}
		vals[i] = uint16(v)
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}
