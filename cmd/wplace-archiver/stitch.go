package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/restore"
	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

var stitchChunkDirRe = regexp.MustCompile(`^(\d+)-(\d+)$`)

// stitch walks a restore output tree laid out as "<x>-<y>/<snapshot>.png"
// (the layout restore.Restore's per-step PNG writer produces) and, for
// each distinct snapshot filename found across chunk directories, stitches
// the chunks into one wide canvas PNG under "<dir>/stitched/".
//
// Grounded on _examples/original_source/src/bin/stitch.rs: collect
// "<x>-<y>" chunk directories, collect the union of per-chunk filenames,
// then for each filename build a Canvas over every chunk directory.
func newStitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stitch DIR",
		Short: "Stitch a retrieved chunk tree into combined canvas PNGs, one per snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			outDir := filepath.Join(dir, "stitched")
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return wrapIOErr(err)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				return wrapIOErr(err)
			}

			var chunks []wplace.ChunkNumber
			names := make(map[string]bool)
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				m := stitchChunkDirRe.FindStringSubmatch(e.Name())
				if m == nil {
					continue
				}
				x, _ := strconv.ParseUint(m[1], 10, 16)
				y, _ := strconv.ParseUint(m[2], 10, 16)
				chunks = append(chunks, wplace.ChunkNumber{X: uint16(x), Y: uint16(y)})

				files, err := os.ReadDir(filepath.Join(dir, e.Name()))
				if err != nil {
					return wrapIOErr(err)
				}
				for _, f := range files {
					if !f.IsDir() {
						names[f.Name()] = true
					}
				}
			}

			for name := range names {
				canvas := restore.NewCanvas(chunks)
				buf := make([]byte, wplace.ChunkLength)
				for _, c := range chunks {
					path := filepath.Join(dir, strconv.Itoa(int(c.X))+"-"+strconv.Itoa(int(c.Y)), name)
					for i := range buf {
						buf[i] = 0
					}
					if _, err := os.Stat(path); err == nil {
						if err := palette.DecodeChunkFile(path, buf); err != nil {
							return err
						}
					}
					canvas.Copy(c, buf)
				}
				if err := canvas.Save(filepath.Join(outDir, name)); err != nil {
					return err
				}
				log.Info().Str("snapshot", name).Msg("stitched")
			}

			return nil
		},
	}
}

func wrapIOErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(wplaceerr.ErrIO, err.Error())
}
