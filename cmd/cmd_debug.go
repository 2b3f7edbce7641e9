// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hersafety/locreport/spatial"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var errBadPoint = errors.New("invalid coordinates")

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugPointOpts struct {
	Resolution int
}

var debugPointCmd = &cobra.Command{
	Use:   "point [<lat> <lng> [<lat> <lng>]]",
	Short: "Inspect coordinates the way the report page reads them",
	Long: `Prints how a lat/lng pair is displayed and the H3 cells containing it. With
two pairs it also prints the distance between them. Without arguments it reads
one "lat,lng" pair per line from stdin.

$ locreport debug point 18.52 73.85
18.5200000000000, 73.8500000000000	valid
  res  0	8060fffffffffff
  …
`,
	Args: func(_ *cobra.Command, args []string) error {
		switch len(args) {
		case 0, 2, 4:
			return nil
		default:
			return fmt.Errorf("want 0, 2 or 4 coordinates, got %d", len(args))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			return describeLines(cmd.InOrStdin(), out, cmd.ErrOrStderr())
		}

		p, ok := spatial.ParsePoint(args[0], args[1])
		if !ok {
			return fmt.Errorf("%w: %s %s", errBadPoint, args[0], args[1])
		}

		if err := describePoint(out, p); err != nil {
			return err
		}

		if len(args) == 4 {
			q, ok := spatial.ParsePoint(args[2], args[3])
			if !ok {
				return fmt.Errorf("%w: %s %s", errBadPoint, args[2], args[3])
			}

			if err := describePoint(out, q); err != nil {
				return err
			}

			fmt.Fprintf(out, "distance\t%.1f m\n", p.HaversineDistance(q))
		}

		return nil
	},
}

func describePoint(w io.Writer, p *spatial.Point) error {
	status := "valid"
	if !p.Valid() {
		status = "out of range"
	}

	fmt.Fprintf(w, "%s\t%s\n", p.Format(), status)

	if !p.Valid() {
		return nil
	}

	cells, err := p.Cells(debugPointOpts.Resolution)
	if err != nil {
		return err
	}

	for _, c := range cells {
		fmt.Fprintf(w, "  res %2d\t%s\n", c.Resolution, c.Index)
	}

	return nil
}

func describeLines(in io.Reader, out, errOut io.Writer) error {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(errOut, "Enter one lat,lng pair per line…")
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		if len(fields) != 2 {
			fmt.Fprintf(out, "%s\t%q\n", line, errBadPoint)

			continue
		}

		p, ok := spatial.ParsePoint(fields[0], fields[1])
		if !ok {
			fmt.Fprintf(out, "%s\t%q\n", line, errBadPoint)

			continue
		}

		if err := describePoint(out, p); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugPointCmd)

	debugPointCmd.Flags().IntVarP(&debugPointOpts.Resolution, "resolution", "r", 9,
		fmt.Sprintf("finest H3 resolution to print (0-%d)", spatial.MaxCellResolution))
}
