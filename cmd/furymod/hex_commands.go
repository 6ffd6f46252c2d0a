package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"furymod/internal/fileutil"
	"furymod/internal/hexpatch"
	"furymod/internal/services"
)

func newHexCommand() *cobra.Command {
	hexCmd := &cobra.Command{
		Use:         "hex",
		Short:       "Check or apply hex edit definitions against an executable",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	hexCmd.AddCommand(newHexCheckCommand())
	hexCmd.AddCommand(newHexApplyCommand())
	return hexCmd
}

type hexFlags struct {
	requireExpected bool
}

func (f *hexFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.requireExpected, "require-expected", false, "Skip edits that do not declare expected bytes")
}

func loadHexSet(out io.Writer, folders []string) (hexpatch.Set, services.Diagnostics) {
	set, diags := hexpatch.LoadSet(folders)
	fmt.Fprintf(out, "Loaded %d edits from %d folders\n", len(set), len(folders))
	return set, diags
}

func printHexResult(out io.Writer, res hexpatch.Result, parseDiags services.Diagnostics) {
	all := append(services.Diagnostics{}, parseDiags...)
	all = append(all, res.Diagnostics...)
	fmt.Fprintf(out, "Applied %d edits, skipped %d\n", res.Applied, len(all))
	for _, o := range res.Overlaps {
		fmt.Fprintf(out, "Overlap: %s\n", o.String())
	}
	if len(all) > 0 {
		fmt.Fprintln(out, renderDiagnostics(all))
	}
}

func newHexCheckCommand() *cobra.Command {
	var flags hexFlags
	cmd := &cobra.Command{
		Use:   "check <exe> <hex-folder>...",
		Short: "Apply edits to an in-memory copy and report what would happen",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			image, err := os.ReadFile(args[0])
			if err != nil {
				return services.Wrap(services.ErrIO, "hex", "read image", args[0], err)
			}
			set, diags := loadHexSet(out, args[1:])
			res := hexpatch.Options{RequireExpected: flags.requireExpected}.Apply(image, set)
			printHexResult(out, res, diags)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newHexApplyCommand() *cobra.Command {
	var flags hexFlags
	var output string
	cmd := &cobra.Command{
		Use:   "apply <exe> <hex-folder>...",
		Short: "Apply edits to an executable in place or to a copy",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			target := args[0]
			if output != "" {
				if _, err := fileutil.CopyFileVerified(args[0], output); err != nil {
					return services.Wrap(services.ErrIO, "hex", "copy image", output, err)
				}
				target = output
			}
			set, diags := loadHexSet(out, args[1:])
			res, err := hexpatch.Options{RequireExpected: flags.requireExpected}.ApplyFile(target, set)
			if err != nil {
				return err
			}
			printHexResult(out, res, diags)
			if res.Applied > 0 {
				sum, err := fileutil.DigestFile(target)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s (%s)\n", target, sum)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Patch a copy written here instead of the input")
	return cmd
}
