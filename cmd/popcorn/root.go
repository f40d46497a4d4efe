package main

import (
	"cmp"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wnxd/popcorn"
	"github.com/wnxd/popcorn/emulator"
	_ "github.com/wnxd/popcorn/emulator/memory"
	_ "github.com/wnxd/popcorn/emulator/unicorn"
	"github.com/wnxd/popcorn/loader"
)

var (
	backend string
)

var rootCmd = &cobra.Command{
	Use:          "popcorn <binary>",
	Short:        "Load a binary into an emulator address space and print its mappings",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		emu, err := loader.Load(args[0], loader.WithBackend(backend))
		if err != nil {
			return err
		}
		defer emu.Close()
		return printMappings(cmd.OutOrStdout(), emu)
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the recognised binary formats and engine backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var names []string
		for _, f := range loader.Formats() {
			names = append(names, f.Name())
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "formats:  %s\n", strings.Join(names, " "))
		fmt.Fprintf(out, "backends: %s\n", strings.Join(emulator.Backends(), " "))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&backend, "backend", emulator.DefaultBackend, "Engine backend to load the binary into")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.AddCommand(formatsCmd)
}

func printMappings(w io.Writer, emu *popcorn.Emulator) error {
	arch := emu.Arch()
	fmt.Fprintf(w, "arch: %s (%d-bit), page size 0x%x\n", arch, arch.PointerSize()*8, emu.PageSize())
	maps := emu.Mappings()
	keys := make([]string, 0, len(maps))
	for key := range maps {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Compare(maps[a].Addr, maps[b].Addr)
	})
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTART\tEND\tSIZE\tPROT")
	for _, key := range keys {
		m := maps[key]
		fmt.Fprintf(tw, "%s\t0x%x\t0x%x\t0x%x\t%s\n", key, m.Addr, m.End(), m.Size, m.Prot)
	}
	return tw.Flush()
}
