// ecgc-dump reads a range of the cartridge memory map into a local
// file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/ecgc-project/ecgc-util/cartridge"
	"github.com/ecgc-project/ecgc-util/cli"
	"github.com/ecgc-project/ecgc-util/programmer"
)

var (
	sizeFlag   string
	offsetFlag string
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:   "ecgc-dump serial_port output_file",
	Short: "Dump cartridge memory to a file",
	Long: `Reads a range of the ecgc cartridge's memory map over the given serial
port and writes it to a local file.

The dump size is required; the start offset defaults to the bottom of
the memory map. Both accept a k or M suffix (4k, 2M) or a 0x-prefixed
hexadecimal value.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       cli.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(verbosity)
		defer glog.Flush()
		return runDump(cmd.Context(), args[0], args[1])
	},
}

func runDump(ctx context.Context, portName, outputPath string) error {
	size, err := cartridge.ParseSize(sizeFlag)
	if err != nil {
		return err
	}

	offset := 0
	if offsetFlag != "" {
		offset, err = cartridge.ParseSize(offsetFlag)
		if err != nil {
			return err
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	session, err := cli.OpenSession(ctx, portName)
	if err != nil {
		return err
	}
	defer session.Close()

	prog := programmer.New(session.Debugger,
		programmer.WithLogger(cli.GlogLogger{}),
		programmer.WithProgressCallback(progressBar),
	)

	summary, err := prog.Dump(ctx, offset, size, out)
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("dumped %s in %.2f seconds\n",
		cartridge.FormatSize(summary.BytesTransferred), summary.Elapsed.Seconds())
	return nil
}

func progressBar(transferred, total int) {
	fmt.Printf("\r%d/%d bytes", transferred, total)
}

func main() {
	rootCmd.Flags().StringVarP(&sizeFlag, "dump-size", "n", "",
		"number of bytes to dump from the cartridge")
	rootCmd.Flags().StringVarP(&offsetFlag, "start-offset", "s", "",
		"address to start dumping from (default: 0)")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity of program output")
	rootCmd.MarkFlagRequired("dump-size")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ecgc-dump: %v\n", err)
		os.Exit(1)
	}
}
