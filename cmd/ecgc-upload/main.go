// ecgc-upload writes a local image file into one of the cartridge's
// programmable memory regions.
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
	targetFlag string
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:   "ecgc-upload serial_port image_file",
	Short: "Upload code or data to an ecgc cartridge",
	Long: `Uploads a local image file to the ecgc cartridge connected through the
given serial port, into the boot ROM, DRAM or flash target.

Without -s the whole file is uploaded, or as much of it as the target
holds. Sizes accept a k or M suffix (4k, 2M) or a 0x-prefixed
hexadecimal value.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       cli.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli.SetupLogging(verbosity)
		defer glog.Flush()
		return runUpload(cmd.Context(), args[0], args[1])
	},
}

func runUpload(ctx context.Context, portName, imagePath string) error {
	target, err := cartridge.ParseTarget(targetFlag)
	if err != nil {
		return err
	}

	size := 0
	if sizeFlag != "" {
		size, err = cartridge.ParseSize(sizeFlag)
		if err != nil {
			return err
		}
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image file: %w", err)
	}

	session, err := cli.OpenSession(ctx, portName)
	if err != nil {
		return err
	}
	defer session.Close()

	prog := programmer.New(session.Debugger,
		programmer.WithLogger(cli.GlogLogger{}),
		programmer.WithProgressCallback(progressBar),
	)

	summary, err := prog.Upload(ctx, programmer.Request{
		Target: target,
		Size:   size,
	}, image)
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("uploaded %s to %s in %.2f seconds\n",
		cartridge.FormatSize(summary.BytesTransferred), target, summary.Elapsed.Seconds())
	return nil
}

func progressBar(transferred, total int) {
	fmt.Printf("\r%d/%d bytes", transferred, total)
}

func main() {
	rootCmd.Flags().StringVarP(&sizeFlag, "size", "s", "",
		"number of bytes to upload from the image file (default: whole file)")
	rootCmd.Flags().StringVarP(&targetFlag, "target", "t", "",
		"destination target of the upload (boot, dram or flash)")
	rootCmd.Flags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity of program output")
	rootCmd.MarkFlagRequired("target")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ecgc-upload: %v\n", err)
		os.Exit(1)
	}
}
