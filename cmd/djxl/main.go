// Command djxl decodes JPEG XL images from the command line.
//
// Usage:
//
//	djxl dec [options] <input.jxl>   JPEG XL → PNG (use "-" for stdin, -o - for stdout)
//	djxl info <input.jxl>            Display JPEG XL metadata
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jxldecoder/jxl"
)

// rgbaImage wraps a PixelView's packed bytes as an *image.NRGBA without
// copying, since PixelView's stride already matches NRGBA's own
// 4-bytes-per-pixel row layout.
func rgbaImage(v jxl.PixelView) *image.NRGBA {
	return &image.NRGBA{
		Pix:    v.Data,
		Stride: v.StrideBytes,
		Rect:   image.Rect(0, 0, v.Width, v.Height),
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dec":
		err = runDec(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "djxl: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "djxl: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  djxl dec [options] <input.jxl>   Decode JPEG XL to PNG
  djxl info <input.jxl>            Display JPEG XL metadata

Use "-" as input to read from stdin, "-o -" to write to stdout.
`)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	output := fs.String("o", "", `output path (default: .png, "-" for stdout)`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dec: missing input file\nUsage: djxl dec [options] <input.jxl>")
	}
	inputPath := fs.Arg(0)

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("dec: reading input: %w", err)
	}

	d, err := jxl.FromMemory(data)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}
	defer d.Close()

	ok, err := d.NextFrame()
	if err != nil {
		return fmt.Errorf("dec: decoding frame: %w", err)
	}
	if !ok {
		return jxl.ErrNoFrames
	}

	view, err := d.FramePixelsU8x4(jxl.OutputChannelRGBA)
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}
	img := rgbaImage(view)

	outputPath := *output
	if outputPath == "-" {
		return png.Encode(os.Stdout, img)
	}
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.png"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".png"
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("dec: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fmt.Fprintf(os.Stderr, "Decoded %s -> %s\n", inputPath, outputPath)
	return nil
}

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing input file\nUsage: djxl info <input.jxl>")
	}
	inputPath := args[0]

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("info: reading input: %w", err)
	}

	d, err := jxl.FromMemory(data)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	defer d.Close()

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}

	fmt.Printf("File:       %s\n", name)
	fmt.Printf("Dimensions: %d x %d\n", d.Header.Width, d.Header.Height)
	fmt.Printf("Animation:  %v\n", d.Header.HaveAnimation)
	fmt.Printf("Extra chs:  %d\n", len(d.Header.ExtraChannels))

	if inputPath != "-" {
		fi, err := os.Stat(inputPath)
		if err == nil {
			fmt.Printf("File size:  %d bytes\n", fi.Size())
		}
	}

	return nil
}
