// Command invfsctl is the interactive shell around the invfs core: it opens
// a disk image file, parses subcommand arguments, and calls into one of
// format, mount, create, delete, getsize, read, write, or debug. Per
// spec.md §1 this shell, and its argument parsing, are explicitly not part
// of the filesystem core — they only call into it.
package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/invfs/invfs/blockdev"
	"github.com/invfs/invfs/geometry"
	"github.com/invfs/invfs/invfs"
)

const nativeBlockSize = 4096

func main() {
	blocksArg := &cli.IntFlag{Name: "image-blocks", Usage: "total blocks in IMAGE_FILE", Required: true}

	app := &cli.App{
		Name:  "invfsctl",
		Usage: "Manage inode filesystem images",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create or wipe a disk image and lay down a fresh filesystem",
				ArgsUsage: "IMAGE_FILE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "blocks", Usage: "total number of blocks"},
					&cli.StringFlag{Name: "geometry", Usage: "named geometry preset (see `invfsctl geometries`)"},
				},
				Action: formatImage,
			},
			{
				Name:      "mount",
				Usage:     "Mount an image and report whether it mounted cleanly",
				ArgsUsage: "IMAGE_FILE",
				Flags:     []cli.Flag{blocksArg},
				Action:    withMountedImage(func(_ *cli.Context, _ *invfs.Filesystem) error { return nil }),
			},
			{
				Name:      "debug",
				Usage:     "Mount an image and dump its superblock and valid inodes",
				ArgsUsage: "IMAGE_FILE",
				Flags:     []cli.Flag{blocksArg},
				Action: withMountedImage(func(_ *cli.Context, fs *invfs.Filesystem) error {
					fs.Debug(os.Stdout)
					return nil
				}),
			},
			{
				Name:      "create",
				Usage:     "Allocate a fresh inode and print its inumber",
				ArgsUsage: "IMAGE_FILE",
				Flags:     []cli.Flag{blocksArg},
				Action: withMountedImage(func(_ *cli.Context, fs *invfs.Filesystem) error {
					inum := fs.Create()
					if inum == 0 {
						return fmt.Errorf("create failed: no free inode")
					}
					fmt.Println(inum)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Free an inode's blocks and mark it invalid",
				ArgsUsage: "IMAGE_FILE INUM",
				Flags:     []cli.Flag{blocksArg},
				Action: withMountedImage(func(context *cli.Context, fs *invfs.Filesystem) error {
					inum, err := intArg(context, 1, "INUM")
					if err != nil {
						return err
					}
					if !fs.Delete(inum) {
						return reportDiagnostics(fs, fmt.Errorf("delete failed for inode %d", inum))
					}
					return reportDiagnostics(fs, nil)
				}),
			},
			{
				Name:      "getsize",
				Usage:     "Print an inode's logical size in bytes",
				ArgsUsage: "IMAGE_FILE INUM",
				Flags:     []cli.Flag{blocksArg},
				Action: withMountedImage(func(context *cli.Context, fs *invfs.Filesystem) error {
					inum, err := intArg(context, 1, "INUM")
					if err != nil {
						return err
					}
					size := fs.GetSize(inum)
					if size < 0 {
						return fmt.Errorf("getsize failed for inode %d", inum)
					}
					fmt.Println(size)
					return nil
				}),
			},
			{
				Name:      "read",
				Usage:     "Read LENGTH bytes starting at OFFSET from an inode to stdout",
				ArgsUsage: "IMAGE_FILE INUM OFFSET LENGTH",
				Flags:     []cli.Flag{blocksArg},
				Action: withMountedImage(func(context *cli.Context, fs *invfs.Filesystem) error {
					inum, err := intArg(context, 1, "INUM")
					if err != nil {
						return err
					}
					offset, err := intArg(context, 2, "OFFSET")
					if err != nil {
						return err
					}
					length, err := intArg(context, 3, "LENGTH")
					if err != nil {
						return err
					}
					buf := make([]byte, length)
					n := fs.Read(inum, buf, length, offset)
					if _, err := os.Stdout.Write(buf[:n]); err != nil {
						return fmt.Errorf("writing to stdout: %w", err)
					}
					return nil
				}),
			},
			{
				Name:      "write",
				Usage:     "Write stdin to an inode at OFFSET, up to LENGTH bytes",
				ArgsUsage: "IMAGE_FILE INUM OFFSET LENGTH",
				Flags:     []cli.Flag{blocksArg},
				Action: withMountedImage(func(context *cli.Context, fs *invfs.Filesystem) error {
					inum, err := intArg(context, 1, "INUM")
					if err != nil {
						return err
					}
					offset, err := intArg(context, 2, "OFFSET")
					if err != nil {
						return err
					}
					length, err := intArg(context, 3, "LENGTH")
					if err != nil {
						return err
					}
					data := make([]byte, length)
					nread, err := io.ReadFull(os.Stdin, data)
					if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
						return fmt.Errorf("reading stdin: %w", err)
					}
					n := fs.Write(inum, data[:nread], nread, offset)
					return reportDiagnostics(fs, nil, fmt.Sprintf("wrote %d bytes", n))
				}),
			},
			{
				Name:  "geometries",
				Usage: "List named geometry presets",
				Action: func(_ *cli.Context) error {
					for _, name := range geometry.Names() {
						fmt.Println(name)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

// withMountedImage opens IMAGE_FILE (args[0]) with the image-blocks flag,
// mounts it, and hands the open Filesystem to fn. The device is always
// closed afterward regardless of fn's outcome.
func withMountedImage(fn func(*cli.Context, *invfs.Filesystem) error) cli.ActionFunc {
	return func(context *cli.Context) error {
		if context.NArg() < 1 {
			return fmt.Errorf("usage: invfsctl %s --image-blocks N IMAGE_FILE ...", context.Command.Name)
		}
		path := context.Args().Get(0)
		blocks := context.Int("image-blocks")

		dev, err := blockdev.OpenFileDevice(path, nativeBlockSize, blocks)
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		defer dev.Close()

		fs := invfs.New(dev, invfs.WithLogger(slog.Default()))
		if !fs.Mount() {
			return fmt.Errorf("mount failed")
		}
		return fn(context, fs)
	}
}

// intArg parses context's positional argument at index as a base-10 int,
// labeling any error with name.
func intArg(context *cli.Context, index int, name string) (int, error) {
	raw := context.Args().Get(index)
	var v int
	if _, err := fmt.Sscanf(raw, "%d", &v); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}

// reportDiagnostics prints any non-fatal warnings the last operation
// recorded, then returns baseErr unchanged so callers can still fail the
// command on a hard error.
func reportDiagnostics(fs *invfs.Filesystem, baseErr error, messages ...string) error {
	for _, m := range messages {
		fmt.Println(m)
	}
	if diag := fs.LastDiagnostics(); diag != nil {
		fmt.Fprintln(os.Stderr, diag)
	}
	return baseErr
}

func resolveGeometry(context *cli.Context) (blockSize, totalBlocks int, err error) {
	if name := context.String("geometry"); name != "" {
		preset, err := geometry.Lookup(name)
		if err != nil {
			return 0, 0, err
		}
		return int(preset.BlockSize), int(preset.TotalBlocks), nil
	}

	blocks := context.Int("blocks")
	if blocks <= 0 {
		return 0, 0, fmt.Errorf("must pass either --geometry or --blocks")
	}
	return nativeBlockSize, blocks, nil
}

func formatImage(context *cli.Context) error {
	if context.NArg() < 1 {
		return fmt.Errorf("usage: invfsctl format [--blocks N | --geometry NAME] IMAGE_FILE")
	}
	path := context.Args().Get(0)

	blockSize, totalBlocks, err := resolveGeometry(context)
	if err != nil {
		return err
	}

	dev, err := blockdev.CreateFileDevice(path, blockSize, totalBlocks)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer dev.Close()

	fs := invfs.New(dev, invfs.WithLogger(slog.Default()))
	if !fs.Format() {
		return fmt.Errorf("format failed")
	}

	fmt.Printf("formatted %s: %d blocks of %d bytes\n", path, totalBlocks, blockSize)
	return nil
}
