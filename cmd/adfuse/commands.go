package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dargueta/adfuse"
	"github.com/dargueta/adfuse/logging"
	"github.com/dargueta/adfuse/mount"
	"github.com/dargueta/adfuse/namespace"
	"github.com/dargueta/adfuse/utilities/compression"
)

func requireArgs(c *cli.Context, min, max int) error {
	if c.NArg() < min || c.NArg() > max {
		return cli.Exit(
			fmt.Sprintf("Usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage),
			1,
		)
	}
	return nil
}

func mountImage(c *cli.Context) error {
	if err := requireArgs(c, 2, 2); err != nil {
		return err
	}
	mountPoint := c.Args().Get(0)
	imagePath := c.Args().Get(1)

	disc, ns, err := openNamespace(c, imagePath, namespace.Options{ListSidecars: c.Bool("list-inf")})
	if err != nil {
		return err
	}

	server, err := mount.Mount(
		mountPoint,
		mount.NewOperations(ns, disc),
		mount.Options{
			FsName:     imagePath,
			AllowOther: c.Bool("allow-other"),
			Debug:      c.Bool("fuse-debug"),
			Timeout:    c.Duration("timeout"),
		},
	)
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logging.Info("unmounting", logging.String("signal", sig.String()))
		if err := server.Unmount(); err != nil {
			logging.Error("unmount failed", logging.Err(err))
		}
	}()

	server.Wait()
	return nil
}

func listDirectory(c *cli.Context) error {
	if err := requireArgs(c, 1, 2); err != nil {
		return err
	}

	_, ns, err := openNamespace(c, c.Args().Get(0), namespace.Options{ListSidecars: c.Bool("list-inf")})
	if err != nil {
		return err
	}

	node, err := ns.Resolve(c.Args().Get(1))
	if err != nil {
		return err
	}

	directory, isDir := node.(*namespace.Directory)
	if !isDir {
		printEntry(adfuse.NewDirectoryEntry(node.Name(), node.Attributes()))
		return nil
	}
	for child := range directory.Children() {
		printEntry(adfuse.NewDirectoryEntry(child.Name(), child.Attributes()))
	}
	return nil
}

func printEntry(entry adfuse.DirectoryEntry) {
	fmt.Printf(
		"%s %10d %s %s\n",
		entry.Mode(),
		entry.Size(),
		entry.ModTime().UTC().Format("2006-01-02 15:04:05"),
		entry.Name(),
	)
}

func catFile(c *cli.Context) error {
	if err := requireArgs(c, 2, 2); err != nil {
		return err
	}

	_, ns, err := openNamespace(c, c.Args().Get(0), namespace.Options{})
	if err != nil {
		return err
	}

	node, err := ns.Resolve(c.Args().Get(1))
	if err != nil {
		return err
	}
	file, isFile := node.(*namespace.File)
	if !isFile {
		return adfuse.ErrIsADirectory.WithMessage(c.Args().Get(1))
	}

	_, err = os.Stdout.Write(file.Content)
	return err
}

func showInfo(c *cli.Context) error {
	if err := requireArgs(c, 1, 1); err != nil {
		return err
	}

	disc, ns, err := openNamespace(c, c.Args().Get(0), namespace.Options{})
	if err != nil {
		return err
	}

	fmt.Printf("Disc type:      %s\n", disc.DiscType)
	fmt.Printf("Disc name:      %s\n", disc.DiscName)
	fmt.Printf("Disc ID:        %04X\n", disc.DiscID)
	fmt.Printf("Boot option:    %d\n", disc.BootOption)
	fmt.Printf("Root title:     %s\n", disc.RootTitle)
	fmt.Printf("Sector size:    %d\n", disc.SectorSize)
	fmt.Printf(
		"Geometry:       %d tracks, %d sectors per track, %d heads\n",
		disc.Tracks,
		disc.SectorsPerTrack,
		disc.Heads,
	)
	fmt.Printf("Total sectors:  %d\n", disc.TotalSectors())
	fmt.Printf("Free space:     %d bytes\n", disc.FreeSpace)
	fmt.Printf("Files:          %d\n", ns.CountFiles())

	if len(disc.Problems) > 0 {
		fmt.Printf("Problems:\n")
		for _, problem := range disc.Problems {
			fmt.Printf("  %s\n", problem)
		}
	}
	return nil
}

func writeCatalogue(c *cli.Context) error {
	if err := requireArgs(c, 1, 1); err != nil {
		return err
	}

	_, ns, err := openNamespace(c, c.Args().Get(0), namespace.Options{})
	if err != nil {
		return err
	}
	return WriteCatalogue(ns, os.Stdout)
}

func compressImage(c *cli.Context) error {
	if err := requireArgs(c, 2, 2); err != nil {
		return err
	}
	return convertFile(c.Args().Get(0), c.Args().Get(1), compression.CompressImage)
}

func decompressImage(c *cli.Context) error {
	if err := requireArgs(c, 2, 2); err != nil {
		return err
	}
	return convertFile(c.Args().Get(0), c.Args().Get(1), compression.DecompressImage)
}
