package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/astei/nbt"
	"github.com/astei/nbt/region"
)

func main() {
	app := &cli.App{
		Name:  "nbtool",
		Usage: "inspect NBT save files and region files",
		Commands: []*cli.Command{
			{
				Name:      "print",
				Usage:     "print the tag tree of an NBT file",
				ArgsUsage: "<file> [selector]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "snbt", Usage: "print as SNBT instead of the indented listing"},
				},
				Action: printAction,
			},
			{
				Name:      "chunks",
				Usage:     "list the chunks stored in a region file",
				ArgsUsage: "<region-file>",
				Action:    chunksAction,
			},
			{
				Name:      "scan",
				Usage:     "walk a world directory and count chunks per dimension",
				ArgsUsage: "<world-dir>",
				Action:    scanAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printAction(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return cli.ShowSubcommandHelp(c)
	}

	root, name, err := nbt.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}

	tag := root
	if c.NArg() == 2 {
		tag, err = selectTag(root, c.Args().Get(1))
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("Root tag name: %q\n", name)
	}

	if c.Bool("snbt") {
		fmt.Println(nbt.ToSNBT(tag))
	} else {
		fmt.Println(nbt.Format(tag))
	}
	return nil
}

// selectTag walks a dot-separated path of compound keys and list indices.
func selectTag(tag nbt.Tag, selector string) (nbt.Tag, error) {
	for _, part := range strings.Split(selector, ".") {
		switch t := tag.(type) {
		case *nbt.Compound:
			child, ok := t.Get(part)
			if !ok {
				return nil, fmt.Errorf("no entry %q in compound", part)
			}
			tag = child
		case *nbt.List:
			index, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("non-numeric selector %q for list", part)
			}
			if index < 0 || index >= t.Len() {
				return nil, fmt.Errorf("index %d out of range for list of %d", index, t.Len())
			}
			tag = t.At(index)
		default:
			return nil, fmt.Errorf("cannot select %q from %v tag", part, tag.Type())
		}
	}
	return tag, nil
}

func chunksAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}

	reg, err := region.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer reg.Close()

	count := 0
	for chunk, err := range reg.Chunks() {
		if err != nil {
			fmt.Printf("(%v)\n", err)
			continue
		}
		count++
		fmt.Printf("chunk (%2d, %2d)  %d entries  modified %s\n",
			chunk.X(), chunk.Z(), chunk.Root().Len(),
			reg.Timestamp(chunk.X(), chunk.Z()).Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("%d chunks present\n", count)
	return nil
}

func scanAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}

	dimensions, err := region.EnumerateWorld(c.Args().Get(0))
	if err != nil {
		return err
	}
	if len(dimensions) == 0 {
		return fmt.Errorf("no region directories under %s", c.Args().Get(0))
	}

	ids := make([]int, 0, len(dimensions))
	for id := range dimensions {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		files := dimensions[id]
		bar := progressbar.Default(int64(len(files)), fmt.Sprintf("dimension %d", id))

		chunks, corrupt := 0, 0
		for _, file := range files {
			reg, err := region.Open(file.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", file.Path, err)
				bar.Add(1)
				continue
			}
			for _, err := range reg.Chunks() {
				if err != nil {
					corrupt++
					continue
				}
				chunks++
			}
			reg.Close()
			bar.Add(1)
		}

		fmt.Printf("dimension %d: %d region files, %d chunks, %d corrupt\n",
			id, len(files), chunks, corrupt)
	}
	return nil
}
