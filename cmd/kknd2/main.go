package main

import (
	"fmt"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/kknd2"
	"github.com/urfave/cli/v2"
)

const defaultDB = "kknd2.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "kknd2"
	app.Usage = "KKnD2 level data utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"KKND2_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to map index database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "info",
			Usage:       "Print the layer geometry of a map",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := kknd2.LoadMap(c.Args().First(), nil, nil)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for i, l := range m.Layers {
					fmt.Printf("%d\t%s\t%dx%d tiles\t%dx%d px\t%d unique tiles\n",
						i, kknd2.LayerName(i), l.MapWidth, l.MapHeight, l.TileWidth, l.TileHeight, len(l.Tiles))
				}

				return nil
			},
		},
		{
			Name:        "export",
			Usage:       "Export each layer of a map as a PNG image",
			Description: "",
			ArgsUsage:   "FILE DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := kknd2.LoadMap(c.Args().First(), nil, nil)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				dir := c.Args().Get(1)
				if err := os.MkdirAll(dir, os.ModePerm); err != nil {
					return cli.NewExitError(err, 1)
				}

				for i, l := range m.Layers {
					f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%s.png", kknd2.LayerName(i))))
					if err != nil {
						return cli.NewExitError(err, 1)
					}

					if err := png.Encode(f, l.Image()); err != nil {
						f.Close()
						return cli.NewExitError(err, 1)
					}

					if err := f.Close(); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and index maps",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := log.New(ioutil.Discard, "", 0)
				if c.Bool("verbose") {
					logger.SetOutput(os.Stderr)
				}

				k, err := kknd2.New(c.String("db"), nil, nil, logger)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer k.Close()

				if err := k.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
