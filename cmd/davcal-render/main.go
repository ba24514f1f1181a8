package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"davcal/src-server/blueprint"
	"davcal/src-server/ical/timezone"

	"github.com/urfave/cli"
)

var version = "(unknown)"

func newApp(in io.Reader, out io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "davcal-render"
	app.Usage = "render a blueprint as an iCalendar document"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "file, f",
			Usage: "blueprint file (.json, .yaml or .yml), - reads stdin",
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "format of stdin input, json or yaml",
			Value: "yaml",
		},
		cli.StringFlag{
			Name:  "tz-dir",
			Usage: "directory of <TZID>.ics files used before tzdata",
		},
		cli.BoolFlag{
			Name:  "reorder",
			Usage: "list observances without RRULE first",
		},
		cli.StringFlag{
			Name:  "timezone",
			Usage: "zone of dates without TZID or offset",
			Value: "UTC",
		},
		cli.StringFlag{
			Name:  "prodid",
			Usage: "PRODID used when the blueprint has none",
		},
	}
	app.Action = func(c *cli.Context) error {
		return render(c, in, out)
	}
	return app
}

func render(c *cli.Context, in io.Reader, out io.Writer) error {
	path := c.String("file")
	if path == "" {
		return cli.NewExitError("--file is required", 2)
	}

	var bp *blueprint.Blueprint
	var err error
	if path == "-" {
		data, readErr := io.ReadAll(in)
		if readErr != nil {
			return fmt.Errorf("can't read stdin: %w", readErr)
		}
		bp, err = blueprint.Parse(data, c.String("format"))
	} else {
		bp, err = blueprint.Load(path)
	}
	if err != nil {
		return err
	}

	loc, err := time.LoadLocation(c.String("timezone"))
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	registry := timezone.NewRegistry(
		timezone.DefaultProvider(c.String("tz-dir")),
		timezone.WithObservanceReordering(c.Bool("reorder")),
	)
	builder := blueprint.NewBuilder(registry,
		blueprint.WithLocation(loc),
		blueprint.WithProdID(c.String("prodid")),
	)
	doc, err := builder.Build(bp)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	if err := doc.ToIcal(w.WriteString); err != nil {
		return err
	}
	return w.Flush()
}

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
