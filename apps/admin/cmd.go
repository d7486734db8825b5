package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/conselho/core/grade"
	"github.com/trezcool/conselho/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	batch   *grade.Batch
	sessSvc session.Service
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  extract [-out FILE.csv] FILE.xlsx... - consolidate term spreadsheets into one CSV (one term per file, in name order)")
	fmt.Fprintln(cli.out, "  summary -in FILE.csv - print the subject means of every class")
	fmt.Fprintln(cli.out, "  checkpassword - check a password against the configured access password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	extractCmd := flag.NewFlagSet("extract", flag.ExitOnError)
	extractOut := extractCmd.String("out", "", "The CSV file to write. Defaults to stdout.")

	summaryCmd := flag.NewFlagSet("summary", flag.ExitOnError)
	summaryIn := summaryCmd.String("in", "", "A consolidated CSV, as written by extract.")

	switch args[1] {
	case "extract":
		if err := extractCmd.Parse(args[2:]); err != nil {
			return err
		}
		if extractCmd.NArg() == 0 {
			extractCmd.Usage()
			return errHelp
		}
		return cli.extract(extractCmd.Args(), *extractOut)
	case "summary":
		if err := summaryCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *summaryIn == "" {
			summaryCmd.Usage()
			return errHelp
		}
		return cli.summary(*summaryIn)
	case "checkpassword":
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			return errHelp
		}
		return cli.checkPassword(string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}
