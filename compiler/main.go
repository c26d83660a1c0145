package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/xiaobogaga/jackc/compiler/internal"
	"github.com/xiaobogaga/jackc/config"
	"github.com/xiaobogaga/jackc/util"
	"github.com/xiaobogaga/jackc/vmcheck"
)

var (
	configPath string
	outputDir  string
	emitTrace  bool
	noVerify   bool
	noColor    bool
	verbose    bool
)

// diagnosticWriter highlights the "[line n] Error ...:" head of every diagnostic line.
type diagnosticWriter struct {
	out io.Writer
}

func (w *diagnosticWriter) Write(p []byte) (int, error) {
	redBold := color.New(color.FgRed, color.Bold).SprintFunc()
	var buf bytes.Buffer
	for _, line := range strings.SplitAfter(string(p), "\n") {
		if line == "" {
			continue
		}
		idx := strings.Index(line, ": ")
		if idx < 0 {
			buf.WriteString(redBold(strings.TrimSuffix(line, "\n")))
			if strings.HasSuffix(line, "\n") {
				buf.WriteByte('\n')
			}
			continue
		}
		buf.WriteString(redBold(line[:idx+1]))
		buf.WriteString(line[idx+1:])
	}
	_, err := w.out.Write(buf.Bytes())
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// setup loads the config and lets command line flags override it.
func setup() (*config.Config, internal.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, internal.Options{}, err
	}
	if outputDir != "" {
		cfg.Compiler.OutputDir = outputDir
	}
	if emitTrace {
		cfg.Compiler.Trace = true
	}
	if noVerify {
		cfg.Compiler.Verify = false
	}
	if noColor {
		cfg.Diagnostics.Color = false
	}
	color.NoColor = !cfg.Diagnostics.Color

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, _ := cfg.LogLevel()
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	opts := internal.Options{
		OutputDir:   cfg.Compiler.OutputDir,
		EmitTrace:   cfg.Compiler.Trace,
		Verify:      cfg.Compiler.Verify,
		Diagnostics: &diagnosticWriter{out: os.Stderr},
		Logger:      logger,
	}
	return cfg, opts, nil
}

func compileAction(dryRun bool) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		if !c.Args().Present() {
			return cli.NewExitError("no jack file or directory given", 1)
		}
		_, opts, err := setup()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		opts.DryRun = dryRun
		outputs, err := internal.Compile(c.Args(), opts)
		if err != nil {
			reportErrors(opts.Diagnostics, err, false)
			return cli.NewExitError(fmt.Sprintf("%d class(es) compiled, compilation failed", len(outputs)), 1)
		}
		opts.Logger.WithField("classes", len(outputs)).Info("compilation finished")
		return nil
	}
}

func verifyAction(c *cli.Context) error {
	if !c.Args().Present() {
		return cli.NewExitError("no vm file given", 1)
	}
	_, opts, err := setup()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	var errs *multierror.Error
	for _, path := range c.Args() {
		if !util.IsVMFile(path) {
			opts.Logger.WithField("file", path).Warn("not a vm file, skipped")
			continue
		}
		err := vmcheck.NewChecker().CheckFile(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		opts.Logger.WithField("file", path).Info("vm file is valid")
	}
	if errs.ErrorOrNil() != nil {
		reportErrors(opts.Diagnostics, errs, true)
		return cli.NewExitError("verification failed", 1)
	}
	return nil
}

func initAction(c *cli.Context) error {
	path := configPath
	if _, err := os.Stat(path); err == nil {
		return cli.NewExitError(fmt.Sprintf("%s already exists", path), 1)
	}
	err := config.Save(path, config.Default())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// reportErrors prints one line per error. Compile errors already had their
// diagnostic line printed, so only the ones without one are reported, unless all is
// set.
func reportErrors(w io.Writer, err error, all bool) {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		fmt.Fprintln(w, err)
		return
	}
	for _, e := range merr.Errors {
		var nested *multierror.Error
		if errors.As(e, &nested) {
			reportErrors(w, nested, all)
			continue
		}
		if !all && internal.IsDiagnosed(e) {
			continue
		}
		fmt.Fprintln(w, e)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "jackc"
	app.Usage = "compile jack classes to vm code"

	configFlag := cli.StringFlag{
		Name:        "config",
		Value:       config.FileName,
		Usage:       "path of the config file",
		Destination: &configPath,
	}
	outDirFlag := cli.StringFlag{
		Name:        "out-dir",
		Usage:       "directory receiving the .vm files, default is next to each source",
		Destination: &outputDir,
	}
	traceFlag := cli.BoolFlag{
		Name:        "trace",
		Usage:       "also write the parse trace as <Class>.xml",
		Destination: &emitTrace,
	}
	noVerifyFlag := cli.BoolFlag{
		Name:        "no-verify",
		Usage:       "skip checking the generated vm code",
		Destination: &noVerify,
	}
	noColorFlag := cli.BoolFlag{
		Name:        "no-color",
		Usage:       "hide colors in error messages",
		Destination: &noColor,
	}
	verboseFlag := cli.BoolFlag{
		Name:        "verbose",
		Usage:       "log every step",
		Destination: &verbose,
	}

	app.Commands = []cli.Command{
		{
			Name:    "compile",
			Aliases: []string{"c"},
			Usage:   "Compile jack file(s) or directories and write the vm code",
			Flags: []cli.Flag{
				configFlag,
				outDirFlag,
				traceFlag,
				noVerifyFlag,
				noColorFlag,
				verboseFlag,
			},
			Action: compileAction(false),
		},
		{
			Name:    "check",
			Aliases: []string{"k"},
			Usage:   "Compile jack file(s) without writing anything",
			Flags: []cli.Flag{
				configFlag,
				noVerifyFlag,
				noColorFlag,
				verboseFlag,
			},
			Action: compileAction(true),
		},
		{
			Name:    "verify",
			Aliases: []string{"v"},
			Usage:   "Check vm file(s)",
			Flags: []cli.Flag{
				configFlag,
				noColorFlag,
				verboseFlag,
			},
			Action: verifyAction,
		},
		{
			Name:  "init",
			Usage: "Write a default " + config.FileName,
			Flags: []cli.Flag{
				configFlag,
			},
			Action: initAction,
		},
	}

	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	err := app.Run(os.Args)
	if err != nil {
		os.Exit(1)
	}
}
