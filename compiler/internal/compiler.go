package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/xiaobogaga/jackc/util"
	"github.com/xiaobogaga/jackc/vmcheck"
	"golang.org/x/exp/slices"
)

// Options controls how sources are compiled and where the results go.
type Options struct {
	// OutputDir receives the .vm (and .xml) files. Empty means next to each source.
	OutputDir string
	// EmitTrace also writes the production trace as <Class>.xml.
	EmitTrace bool
	// DryRun compiles without writing any file.
	DryRun bool
	// Verify runs the vm checker over every generated listing.
	Verify bool
	// Diagnostics receives one line per compile error. Defaults to os.Stderr.
	Diagnostics io.Writer
	Logger      *logrus.Logger
}

func (opts Options) withDefaults() Options {
	if opts.Diagnostics == nil {
		opts.Diagnostics = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return opts
}

// Output is the result of compiling one class.
type Output struct {
	ClassName string
	Source    string
	VM        *VMWriter
	Trace     string
}

// CompileSource compiles the class read from rd. name only labels log entries and
// diagnostics. On error the diagnostic line has already been written to
// opts.Diagnostics and no Output is returned.
func CompileSource(name string, rd io.Reader, opts Options) (*Output, error) {
	opts = opts.withDefaults()
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		fmt.Fprintln(opts.Diagnostics, err)
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var tracer *Tracer
	if opts.EmitTrace {
		tracer = NewTracer()
	}
	translator := NewTranslator(NewTokenStream(tokens), tracer)
	err = translator.Translate()
	if err != nil {
		fmt.Fprintln(opts.Diagnostics, err)
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	output := &Output{
		ClassName: translator.ClassName(),
		Source:    name,
		VM:        translator.Output(),
		Trace:     tracer.String(),
	}
	if opts.Verify {
		err = vmcheck.Check(strings.NewReader(output.VM.String()))
		if err != nil {
			return nil, fmt.Errorf("%s: generated code of class %s is invalid: %w", name, output.ClassName, err)
		}
	}
	opts.Logger.WithFields(logrus.Fields{
		"class":        output.ClassName,
		"instructions": output.VM.Len(),
	}).Debug("compiled class")
	return output, nil
}

// CompileFile compiles one .jack file and, unless opts.DryRun, saves <Class>.vm.
func CompileFile(path string, opts Options) (*Output, error) {
	opts = opts.withDefaults()
	opts.Logger.WithField("file", path).Info("compiling file")
	rd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	output, err := CompileSource(path, rd, opts)
	if err != nil {
		return nil, err
	}
	if output.ClassName != util.BaseName(path) {
		opts.Logger.WithFields(logrus.Fields{
			"file":  path,
			"class": output.ClassName,
		}).Warn("class name doesn't match file name")
	}
	if opts.DryRun {
		return output, nil
	}
	return output, saveOutput(path, output, opts)
}

func saveOutput(path string, output *Output, opts Options) error {
	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	vmPath := filepath.Join(dir, output.ClassName+".vm")
	err = os.WriteFile(vmPath, []byte(output.VM.String()), 0644)
	if err != nil {
		return err
	}
	opts.Logger.WithField("file", vmPath).Info("saved vm file")
	if !opts.EmitTrace {
		return nil
	}
	tracePath := filepath.Join(dir, output.ClassName+".xml")
	err = os.WriteFile(tracePath, []byte(output.Trace), 0644)
	if err != nil {
		return err
	}
	opts.Logger.WithField("file", tracePath).Info("saved trace file")
	return nil
}

var ErrNoSource = errors.New("no jack source found")

// Compile compiles every path, a directory stands for all the .jack files directly
// in it. Each file is compiled on its own, a failing file doesn't stop the others.
// The returned error holds one entry per failed file.
func Compile(paths []string, opts Options) ([]*Output, error) {
	opts = opts.withDefaults()
	files, err := collectSources(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSource
	}
	var errs *multierror.Error
	var outputs []*Output
	for _, file := range files {
		output, err := CompileFile(file, opts)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		outputs = append(outputs, output)
	}
	return outputs, errs.ErrorOrNil()
}

// collectSources expands directories and returns a sorted list without duplicates.
func collectSources(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(path))
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			// Ignore sub path
			if entry.IsDir() || !util.IsJackFile(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
