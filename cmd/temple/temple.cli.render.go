package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-temple"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	templatePath string
	templateName string
	dataJSON     string
	dataFilePath string
	rowsPath     string
	configPath   string
	outputPath   string
	verbose      bool
	ambient      ambientFiles
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	logger := newLogger(stderr, cfg.verbose)
	defer func() { _ = logger.Sync() }()

	engine, source, msg, err := buildEngine(cfg.configPath, logger)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, msg, err)
		return ExitCodeInputError
	}
	if source != nil {
		defer source.Close()
	}
	if cfg.templateName != "" && source == nil {
		fmt.Fprintln(stderr, ErrMsgNameNeedsSource)
		return ExitCodeUsageError
	}

	data, err := loadData(cfg.dataJSON, cfg.dataFilePath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidJSON, err)
		return ExitCodeInputError
	}

	ambient, err := cfg.ambient.load()
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidAmbient, err)
		return ExitCodeInputError
	}
	ctx := temple.WithAmbient(context.Background(), ambient)

	var result string
	switch {
	case cfg.templateName != "":
		result, err = engine.RenderTemplate(ctx, cfg.templateName, data)
	default:
		text, readErr := readInput(cfg.templatePath, stdin)
		if readErr != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, readErr)
			return ExitCodeInputError
		}
		if cfg.rowsPath != "" {
			rows, rowsErr := loadRows(cfg.rowsPath)
			if rowsErr != nil {
				fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidRows, rowsErr)
				return ExitCodeInputError
			}
			result, err = engine.RenderRepeated(ctx, string(text), rows)
		} else {
			result, err = engine.Render(ctx, string(text), data)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRenderFailed, err)
		if temple.IsDepthExceeded(err) {
			return ExitCodeDepthError
		}
		return ExitCodeError
	}

	if err := writeOutput(cfg.outputPath, []byte(result), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &renderConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.templateName, FlagName, "", "")
	fs.StringVar(&cfg.templateName, FlagNameShort, "", "")
	fs.StringVar(&cfg.dataJSON, FlagData, "", "")
	fs.StringVar(&cfg.dataJSON, FlagDataShort, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFile, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFileShort, "", "")
	fs.StringVar(&cfg.rowsPath, FlagRows, "", "")
	fs.StringVar(&cfg.rowsPath, FlagRowsShort, "", "")
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.StringVar(&cfg.configPath, FlagConfigShort, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVar(&cfg.verbose, FlagVerbose, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerboseShort, false, "")
	fs.StringVar(&cfg.ambient.session, FlagSession, "", "")
	fs.StringVar(&cfg.ambient.server, FlagServer, "", "")
	fs.StringVar(&cfg.ambient.cookie, FlagCookie, "", "")
	fs.StringVar(&cfg.ambient.request, FlagRequest, "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Validation
	if cfg.templatePath == "" && cfg.templateName == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}
	if cfg.templatePath != "" && cfg.templateName != "" {
		return nil, errors.New(ErrMsgTemplateAndName)
	}

	return cfg, nil
}
