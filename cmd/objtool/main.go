// objtool is a CLI utility for inspecting OBJ scenes and their material libraries.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshkit/internal/assets"
	"github.com/Faultbox/meshkit/internal/config"
	"github.com/Faultbox/meshkit/internal/logger"
	"github.com/Faultbox/meshkit/internal/texture"
	"github.com/Faultbox/meshkit/pkg/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "ranges":
		cmdRanges(args)
	case "materials", "mtl":
		cmdMaterials(args)
	case "dump":
		cmdDump(args)
	case "batch":
		cmdBatch(args)
	case "watch":
		cmdWatch(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - OBJ scene ingestion utility

Usage:
  objtool <command> [options] <scene.obj>...

Commands:
  info <scene.obj>             Show vertex, index and material counts
  ranges <scene.obj>           List draw ranges in draw order
  materials <scene.obj>        List materials and whether their textures exist
  dump <scene.obj>             Write the full bundle as yaml or json
  batch <scene.obj>...         Ingest several scenes concurrently
  watch <scene.obj>            Re-ingest whenever the scene or its materials change
  config [save]                Print the effective config, or save it as the user default

Common options:
  -config <file>    Config file (.yaml or .toml)
  -path <dir>       Scene search directory (repeatable)
  -format <fmt>     text, yaml or json
  -normals          Generate face normals where the scene has none
  -timeout <dur>    Per-scene timeout
  -debug            Debug logging

Examples:
  objtool info models/house.obj
  objtool dump -format json house.obj > house.json
  objtool batch -workers 8 -timeout 10s scenes/*.obj
  objtool watch -path ./models house.obj`)
}

// env is the per-command state built from flags and config.
type env struct {
	cfg      *config.Config
	locator  *assets.Locator
	textures *texture.Resolver
	fs       *flag.FlagSet
}

// newEnv parses args, loads config and initializes logging. It exits on error.
func newEnv(name string, args []string) *env {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	return &env{
		cfg:      cfg,
		locator:  assets.NewLocator(cfg.Assets.SearchPaths...),
		textures: texture.NewResolver(cfg.Assets.TextureExtensions),
		fs:       fs,
	}
}

// requireArgs exits with usage when fewer than n positional args were given.
func (e *env) requireArgs(n int, usage string) {
	if e.fs.NArg() < n {
		fmt.Fprintf(os.Stderr, "Usage: objtool %s\n", usage)
		os.Exit(1)
	}
}

func (e *env) options() pipeline.Options {
	return pipeline.Options{
		Logger:          logger.Log.Named("pipeline"),
		GenerateNormals: e.cfg.Pipeline.GenerateNormals,
	}
}

// load finds name on the search paths and ingests it within the configured timeout.
func (e *env) load(ctx context.Context, name string) (*pipeline.Bundle, string, error) {
	path, err := e.locator.Find(name)
	if err != nil {
		return nil, "", err
	}

	if timeout := e.cfg.Pipeline.Timeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	b, err := pipeline.LoadContext(ctx, path, e.options())
	return b, path, err
}

// report loads the first positional argument and builds its report. It exits on error.
func (e *env) report(withBuffers bool) *sceneReport {
	b, path, err := e.load(context.Background(), e.fs.Arg(0))
	if err != nil {
		logger.Error("failed to load scene", zap.String("scene", e.fs.Arg(0)), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return buildReport(b, path, e.textures, withBuffers)
}

func (e *env) textOutput() bool {
	f := strings.ToLower(e.cfg.Output.Format)
	return f == "" || f == "text"
}

// emit writes r using the configured format, or text via the given printer.
func (e *env) emit(r any, text func()) {
	if e.textOutput() {
		text()
		return
	}
	if err := writeReport(os.Stdout, e.cfg.Output.Format, r); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdInfo(args []string) {
	e := newEnv("info", args)
	defer logger.Sync()
	e.requireArgs(1, "info <scene.obj>")

	r := e.report(false)
	e.emit(r, func() { writeInfo(os.Stdout, r) })
}

func cmdRanges(args []string) {
	e := newEnv("ranges", args)
	defer logger.Sync()
	e.requireArgs(1, "ranges <scene.obj>")

	r := e.report(false)
	e.emit(r.Draws, func() { writeRanges(os.Stdout, r) })
}

func cmdMaterials(args []string) {
	e := newEnv("materials", args)
	defer logger.Sync()
	e.requireArgs(1, "materials <scene.obj>")

	r := e.report(false)
	e.emit(r.Materials, func() { writeMaterials(os.Stdout, r) })
}

func cmdDump(args []string) {
	e := newEnv("dump", args)
	defer logger.Sync()
	e.requireArgs(1, "dump [-format yaml|json] <scene.obj>")

	// Dump is always structured; text falls back to yaml.
	if e.textOutput() {
		e.cfg.Output.Format = "yaml"
	}
	e.emit(e.report(true), nil)
}

func cmdConfig(args []string) {
	e := newEnv("config", args)
	defer logger.Sync()

	if e.fs.Arg(0) == "save" {
		if err := e.cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return
	}

	if e.textOutput() {
		e.cfg.Output.Format = "yaml"
	}
	e.emit(e.cfg, nil)
}
