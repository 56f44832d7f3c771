// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package main implements the bvh command line utility.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mdhender/bvh"
	"github.com/mdhender/bvh/config"
	"github.com/mdhender/bvh/parsers"
	"github.com/mdhender/bvh/pipelines/stages"
	"github.com/mdhender/bvh/renderer"
	store "github.com/mdhender/bvh/stores/sqlite"
	"github.com/mdhender/bvh/watcher"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().StringP("config-file", "c", "", "load configuration from file")
		cmd.PersistentFlags().Bool("debug", false, "log debugging information")
		cmd.PersistentFlags().Bool("log-with-default-flags", false, "log with default flags")
		cmd.PersistentFlags().Bool("log-with-shortfile", false, "log with short file name")
		cmd.PersistentFlags().Bool("log-with-timestamp", false, "log with timestamp")
		cmd.PersistentFlags().Bool("quiet", false, "log less information")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		return nil
	}
	var cmdRoot = &cobra.Command{
		Use:   "bvh",
		Short: "BVH motion capture utility",
		Long:  `Parse, inspect, and catalog BVH motion capture files`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logWithDefaultFlags, _ := cmd.Flags().GetBool("log-with-default-flags")
			logWithShortFileName, _ := cmd.Flags().GetBool("log-with-shortfile")
			logWithTimestamp, _ := cmd.Flags().GetBool("log-with-timestamp")
			logFlags := 0
			if logWithShortFileName {
				logFlags |= log.Lshortfile
			}
			if logWithTimestamp {
				logFlags |= log.Ltime
			}
			if logWithDefaultFlags {
				logFlags = log.LstdFlags
			}
			log.SetFlags(logFlags)

			if showVersion, _ := cmd.Flags().GetBool("show-version"); showVersion {
				fmt.Printf("bvh: version %q\n", bvh.Version().Core())
			}

			return nil
		},
	}
	cmdRoot.AddCommand(cmdParse())
	cmdRoot.AddCommand(cmdDump())
	cmdRoot.AddCommand(cmdImport())
	cmdRoot.AddCommand(cmdList())
	cmdRoot.AddCommand(cmdShow())
	cmdRoot.AddCommand(cmdDelete())
	cmdRoot.AddCommand(cmdImports())
	cmdRoot.AddCommand(cmdStats())
	cmdRoot.AddCommand(cmdWatch())
	cmdRoot.AddCommand(cmdVersion())
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the configuration file named by --config-file, or the
// defaults with environment overrides if there is none. The --debug and
// --quiet flags adjust the log level.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config-file")
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, nil, err
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	} else if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		cfg.Log.Level = "error"
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// parserFlags are the command line overrides for the parser configuration.
type parserFlags struct {
	autoEOL           bool
	stripCR           bool
	rejectExtraValues bool
	requireFrameCount bool
}

func (f *parserFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.autoEOL, "auto-eol", true, "automatically convert line endings")
	cmd.Flags().BoolVar(&f.stripCR, "strip-cr", false, "strip CR from end-of-lines")
	cmd.Flags().BoolVar(&f.rejectExtraValues, "reject-extra-values", false, "fail on motion lines with too many values")
	cmd.Flags().BoolVar(&f.requireFrameCount, "require-frame-count", false, "fail if the frame count does not match the motion lines")
}

// apply copies the flags that were set on the command line into cfg.
func (f *parserFlags) apply(cmd *cobra.Command, cfg *config.ParserConfig) {
	if cmd.Flags().Changed("auto-eol") {
		cfg.AutoEOL = f.autoEOL
	}
	if cmd.Flags().Changed("strip-cr") {
		cfg.StripCR = f.stripCR
		// auto-eol wins unless it was also given explicitly
		if f.stripCR && !cmd.Flags().Changed("auto-eol") {
			cfg.AutoEOL = false
		}
	}
	if cmd.Flags().Changed("reject-extra-values") {
		cfg.RejectExtraValues = f.rejectExtraValues
	}
	if cmd.Flags().Changed("require-frame-count") {
		cfg.RequireFrameCount = f.requireFrameCount
	}
}

// readAndParse parses the file, printing a diagnostic with the offending
// source line if the parse fails.
func readAndParse(path string, options []parsers.Option) (*bvh.Document, error) {
	in, err := parsers.ReadInput(afero.NewOsFs(), path, options...)
	if err != nil {
		return nil, err
	}
	doc, err := in.Parse()
	if err != nil {
		bvh.PrintDiagnostic(os.Stderr, bvh.NewDiagnostic(err), in.Name, in.Data)
		return nil, fmt.Errorf("%s: %s", in.Name, bvh.ErrorCode(err))
	}
	return doc, nil
}

func cmdParse() *cobra.Command {
	var pf parserFlags
	var outputFile string
	addFlags := func(cmd *cobra.Command) error {
		pf.addFlags(cmd)
		cmd.Flags().StringVarP(&outputFile, "output", "o", outputFile, "save parse to file")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "parse <bvh-file>",
		Short:        "parse a BVH file and print it as JSON",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1), // require path to bvh file
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pf.apply(cmd, &cfg.Parser)

			started := time.Now()
			doc, err := readAndParse(args[0], cfg.Parser.Options(logger))
			if err != nil {
				return err
			}
			logger.Debug("parse: completed", "path", args[0], "elapsed", time.Since(started))

			if data, err := json.MarshalIndent(doc, "", "  "); err != nil {
				return fmt.Errorf("json: %w", err)
			} else if outputFile == "" {
				fmt.Printf("%s\n", string(data))
			} else if err = os.WriteFile(outputFile, data, 0o644); err != nil {
				return err
			} else {
				log.Printf("%s: wrote %d bytes\n", outputFile, len(data))
			}

			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// rendererFlags are the options shared by the commands that print a skeleton.
type rendererFlags struct {
	frames       bool
	excludeNames []string
	indent       string
	nameWidth    int
}

func (f *rendererFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.frames, "frames", false, "print the motion values for each frame")
	cmd.Flags().StringSliceVarP(&f.excludeNames, "exclude", "e", nil, "exclude the joint and its descendants")
	cmd.Flags().StringVar(&f.indent, "indent", " ", "indent for each level of the hierarchy")
	cmd.Flags().IntVar(&f.nameWidth, "name-width", 20, "width of the joint name column")
}

func (f *rendererFlags) render(doc *bvh.Document) error {
	r, err := renderer.New(
		renderer.WithFrames(f.frames),
		renderer.WithExcludeJoints(f.excludeNames...),
		renderer.WithIndent(f.indent),
		renderer.WithNameWidth(f.nameWidth),
	)
	if err != nil {
		return err
	}
	return r.Render(os.Stdout, doc)
}

func cmdDump() *cobra.Command {
	var pf parserFlags
	var rf rendererFlags
	addFlags := func(cmd *cobra.Command) error {
		pf.addFlags(cmd)
		rf.addFlags(cmd)
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "dump <bvh-file> [<bvh-file>...]",
		Short:        "print the skeleton of one or more BVH files",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pf.apply(cmd, &cfg.Parser)

			for _, input := range args {
				doc, err := readAndParse(input, cfg.Parser.Options(logger))
				if err != nil {
					return err
				}
				if len(args) > 1 {
					fmt.Printf("%s:\n", input)
				}
				if err := rf.render(doc); err != nil {
					return err
				}
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdImport() *cobra.Command {
	var pf parserFlags
	var dbPath string
	addFlags := func(cmd *cobra.Command) error {
		pf.addFlags(cmd)
		cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides configuration)")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "import <path> [<path>...]",
		Short:        "import BVH files, or directories of them, into the database",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pf.apply(cmd, &cfg.Parser)

			db, err := openStore(ctx, cfg, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := stages.NewIngestService(db, logger, cfg.Parser.Options(logger)...)
			started := time.Now()
			var imported, duplicates int
			var failed []error
			for _, input := range args {
				results, err := svc.IngestPath(ctx, input)
				for _, result := range results {
					if result.Duplicate {
						duplicates++
						log.Printf("%s: duplicate of %s\n", result.Path, result.DocumentID)
					} else {
						imported++
						log.Printf("%s: imported %s: %d joints, %d frames\n", result.Path, result.DocumentID, result.Joints, result.Frames)
					}
				}
				if err != nil {
					var dbErr *stages.ErrDatabase
					if errors.As(err, &dbErr) {
						return err
					}
					failed = append(failed, err)
				}
			}
			log.Printf("import: %d imported, %d duplicates in %v\n", imported, duplicates, time.Since(started))
			if len(failed) != 0 {
				return errors.Join(failed...)
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdWatch() *cobra.Command {
	var pf parserFlags
	var dbPath string
	var debounce time.Duration
	var extensions []string
	addFlags := func(cmd *cobra.Command) error {
		pf.addFlags(cmd)
		cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides configuration)")
		cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before a changed file is imported")
		cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to import")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "watch [<path>]",
		Short:        "import BVH files as they are written to a directory",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			pf.apply(cmd, &cfg.Parser)
			if len(args) == 1 {
				cfg.Watch.Path = args[0]
			}
			if cmd.Flags().Changed("debounce") {
				cfg.Watch.Debounce = debounce
			}
			if cmd.Flags().Changed("ext") {
				cfg.Watch.Extensions = extensions
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openStore(ctx, cfg, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := stages.NewIngestService(db, logger, cfg.Parser.Options(logger)...)
			w, err := watcher.New(watcher.Config{
				Path:       cfg.Watch.Path,
				Debounce:   cfg.Watch.Debounce,
				Extensions: cfg.Watch.Extensions,
				SkipHidden: cfg.Watch.SkipHidden,
			}, logger)
			if err != nil {
				return err
			}
			defer w.Stop()

			return w.Watch(ctx, func(path string) {
				result, err := svc.IngestFile(ctx, path)
				if err != nil {
					log.Printf("%s: %s: %v\n", path, stages.ErrorCode(err), err)
					return
				} else if result.Duplicate {
					log.Printf("%s: duplicate of %s\n", path, result.DocumentID)
					return
				}
				log.Printf("%s: imported %s: %d joints, %d frames\n", path, result.DocumentID, result.Joints, result.Frames)
			})
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(bvh.Version().String())
				return nil
			}
			fmt.Println(bvh.Version().Core())
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// openStore opens the database named by dbPath, or by the configuration if dbPath is empty.
func openStore(ctx context.Context, cfg *config.Config, dbPath string) (*store.SQLiteStore, error) {
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("missing database path")
	}
	return store.Open(ctx, dbPath)
}
