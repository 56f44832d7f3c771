// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	store "github.com/mdhender/bvh/stores/sqlite"
	"github.com/spf13/cobra"
)

func cmdList() *cobra.Command {
	var dbPath string
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides configuration)")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "list",
		Short:        "list the documents in the database",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := openStore(ctx, cfg, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := db.ListDocuments(ctx)
			if err != nil {
				return err
			}
			for _, info := range list {
				duration := time.Duration(float64(info.BoundFrames) * info.FrameTime * float64(time.Second))
				fmt.Printf("%s  %-32s  %4d joints  %6d frames  %10v  %s\n",
					info.ID, info.Name, info.Joints, info.BoundFrames, duration.Round(time.Millisecond), info.CreatedAt.Format(time.DateTime))
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdShow() *cobra.Command {
	var dbPath string
	var rf rendererFlags
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides configuration)")
		rf.addFlags(cmd)
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "show <document-id>",
		Short:        "print the skeleton of a stored document",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := openStore(ctx, cfg, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			doc, err := db.LoadDocument(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return rf.render(doc)
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdDelete() *cobra.Command {
	var dbPath string
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides configuration)")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "delete <document-id> [<document-id>...]",
		Short:        "delete stored documents",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := openStore(ctx, cfg, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, id := range args {
				if err := db.DeleteDocument(ctx, id); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				log.Printf("%s: deleted\n", id)
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdImports() *cobra.Command {
	var dbPath string
	limit := 20
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides configuration)")
		cmd.Flags().IntVarP(&limit, "limit", "n", limit, "number of imports to show")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "imports",
		Short:        "show recent import attempts",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := openStore(ctx, cfg, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := db.ListImports(ctx, limit)
			if err != nil {
				return err
			}
			for _, imp := range list {
				switch imp.Status {
				case store.ImportStatusFailed:
					fmt.Printf("%6d  %-9s  %s  %s: %s\n", imp.ID, imp.Status, imp.Path, imp.ErrorCode, imp.ErrorMsg)
				default:
					fmt.Printf("%6d  %-9s  %s  %s\n", imp.ID, imp.Status, imp.Path, imp.DocumentID)
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

func cmdStats() *cobra.Command {
	var dbPath string
	compact := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", "", "database file (overrides configuration)")
		cmd.Flags().BoolVar(&compact, "compact", compact, "checkpoint and vacuum the database first")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "stats",
		Short:        "dump row counts from each table",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Store.Path
			}
			if compact && dbPath != store.MemoryPath {
				started := time.Now()
				if err := store.CompactDatabase(ctx, dbPath); err != nil {
					return err
				}
				log.Printf("%s: compacted in %v\n", dbPath, time.Since(started))
			}

			db, err := openStore(ctx, cfg, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.TableStats(ctx)
			if err != nil {
				return fmt.Errorf("get table stats: %w", err)
			}
			tables := make([]string, 0, len(stats))
			for table := range stats {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			for _, table := range tables {
				fmt.Printf("  %-20s %d rows\n", table, stats[table])
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}
