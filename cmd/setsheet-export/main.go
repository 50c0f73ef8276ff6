package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/setsheet/internal/boostcamp"
	"github.com/claude/setsheet/internal/export"
	"github.com/claude/setsheet/internal/flatten"
	"github.com/claude/setsheet/internal/state"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	inPath := flag.String("in", "example_data_payload.txt", "path to the Boostcamp export JSON")
	csvPath := flag.String("csv", "workout_sets.csv", "CSV output path")
	xlsxPath := flag.String("xlsx", "workout_sets.xlsx", "XLSX output path")
	sheet := flag.String("sheet", export.SheetName, "XLSX sheet name")
	stateDir := flag.String("state-dir", "", "directory for the export state DB (skips unchanged inputs when set)")
	force := flag.Bool("force", false, "export even if the state DB says the input is unchanged")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("setsheet-export", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	info, err := os.Stat(*inPath)
	if err != nil {
		log.Error("input payload not found", "path", *inPath, "error", err)
		os.Exit(1)
	}

	// Optional skip tracking: hash the input and compare against the state DB.
	var stateDB *state.DB
	var hash string
	if *stateDir != "" {
		stateDB, err = state.Open(*stateDir)
		if err != nil {
			log.Error("failed to open state db", "error", err)
			os.Exit(1)
		}
		defer stateDB.Close()

		hash, err = state.HashFile(*inPath)
		if err != nil {
			log.Error("failed to hash input", "path", *inPath, "error", err)
			os.Exit(1)
		}

		current, err := stateDB.IsCurrent(*inPath, info.Size(), hash)
		if err != nil {
			log.Error("state db lookup failed", "error", err)
			os.Exit(1)
		}
		if current && !*force {
			prev, _ := stateDB.Lookup(*inPath)
			if prev != nil {
				log.Info("input unchanged since last export, skipping",
					"path", *inPath, "csv", prev.CSVPath, "xlsx", prev.XLSXPath)
			} else {
				log.Info("input unchanged since last export, skipping", "path", *inPath)
			}
			return
		}
	}

	payload, err := boostcamp.DecodeFile(*inPath)
	if err != nil {
		log.Error("failed to decode payload", "path", *inPath, "error", err)
		os.Exit(1)
	}

	table := flatten.Flatten(payload)
	sessions, exercises, sets := payload.Counts()
	log.Info("payload flattened",
		"sessions", sessions,
		"exercises", exercises,
		"sets", sets,
		"rows", len(table.Rows),
		"columns", len(table.Columns),
	)

	if err := export.WriteCSVFile(*csvPath, table); err != nil {
		log.Error("csv export failed", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	log.Info("csv written", "path", *csvPath)

	if err := export.WriteXLSXFile(*xlsxPath, table, *sheet); err != nil {
		log.Error("xlsx export failed", "path", *xlsxPath, "error", err)
		os.Exit(1)
	}
	log.Info("xlsx written", "path", *xlsxPath, "sheet", *sheet)

	if stateDB != nil {
		rec := state.Record{
			Path:     *inPath,
			Size:     info.Size(),
			Hash:     hash,
			CSVPath:  *csvPath,
			XLSXPath: *xlsxPath,
			Sheet:    *sheet,
		}
		if err := stateDB.Save(rec); err != nil {
			log.Warn("failed to record export state", "error", err)
		}
	}
}
