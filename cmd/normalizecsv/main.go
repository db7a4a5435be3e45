// Command normalizecsv reads a raw statistics CSV, runs it through the
// normalizer (encoding detection, header promotion, column renaming, numeric
// coercion) and writes the cleaned table back out as CSV or XLSX.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"smbpulse/internal/config"
	"smbpulse/internal/dataprocessing"
	"smbpulse/internal/exporter"
	"smbpulse/internal/infrastructure"
)

func main() {
	input := flag.String("input", "", "raw statistics CSV to normalize (required)")
	output := flag.String("output", "", "output file path (defaults to <input>_clean.<format>)")
	format := flag.String("format", "csv", "output format: csv | xlsx")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: normalizecsv -input file.csv [-output out.csv] [-format csv|xlsx]")
		os.Exit(2)
	}
	if *format != "csv" && *format != "xlsx" {
		fmt.Fprintf(os.Stderr, "invalid format %q (expected csv or xlsx)\n", *format)
		os.Exit(2)
	}

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "console",
	})
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	normalizer := dataprocessing.NewNormalizer(logger)
	result, err := normalizer.LoadFile(*input)
	if err != nil {
		logger.Error("normalization failed",
			slog.String("input", *input),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("normalized dataset",
		slog.String("input", *input),
		slog.String("encoding", result.Encoding),
		slog.Bool("header_fixed", result.HeaderFixed),
		slog.Int("rows", result.Table.RowCount()),
		slog.Int("columns", len(result.Table.Headers())))

	out := *output
	if out == "" {
		base := strings.TrimSuffix(*input, ".csv")
		out = fmt.Sprintf("%s_clean.%s", base, *format)
	}

	switch *format {
	case "csv":
		err = exporter.WriteCSVFile(out, result.Table)
	case "xlsx":
		err = exporter.WriteXLSXFile(out, result.Table)
	}
	if err != nil {
		logger.Error("export failed",
			slog.String("output", out),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("export written", slog.String("output", out))
}
