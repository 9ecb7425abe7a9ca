// Command qoe-report builds the management report for a spreadsheet without
// starting the server.
//
//	qoe-report -in data/Gerencial_QOE.xlsx [-format text|json|csv]
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/qoe"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/logging"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/spreadsheet"
)

func main() {
	in := flag.String("in", "data/Gerencial_QOE.xlsx", "spreadsheet path or http(s) URL")
	format := flag.String("format", "text", "output format: text, json or csv")
	flag.Parse()

	logging.Init(logging.Config{Level: "warn", Format: "console"})

	rc, err := spreadsheet.NewSourceOpener().Open(context.Background(), *in)
	if err != nil {
		logging.Fatal().Err(err).Msg("open source")
	}
	defer rc.Close()

	table, err := spreadsheet.Parse(rc, *in)
	if err != nil {
		logging.Fatal().Err(err).Str("source", *in).Msg("parse spreadsheet")
	}

	report, err := qoe.BuildReport(table, time.Now())
	if err != nil {
		logging.Fatal().Err(err).Msg("build report")
	}

	if err := write(os.Stdout, report, *format); err != nil {
		logging.Fatal().Err(err).Msg("write report")
	}
}

func write(w io.Writer, report qoe.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"Seção", "Métrica", "Valor"}); err != nil {
			return err
		}
		for _, s := range report.Sections() {
			for _, line := range s.Lines {
				if err := cw.Write([]string{s.Title, line.Label, line.Text}); err != nil {
					return err
				}
			}
		}
		cw.Flush()
		return cw.Error()
	case "text":
		fmt.Fprintf(w, "%s\nData de Geração: %s\n", report.Title, report.GeneratedAt.Format("02/01/2006 15:04:05"))
		for _, s := range report.Sections() {
			fmt.Fprintf(w, "\n%s\n", s.Title)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, line := range s.Lines {
				fmt.Fprintf(tw, "  %s\t%s\n", line.Label, line.Text)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
