package main

import (
	"encoding/json"
	"io"

	"github.com/couchcryptid/beach-bulletin-etl/internal/adapter/pdf"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/spf13/cobra"
)

// inspection is everything the pipeline would extract from one document.
type inspection struct {
	Pages       int                     `json:"pages"`
	Metadata    domain.BulletinMetadata `json:"metadata"`
	HeaderError string                  `json:"header_error,omitempty"`
	Days        domain.DayList          `json:"days"`
	Tables      []domain.RawTable       `json:"tables"`
	Rows        []domain.BeachRow       `json:"rows"`
	Report      domain.NormalizeReport  `json:"report"`
	Records     []domain.BeachRecord    `json:"records"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <pdf>",
		Short: "Print the header, raw tables and records extracted from a bulletin PDF",
		Long: "Runs the extraction stages on a local bulletin without touching the snapshot.\n" +
			"Use it to check the table heuristics after SEMACE changes the document layout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pdf.Opener{}.Open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()

			report, err := inspectDocument(doc)
			if err != nil {
				return err
			}
			return writeInspection(cmd.OutOrStdout(), report)
		},
	}
}

type inspectable interface {
	NumPages() int
	FirstPageText() (string, error)
	Tables() ([]domain.RawTable, error)
}

func inspectDocument(doc inspectable) (inspection, error) {
	out := inspection{Pages: doc.NumPages()}

	text, err := doc.FirstPageText()
	if err != nil {
		out.HeaderError = err.Error()
	}
	out.Metadata, err = domain.ParseHeader(text)
	if err != nil && out.HeaderError == "" {
		out.HeaderError = err.Error()
	}
	out.Days = domain.ExpandPeriod(out.Metadata.Period)

	out.Tables, err = doc.Tables()
	if err != nil {
		return out, err
	}
	out.Rows, out.Report = domain.NormalizeTables(out.Tables)
	out.Records = domain.Assemble(out.Metadata, out.Rows)
	return out, nil
}

func writeInspection(w io.Writer, in inspection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(in)
}
