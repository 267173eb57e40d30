// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"kenes/cli/internal/cache"
	"kenes/cli/internal/model"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Generate and download case documents",
}

var documentsTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List document templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := load(cmd, "Loading templates", func() (cache.Result[*model.Page[model.DocumentTemplate]], error) {
			return app.queries.DocumentTemplates(cmd.Context(), readOpts()...)
		})
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Results))
		for _, t := range page.Results {
			rows = append(rows, []string{
				t.Code, t.Name, orDash(t.DocumentType), strings.Join(t.ApplicationTypes, ", "), yesNo(t.IsActive),
			})
		}
		return render(cmd, page, []string{"Code", "Name", "Type", "Applications", "Active"}, rows)
	},
}

var documentsTemplateCmd = &cobra.Command{
	Use:   "template CODE",
	Short: "Show a template and the fields it requires",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := strings.TrimSpace(args[0])
		t, err := load(cmd, "Loading template", func() (cache.Result[*model.DocumentTemplate], error) {
			return app.queries.DocumentTemplate(cmd.Context(), code, readOpts()...)
		})
		if err != nil {
			return err
		}
		return renderFields(cmd, t, [][2]string{
			{"Code", t.Code},
			{"Name", t.Name},
			{"Type", orDash(t.DocumentType)},
			{"Description", orDash(t.Description)},
			{"Applications", orDash(strings.Join(t.ApplicationTypes, ", "))},
			{"Required fields", orDash(strings.Join(t.RequiredFields, ", "))},
			{"Active", yesNo(t.IsActive)},
		})
	},
}

var docsList struct {
	application int64
	status      string
	signature   string
	page        int
	filters     []string
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		named := map[string]string{
			"status":           docsList.status,
			"signature_status": docsList.signature,
		}
		if docsList.application > 0 {
			named["application"] = strconv.FormatInt(docsList.application, 10)
		}
		filters, err := listFilters(named, docsList.filters, docsList.page)
		if err != nil {
			return err
		}

		page, err := load(cmd, "Loading documents", func() (cache.Result[*model.Page[model.GeneratedDocument]], error) {
			return app.queries.Documents(cmd.Context(), filters, readOpts()...)
		})
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(page.Results))
		for _, d := range page.Results {
			appRef := "-"
			if d.Application != nil {
				appRef = orDash(d.Application.Number)
			}
			rows = append(rows, []string{
				strconv.FormatInt(d.ID, 10),
				orDash(d.Template.Name),
				appRef,
				orDash(d.Status),
				orDash(d.SignatureStatus),
				"v" + strconv.Itoa(d.Version),
				formatTime(&d.CreatedAt),
			})
		}
		if err := render(cmd, page, []string{"ID", "Template", "Application", "Status", "Signature", "Version", "Created"}, rows); err != nil {
			return err
		}
		pageFooter(cmd, page.Count, len(page.Results), page.Next)
		return nil
	},
}

var docsGenerate struct {
	template    string
	application int64
	fields      []string
	signature   string
}

var documentsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a document from a template",
	Args:  cobra.NoArgs,
	Example: `  kenes documents generate --template restructuring_request --application 42 \
    --field creditor_address="Abai ave 10" --signature eds`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parsePairs(docsGenerate.fields)
		if err != nil {
			return err
		}
		in := model.DocumentInput{
			TemplateCode:  strings.TrimSpace(docsGenerate.template),
			ApplicationID: docsGenerate.application,
			SignatureType: docsGenerate.signature,
		}
		if len(fields) > 0 {
			in.FieldValues = make(map[string]any, len(fields))
			for k, v := range fields {
				in.FieldValues[k] = v
			}
		}

		d, err := withSpinner(cmd, "Generating document", func() (*model.GeneratedDocument, error) {
			return app.queries.GenerateDocument(cmd.Context(), in)
		})
		if err != nil {
			return err
		}
		return renderFields(cmd, d, [][2]string{
			{"ID", strconv.FormatInt(d.ID, 10)},
			{"Template", orDash(d.Template.Name)},
			{"Status", orDash(d.Status)},
			{"Signature", orDash(d.SignatureStatus)},
			{"Version", strconv.Itoa(d.Version)},
			{"Created", formatTime(&d.CreatedAt)},
		})
	},
}

var docsDownload struct {
	file string
}

var documentsDownloadCmd = &cobra.Command{
	Use:   "download ID",
	Short: "Download the file of a generated document",
	Long: `Download saves the document file. Without --file the name suggested by the
service is used; pass --file - to write the content to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		blob, err := withSpinner(cmd, "Downloading document", func() (*model.Blob, error) {
			return app.queries.DownloadDocument(cmd.Context(), id)
		})
		if err != nil {
			return err
		}

		if docsDownload.file == "-" {
			_, err := cmd.OutOrStdout().Write(blob.Data)
			return err
		}
		path := downloadPath(docsDownload.file, blob.Filename, id)
		if err := os.WriteFile(path, blob.Data, 0o600); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Saved %s (%d bytes)", path, len(blob.Data))
		return nil
	},
}

// downloadPath picks the destination file. Names suggested by the server are
// reduced to their base name so they cannot escape the working directory.
func downloadPath(flag, suggested string, id int64) string {
	if flag != "" {
		return flag
	}
	name := filepath.Base(filepath.Clean("/" + suggested))
	if name == "/" || name == "." || name == "" {
		return "document-" + strconv.FormatInt(id, 10)
	}
	return name
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	lf := documentsListCmd.Flags()
	lf.Int64Var(&docsList.application, "application", 0, "Only documents of this application ID")
	lf.StringVar(&docsList.status, "status", "", "Filter by document status")
	lf.StringVar(&docsList.signature, "signature-status", "", "Filter by signature status")
	lf.IntVar(&docsList.page, "page", 0, "Page number")
	lf.StringArrayVar(&docsList.filters, "filter", nil, "Extra filter as key=value (repeatable)")

	gf := documentsGenerateCmd.Flags()
	gf.StringVar(&docsGenerate.template, "template", "", "Template code")
	gf.Int64Var(&docsGenerate.application, "application", 0, "Application ID")
	gf.StringArrayVar(&docsGenerate.fields, "field", nil, "Template field as key=value (repeatable)")
	gf.StringVar(&docsGenerate.signature, "signature", "", "Signature type (simple, eds)")
	_ = documentsGenerateCmd.MarkFlagRequired("template")
	_ = documentsGenerateCmd.MarkFlagRequired("application")

	documentsDownloadCmd.Flags().StringVarP(&docsDownload.file, "file", "f", "", "Destination path, or - for stdout")

	documentsCmd.AddCommand(documentsTemplatesCmd, documentsTemplateCmd, documentsListCmd,
		documentsGenerateCmd, documentsDownloadCmd)
	rootCmd.AddCommand(documentsCmd)
}
