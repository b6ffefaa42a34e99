package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dcdncp/lightschema"
)

func newJSONSchemaCmd(a *app) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "jsonschema --schema FILE",
		Short: "Print the JSON Schema projection of a schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema(cmd.Context(), schemaPath)
			if err != nil {
				return err
			}
			doc, err := lightschema.JSONSchema(s)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintln(a.out, indentJSON(doc))
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema definition file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
