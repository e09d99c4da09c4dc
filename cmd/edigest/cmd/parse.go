package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Parse interchange files and print the tree",
	Long: `Parse one or more interchange files.

Formats:
  tree    indented interchange / message / segment outline (default)
  json    one JSON document per file
  yaml    one YAML document per file
  tokens  the raw token stream`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "tree", "Output format: tree, json, yaml, tokens")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	switch parseFormat {
	case "tree", "json", "yaml", "tokens":
	default:
		return fmt.Errorf("unknown format %q (want tree, json, yaml or tokens)", parseFormat)
	}

	out := cmd.OutOrStdout()
	var yamlEnc *yaml.Encoder
	if parseFormat == "yaml" {
		yamlEnc = yaml.NewEncoder(out)
		yamlEnc.SetIndent(2)
		defer yamlEnc.Close()
	}

	failed := 0
	for _, path := range args {
		doc, err := load(cmd, path)
		if err != nil {
			printError(cmd, "parse", err)
			failed++
			continue
		}

		switch parseFormat {
		case "tree":
			printTree(out, doc)
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				return err
			}
		case "yaml":
			if err := yamlEnc.Encode(doc); err != nil {
				return err
			}
		case "tokens":
			printTokens(out, doc)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
