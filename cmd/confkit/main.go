package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/confkit/confkit/pkg/cli"
	"github.com/confkit/confkit/pkg/console"
)

var version = "dev"

// Global flags
var (
	formatFlag    string
	maxErrorsFlag int
)

var rootCmd = &cobra.Command{
	Use:   "confkit",
	Short: "Byte-preserving editor and validator for JSON, ENV, XML and YAML config files",
	Long: `confkit reads, validates and edits structured config files without
reformatting them: an edit replaces exactly the bytes of the addressed
value, so comments, whitespace and key order survive untouched.

Paths are dot-free segment lists. For JSON and YAML an all-digit
segment indexes an array ("profile skills 1"); for XML a trailing
"@name" segment selects an attribute; ENV paths are a single key.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate files, collecting multiple classified errors per file",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.ValidateFiles(args, formatFlag, maxErrorsFlag); err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
	},
}

var getCmd = &cobra.Command{
	Use:   "get <file> <path-segment>...",
	Short: "Print the raw bytes of the value at a path",
	Example: `  confkit get config.json profile skills 1
  confkit get app.xml connection @host
  confkit get .env API_KEY`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.GetValue(args[0], args[1:], formatFlag); err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
	},
}

var setCmd = &cobra.Command{
	Use:   "set <file> <path-segment>...",
	Short: "Replace the value at a path, preserving every other byte",
	Long: `Replace the value at a path. The new value is quoted and escaped as
the target format requires. The result goes to stdout unless --write
rewrites the file in place.`,
	Example: `  confkit set config.json age --value 43
  confkit set config.json name --value Mia --write
  confkit set app.xml connection @host --value 10.0.0.1 --write`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		value, _ := cmd.Flags().GetString("value")
		write, _ := cmd.Flags().GetBool("write")
		if err := cli.SetValue(args[0], args[1:], value, formatFlag, write); err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema <file>",
	Short: "Validate a JSON file against a JSON Schema, with source positions",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		schemaFile, _ := cmd.Flags().GetString("schema")
		draft, _ := cmd.Flags().GetString("draft")
		maxErrors, _ := cmd.Flags().GetInt("max-errors")
		noPositions, _ := cmd.Flags().GetBool("no-positions")
		err := cli.ValidateSchema(args[0], cli.SchemaOptions{
			SchemaFile:  schemaFile,
			Draft:       draft,
			MaxErrors:   maxErrors,
			NoPositions: noPositions,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <file>...",
	Short: "Revalidate files whenever they change",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.WatchFiles(args, formatFlag, maxErrorsFlag); err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "", "force file format: json, env, xml or yaml (default: detect from filename)")
	rootCmd.PersistentFlags().IntVar(&maxErrorsFlag, "max-errors", 10, "maximum errors to collect per file")
	rootCmd.Version = version

	setCmd.Flags().String("value", "", "the new value")
	setCmd.Flags().Bool("write", false, "rewrite the file in place instead of printing")
	_ = setCmd.MarkFlagRequired("value")

	schemaCmd.Flags().String("schema", "", "path to the JSON Schema file")
	schemaCmd.Flags().String("draft", "", "force schema draft: 4, 6, 7, 2019-09 or 2020-12")
	schemaCmd.Flags().Int("max-errors", 0, "maximum schema errors to report (default 50, cap 200)")
	schemaCmd.Flags().Bool("no-positions", false, "skip resolving errors to source positions")
	_ = schemaCmd.MarkFlagRequired("schema")

	rootCmd.AddCommand(validateCmd, getCmd, setCmd, schemaCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
