package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/buml/internal/modeling"
	"github.com/aretw0/buml/internal/presentation/graph"
	"github.com/aretw0/buml/internal/presentation/tui"
	"github.com/aretw0/buml/pkg/adapters/remote"
	"github.com/aretw0/buml/pkg/codec"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <token-file|-|url>",
	Short: "Describe an encoded domain model",
	Long: `Reads a domain model token from a file, from stdin ("-") or from a model
host URL and prints it.

Formats:
- markdown (default): tables and a Mermaid class diagram, styled on a terminal.
- mermaid: the class diagram only.
- info: the get_model_info summary.
- json: the decoded model document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readToken(cmd, args[0])
		if err != nil {
			return err
		}
		c := codec.New(codec.WithLogger(logger))
		m, err := c.Decode(token)
		if err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "markdown":
			render := tui.Renderer(func(md string) (string, error) { return md, nil })
			if f, ok := out.(*os.File); ok {
				if render, err = tui.NewRenderer(f); err != nil {
					return err
				}
			}
			text, err := render(tui.Report(m))
			if err != nil {
				return err
			}
			fmt.Fprint(out, text)
		case "mermaid":
			fmt.Fprint(out, graph.GenerateMermaid(m, nil))
		case "info":
			fmt.Fprintln(out, modeling.Info(m))
		case "json":
			data, err := c.Marshal(m)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
		default:
			return fmt.Errorf("unknown format %q (expected markdown, mermaid, info or json)", format)
		}
		return nil
	},
}

func readToken(cmd *cobra.Command, source string) (string, error) {
	switch {
	case source == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		locator := remote.New(remote.WithTimeout(cfg.RemoteTimeout), remote.WithLogger(logger))
		return locator.Download(cmd.Context(), source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, mermaid, info or json")
}
