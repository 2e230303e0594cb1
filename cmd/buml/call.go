package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// errToolFailed signals a tool error result; the text is already printed.
var errToolFailed = errors.New("tool call failed")

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke a single tool and print its result",
	Long: `Invokes a tool without an MCP client. Argument values are parsed as YAML
scalars or lists, so --arg literals='[RED, GREEN]' and --arg is_abstract=true work.

  buml call new_model_base64 --arg name=Library
  buml call add_class_base64 --arg domain_model_base64=$TOKEN --arg name=Book`,
	Args: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			return nil
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("dist") {
			cfg.Dist, _ = cmd.Flags().GetBool("dist")
		}
		if cmd.Flags().Changed("store") {
			cfg.Store.Backend, _ = cmd.Flags().GetString("store")
		}
		rt, err := buildRuntime(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		if list, _ := cmd.Flags().GetBool("list"); list {
			for _, name := range rt.Server.ToolNames() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		raw, _ := cmd.Flags().GetStringArray("arg")
		jsonArgs, _ := cmd.Flags().GetString("json")
		toolArgs, err := parseToolArgs(raw, jsonArgs)
		if err != nil {
			return err
		}

		res, err := rt.Server.Call(cmd.Context(), args[0], toolArgs)
		if err != nil {
			return err
		}
		text := resultText(res)
		if res.IsError {
			fmt.Fprintln(cmd.ErrOrStderr(), text)
			return errToolFailed
		}
		fmt.Fprintln(out, text)
		return nil
	},
}

// parseToolArgs merges the --json object with the key=value pairs; pairs win.
func parseToolArgs(pairs []string, jsonArgs string) (map[string]any, error) {
	args := make(map[string]any)
	if jsonArgs != "" {
		if err := json.Unmarshal([]byte(jsonArgs), &args); err != nil {
			return nil, fmt.Errorf("parse --json: %w", err)
		}
	}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q (expected key=value)", pair)
		}
		args[key] = parseValue(raw)
	}
	return args, nil
}

func parseValue(raw string) any {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	switch v.(type) {
	case string, bool, int, float64, []any:
		return v
	}
	return raw
}

func resultText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringArray("arg", nil, "Tool argument as key=value (repeatable)")
	callCmd.Flags().String("json", "", "Tool arguments as a JSON object")
	callCmd.Flags().Bool("list", false, "List the available tools and exit")
	callCmd.Flags().Bool("dist", false, "Use the *_with_url tool set")
	callCmd.Flags().String("store", "memory", "Active model store: memory, file or redis")
}
