package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sameehj/warden/pkg/version"
	"github.com/spf13/cobra"
)

const defaultServerEndpoint = "http://127.0.0.1:8787/mcp"

func main() {
	rootCmd := &cobra.Command{
		Use:   "wardenctl",
		Short: "Call warden file operations over the MCP endpoint",
	}

	rootCmd.PersistentFlags().String("server", defaultServerEndpoint, "warden server endpoint")
	rootCmd.PersistentFlags().String("token", os.Getenv("WARDEN_AUTH_TOKEN"), "bearer token")

	rootCmd.AddCommand(
		toolsCmd(),
		analyzeCmd(),
		searchCmd(),
		organizeCmd(),
		replaceCmd(),
		deleteCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the operations the server announces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := callMethod(cmd, "initialize", nil)
			if err != nil {
				return err
			}
			fmt.Println(string(result))
			return nil
		},
	}
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <filename>",
		Short: "Scan a log file for lines matching a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, _ := cmd.Flags().GetString("pattern")
			return callTool(cmd, "analyze_logs", map[string]interface{}{
				"filename": args[0],
				"pattern":  pattern,
			})
		},
	}
	cmd.Flags().String("pattern", "", "regular expression to match")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search files by name, content, or date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			by, _ := cmd.Flags().GetString("by")
			return callTool(cmd, "search_files", map[string]interface{}{
				"query": args[0],
				"by":    by,
			})
		},
	}
	cmd.Flags().String("by", "name", "search mode: name, content, or date")
	return cmd
}

func organizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Group files into directories by extension or date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			by, _ := cmd.Flags().GetString("by")
			return callTool(cmd, "organize_files", map[string]interface{}{
				"by": by,
			})
		},
	}
	cmd.Flags().String("by", "extension", "grouping key: extension or date")
	return cmd
}

func replaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace <filename>",
		Short: "Replace every match of a pattern in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			replacement, _ := cmd.Flags().GetString("with")
			return callTool(cmd, "replace_text", map[string]interface{}{
				"filename": args[0],
				"search":   search,
				"replace":  replacement,
			})
		},
	}
	cmd.Flags().String("search", "", "regular expression to match")
	cmd.Flags().String("with", "", "replacement text")
	_ = cmd.MarkFlagRequired("search")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete a file (requires deletion enabled on the server)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callTool(cmd, "delete_file", map[string]interface{}{
				"filename": args[0],
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.String())
		},
	}
}

func callTool(cmd *cobra.Command, name string, arguments map[string]interface{}) error {
	result, err := callMethod(cmd, "tool_call", map[string]interface{}{
		"name":      name,
		"arguments": arguments,
	})
	if err != nil {
		return err
	}
	fmt.Println(string(result))
	return nil
}

func callMethod(cmd *cobra.Command, method string, params interface{}) (json.RawMessage, error) {
	endpoint := cmd.Flag("server").Value.String()
	token := cmd.Flag("token").Value.String()

	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		request["params"] = params
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call server: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response (status %s): %w", resp.Status, err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("server error %d: %s", payload.Error.Code, payload.Error.Message)
	}
	return payload.Result, nil
}
