// warden-agent is the conversational loop: it hands a task to Claude along
// with the operations the server announces, executes the tool calls the model
// asks for against a running wardend, and feeds results back until the model
// answers or the iteration budget runs out.
//
// Usage:
//
//	warden-agent -server http://127.0.0.1:8787/mcp "move the logs into folders by day"
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joho/godotenv"
)

var (
	serverAddr = flag.String("server", "http://127.0.0.1:8787/mcp", "warden server endpoint")
	model      = flag.String("model", "claude-sonnet-4-20250514", "model to drive the loop")
	maxIters   = flag.Int("max-iters", 8, "maximum tool-call iterations")
	verbose    = flag.Bool("v", false, "verbose output")
)

const systemPrompt = `You operate a sandboxed file server through named operations.
Available operations and their arguments:
  analyze_logs  {"filename": string, "pattern": regex}
  search_files  {"query": string, "by": "name"|"content"|"date"}
  organize_files {"by": "extension"|"date"}
  replace_text  {"filename": string, "search": regex, "replace": string}
  delete_file   {"filename": string}   (may be disabled)
All paths are relative to the server's root directory.

Reply with EXACTLY ONE JSON object and nothing else:
  {"tool": "<operation>", "arguments": {...}}  to call an operation, or
  {"final": "<answer>"}                        when the task is done.`

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: warden-agent [flags] <task>")
		os.Exit(1)
	}
	task := strings.Join(flag.Args(), " ")

	token := os.Getenv("WARDEN_AUTH_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "WARDEN_AUTH_TOKEN not set")
		os.Exit(1)
	}
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "ANTHROPIC_API_KEY not set")
		os.Exit(1)
	}

	ctx := context.Background()
	bridge := &bridgeClient{endpoint: *serverAddr, token: token}

	tools, err := bridge.capabilities(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "server announces: %s\n", strings.Join(tools, ", "))
	}

	answer, err := runLoop(ctx, bridge, task, tools)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(answer)
}

func runLoop(ctx context.Context, bridge *bridgeClient, task string, tools []string) (string, error) {
	llm := anthropic.NewClient(option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")))

	user := fmt.Sprintf("Announced operations: %s\n\nTask: %s", strings.Join(tools, ", "), task)
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
	}

	for iter := 1; iter <= *maxIters; iter++ {
		resp, err := llm.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(*model),
			MaxTokens: 1024,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: messages,
		})
		if err != nil {
			return "", fmt.Errorf("llm error: %w", err)
		}

		var reply string
		for _, block := range resp.Content {
			if block.Type == "text" {
				reply = block.Text
				break
			}
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "=== iteration %d ===\n%s\n", iter, reply)
		}

		step, err := parseStep(reply)
		if err != nil {
			messages = append(messages,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(reply)),
				anthropic.NewUserMessage(anthropic.NewTextBlock("Could not parse that: "+err.Error()+". Reply with one JSON object.")),
			)
			continue
		}
		if step.Final != "" {
			return step.Final, nil
		}

		result, callErr := bridge.call(ctx, step.Tool, step.Arguments)
		feedback := "Result: " + result
		if callErr != nil {
			feedback = "Operation failed: " + callErr.Error()
		}
		messages = append(messages,
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(reply)),
			anthropic.NewUserMessage(anthropic.NewTextBlock(feedback)),
		)
	}

	return "", fmt.Errorf("max iterations reached")
}

type agentStep struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
	Final     string                 `json:"final"`
}

func parseStep(reply string) (*agentStep, error) {
	clean := strings.TrimSpace(reply)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	clean = strings.TrimSpace(clean)

	var step agentStep
	if err := json.Unmarshal([]byte(clean), &step); err != nil {
		return nil, err
	}
	if step.Final == "" && step.Tool == "" {
		return nil, fmt.Errorf("neither tool nor final present")
	}
	return &step, nil
}

// bridgeClient speaks the server's JSON-RPC envelope over HTTP.
type bridgeClient struct {
	endpoint string
	token    string
}

func (c *bridgeClient) capabilities(ctx context.Context) ([]string, error) {
	result, err := c.post(ctx, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "init",
		"method":  "initialize",
	})
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Capabilities struct {
			Tools []string `json:"tools"`
		} `json:"capabilities"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("decode capabilities: %w", err)
	}
	return parsed.Capabilities.Tools, nil
}

func (c *bridgeClient) call(ctx context.Context, name string, arguments map[string]interface{}) (string, error) {
	result, err := c.post(ctx, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tool_call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": arguments,
		},
	})
	if err != nil {
		return "", err
	}
	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return "", fmt.Errorf("decode result: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty result")
	}
	return parsed.Content[0].Text, nil
}

func (c *bridgeClient) post(ctx context.Context, request map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	httpClient := &http.Client{Timeout: 60 * time.Second}
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
