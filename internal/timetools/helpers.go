// Package timetools provides the MCP tool handlers for time tracking and
// the estimation engine.
//
// Each tool handler follows the same pattern:
// - A struct with the engine injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Domain "not found" conditions come back as tool error results, never as
// Go errors; only store failures propagate.
package timetools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// listArg parses a comma-separated string argument into a slice, trimming
// whitespace and dropping empty items. Missing or empty args yield nil.
func listArg(req mcp.CallToolRequest, key string) []string {
	raw := req.GetString(key, "")
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// jsonResult renders a value as an indented-JSON tool result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
