package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/EvanZhouDev/scope-search/client"
	"github.com/EvanZhouDev/scope-search/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("SCOPE_API_URL")
	if apiURL == "" {
		apiURL = client.DefaultBaseURL
	}

	var opts []client.Option
	if apiKey := os.Getenv("SCOPE_API_KEY"); apiKey != "" {
		opts = append(opts, client.WithAPIKey(apiKey))
	}
	sc := client.New(apiURL, opts...)

	s := server.NewMCPServer(
		"scope",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	webSearchTool := mcp.NewTool("web_search",
		mcp.WithDescription("Search the web with DuckDuckGo and return the organic results (title, snippet and URL) in page order. Uses a headless browser behind a local scope-search service."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
	)
	s.AddTool(webSearchTool, handleWebSearch(sc))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleWebSearch(sc *client.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil || strings.TrimSpace(query) == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		results, err := sc.Search(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatResults(query, results)), nil
	}
}

// formatResults renders results as a numbered plain-text list.
func formatResults(query string, results []models.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results for %q.", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Results for %q:\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, r.Title, r.Href)
		if r.Name != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Name)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
