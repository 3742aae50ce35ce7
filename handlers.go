package emotiai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lovepop1/emotiaisupport/schema"
)

type toolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

func handleChat(client *Client) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		conversationID, err := request.RequireString("conversationId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		message, err := request.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		resp, err := client.Chat(ctx, ChatRequest{
			ConversationID: conversationID,
			Message:        message,
			SessionType:    request.GetString("sessionType", ""),
		})
		if err != nil {
			return toolError("chat", err), nil
		}
		return jsonResult(resp)
	}
}

func handleTakeaways(client *Client) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		conversationID, err := request.RequireString("conversationId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		resp, err := client.Takeaways(ctx, TakeawaysRequest{
			ConversationID: conversationID,
			SessionType:    request.GetString("sessionType", ""),
		})
		if err != nil {
			return toolError("takeaways", err), nil
		}
		return jsonResult(resp)
	}
}

func handleSearchGuides(client *Client) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		results, err := client.SearchGuides(ctx, query, request.GetInt("topK", 0))
		if err != nil {
			return toolError("search-guides", err), nil
		}
		type hit struct {
			ID       string  `json:"id"`
			Title    string  `json:"title"`
			Content  string  `json:"content"`
			Distance float64 `json:"distance"`
		}
		hits := make([]hit, 0, len(results))
		for _, r := range results {
			hits = append(hits, hit{
				ID:       r.Document.ID,
				Title:    r.Document.Title,
				Content:  r.Document.Content,
				Distance: r.Distance,
			})
		}
		return jsonResult(map[string]any{"guides": hits})
	}
}

func handleListGuides(client *Client) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := client.ListGuides(ctx)
		if err != nil {
			return toolError("list-guides", err), nil
		}
		type guide struct {
			ID       string `json:"id"`
			Title    string `json:"title"`
			Content  string `json:"content"`
			Embedded bool   `json:"embedded"`
		}
		guides := make([]guide, 0, len(docs))
		for _, d := range docs {
			guides = append(guides, guide{ID: d.ID, Title: d.Title, Content: d.Content, Embedded: d.Embedded()})
		}
		return jsonResult(map[string]any{"guides": guides})
	}
}

func handleAddGuide(client *Client) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := request.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		doc, err := client.AddGuide(ctx, request.GetString("title", ""), content)
		if err != nil {
			return toolError("add-guide", err), nil
		}
		return jsonResult(map[string]any{"id": doc.ID, "title": doc.Title})
	}
}

func handleIngestCorpus(client *Client) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := client.IngestCorpus(ctx, request.GetBool("force", false))
		if err != nil {
			return toolError("ingest-corpus", err), nil
		}
		return jsonResult(report)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError maps pipeline errors to user-safe tool messages. Provider
// and persistence details stay in the logs, not the tool output.
func toolError(tool string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, schema.ErrInvalidInput):
		return mcp.NewToolResultError(err.Error())
	case errors.Is(err, schema.ErrProviderFailure):
		return mcp.NewToolResultError(fmt.Sprintf("%s: upstream provider unavailable", tool))
	case errors.Is(err, schema.ErrPersistence):
		return mcp.NewToolResultError(fmt.Sprintf("%s: storage unavailable", tool))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s failed", tool))
	}
}
