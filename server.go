package emotiai

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lovepop1/emotiaisupport/config"
)

const Version = "1.0.0"

// NewServer builds the MCP server exposing the chat pipeline as tools.
func NewServer(serverName string, cfg *config.Config) (*server.MCPServer, *Client, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create client: %w", err)
	}

	s := server.NewMCPServer(
		serverName,
		Version,
		server.WithInstructions("Mental-wellness chat assistant grounded in a curated corpus of therapeutic guidance documents"),
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewToolWithRawSchema("chat", "Answer a user message with a response grounded in relevant wellness guides and the conversation history", chatSchema()),
		server.ToolHandlerFunc(handleChat(client)),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("takeaways", "Summarize a conversation into key takeaways in a therapist's voice", takeawaysSchema()),
		server.ToolHandlerFunc(handleTakeaways(client)),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("search-guides", "Search the guidance corpus by semantic similarity", searchGuidesSchema()),
		server.ToolHandlerFunc(handleSearchGuides(client)),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("list-guides", "List all guidance documents in the corpus", listGuidesSchema()),
		server.ToolHandlerFunc(handleListGuides(client)),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("add-guide", "Embed and store a new guidance document", addGuideSchema()),
		server.ToolHandlerFunc(handleAddGuide(client)),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("ingest-corpus", "Backfill embeddings for guides that lack one", ingestCorpusSchema()),
		server.ToolHandlerFunc(handleIngestCorpus(client)),
	)

	return s, client, nil
}
