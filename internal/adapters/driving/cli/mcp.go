package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperqa/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the paper library to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve papers over the Model Context Protocol so an assistant can list,
search and question them.

Tools:      list_papers, search_paper, ask_paper, summarize_paper
Resources:  paperqa://papers
            paperqa://papers/{paperId}
            paperqa://conversations/{conversationId}

Without --port the server speaks JSON-RPC over stdio. With --port it serves
streamable HTTP at /mcp and a library summary at /healthz.

Examples:
  paperqa mcp serve
  paperqa mcp serve --port 8080 --host 0.0.0.0

Client configuration:
  {"mcpServers": {"paperqa": {"command": "paperqa", "args": ["mcp", "serve"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 serves stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP listen host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Papers:        paperService,
		Chat:          chatService,
		Index:         indexService,
		Summarization: summarizationService,
	})
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s%s\n", addr, mcp.MCPPath)
	return server.RunHTTP(cmd.Context(), addr)
}
