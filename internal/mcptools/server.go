// Package mcptools exposes impact analysis as Model Context Protocol tools.
package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewImpactMCPServer creates an MCP server with the impact_analysis and
// resolve_entity tools registered.
func NewImpactMCPServer(svc *ImpactService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "scimpact",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "impact_analysis",
		Description: "Explain what breaks if a supplier fails. Returns the parts it directly supplies, the products reached through multi-tier bills of materials (with the witnessing component), the regions in its delivery footprint (with the witnessing facility), the evidence text, and a best-effort narrative.",
	}, svc.ImpactAnalysis)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_entity",
		Description: "Resolve a display name to its canonical knowledge-graph identifier using a case-insensitive exact label match.",
	}, svc.ResolveEntity)

	return server
}

// RunStdio runs server on stdio, blocking until stdin closes or ctx ends.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves server over streamable HTTP on addr until ctx is cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
