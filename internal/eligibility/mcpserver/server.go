// Package mcpserver exposes the eligibility calculator as an MCP tool
// surface, the same SSE-transport pattern the control-plane server uses
// for its own tool set.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/calculator"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configstore"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/person"
)

// Version is injected from the API server's build metadata.
var Version = "dev"

// personLoader is satisfied by *personstore.Store; kept as an interface
// here so tests can substitute a fake without a live Postgres pool.
type personLoader interface {
	Load(ctx context.Context, nhsNumber string) (*person.View, error)
}

// Server exposes eligibility_check and eligibility_explain_cohort as MCP
// tools over an SSE transport, backed by a calculator.Facade, the
// campaign configstore, and the person store.
type Server struct {
	server  *mcp.Server
	handler http.Handler

	calc    *calculator.Facade
	configs *configstore.Store
	people  personLoader
	logger  logr.Logger
}

// New wires the eligibility MCP server surface.
func New(calc *calculator.Facade, configs *configstore.Store, people personLoader, logger logr.Logger) *Server {
	implVersion := Version
	if implVersion == "" {
		implVersion = "dev"
	}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "eligibility-signposting-api",
		Version: implVersion,
	}, nil)

	s := &Server{
		server:  srv,
		calc:    calc,
		configs: configs,
		people:  people,
		logger:  logger,
	}
	s.registerTools()
	s.handler = mcp.NewSSEHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	return s
}

// Handler returns the HTTP SSE transport handler mounted at /mcp.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.handler
}
