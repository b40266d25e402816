package mcp

import (
	"context"

	"github.com/habiliai/agenteat/errors"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

type (
	MCPClient = client.MCPClient

	// ServerConfig describes an MCP server started over stdio.
	ServerConfig struct {
		Name    string            `json:"name" yaml:"name"`
		Command string            `json:"command" yaml:"command"`
		Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
		Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	}
)

// Connect starts the server process and completes the initialize handshake.
func Connect(ctx context.Context, conf ServerConfig, clientName, clientVersion string) (*client.Client, error) {
	env := make([]string, 0, len(conf.Env))
	for k, v := range conf.Env {
		env = append(env, k+"="+v)
	}

	c, err := client.NewStdioMCPClient(conf.Command, env, conf.Args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start mcp server %s", conf.Name)
	}

	if err := Initialize(ctx, c, clientName, clientVersion); err != nil {
		_ = c.Close()
		return nil, errors.Wrapf(err, "failed to initialize mcp server %s", conf.Name)
	}

	return c, nil
}

func Initialize(ctx context.Context, c MCPClient, clientName, clientVersion string) error {
	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}

	_, err := c.Initialize(ctx, initRequest)
	return err
}
