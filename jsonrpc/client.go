package jsonrpc

import (
	"context"
	"net/http"

	"github.com/habiliai/agenteat/chat"
	"github.com/ybbus/jsonrpc/v3"
)

type (
	Client interface {
		Initialize(ctx context.Context, request *InitializeRequest) (*chat.InitResult, error)
		Send(ctx context.Context, request *SendRequest) (*chat.Response, error)
		ListCrews(ctx context.Context) (*ListCrewsResponse, error)
	}

	client struct {
		client jsonrpc.RPCClient
	}
)

func NewClient(url string) Client {
	return &client{
		client: jsonrpc.NewClient(url),
	}
}

func NewClientWithHttpClient(url string, httpClient *http.Client) Client {
	return &client{
		client: jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
			HTTPClient: httpClient,
		}),
	}
}

func (c *client) Initialize(ctx context.Context, request *InitializeRequest) (*chat.InitResult, error) {
	var response chat.InitResult
	if err := c.client.CallFor(ctx, &response, ChatServiceName+".Initialize", request); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *client) Send(ctx context.Context, request *SendRequest) (*chat.Response, error) {
	var response chat.Response
	if err := c.client.CallFor(ctx, &response, ChatServiceName+".Send", request); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *client) ListCrews(ctx context.Context) (*ListCrewsResponse, error) {
	var response ListCrewsResponse
	if err := c.client.CallFor(ctx, &response, CrewsServiceName+".List", &ListCrewsRequest{}); err != nil {
		return nil, err
	}
	return &response, nil
}
