package jsonrpc_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/crew"
	crewtest "github.com/habiliai/agenteat/crew/test"
	"github.com/habiliai/agenteat/internal/mytesting"
	"github.com/habiliai/agenteat/jsonrpc"
	"github.com/habiliai/agenteat/session"
	"github.com/habiliai/agenteat/tool"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type Suite struct {
	mytesting.Suite

	crew   *crewtest.Crew
	server *httptest.Server
	client jsonrpc.Client
}

func (s *Suite) SetupTest() {
	s.Suite.SetupTest()

	s.crew = &crewtest.Crew{}
	registry, err := chat.NewRegistry(
		[]*crew.Definition{crew.DefaultDefinition()},
		crewtest.Factory(s.crew),
		session.NewService(session.NewInMemoryStore(), slog.Default()),
		slog.Default(),
	)
	s.Require().NoError(err)

	handler, err := jsonrpc.NewHandler(registry, slog.Default())
	s.Require().NoError(err)

	mux := http.NewServeMux()
	mux.Handle("/rpc", handler)
	s.server = httptest.NewServer(mux)
	s.client = jsonrpc.NewClientWithHttpClient(s.server.URL+"/rpc", s.server.Client())
}

func (s *Suite) TearDownTest() {
	s.server.Close()
	s.crew.AssertExpectations(s.T())
	s.Suite.TearDownTest()
}

func (s *Suite) TestListCrews() {
	resp, err := s.client.ListCrews(s)
	s.Require().NoError(err)
	s.Equal(chat.StatusSuccess, resp.Status)
	s.Require().Len(resp.Crews, 1)
	s.Equal(crew.DefaultCrewID, resp.Crews[0].ID)
	s.Equal("Agent Eat", resp.Crews[0].Name)
}

func (s *Suite) TestInitializeAndSend() {
	// Given
	s.crew.On("Submit", mock.Anything, mock.MatchedBy(func(turn crew.Turn) bool {
		return turn.ChatID == "chat-1" && turn.UserMessage == "one pizza please"
	})).Return(&crew.Reply{
		Content: "Margherita Pizza from Pizza Place is £10.99.",
		ToolCalls: []tool.CallData{
			{Name: tool.FoodSearchName, Result: tool.FoodSearch(tool.FoodSearchRequest{PostalCode: "SW1A 1AA", Keywords: "pizza"})},
		},
	}, nil).Once()

	// When
	initRes, err := s.client.Initialize(s, &jsonrpc.InitializeRequest{ChatID: "chat-1"})
	s.Require().NoError(err)
	s.Equal(chat.StatusSuccess, initRes.Status)
	s.Equal("chat-1", initRes.ChatID)

	res, err := s.client.Send(s, &jsonrpc.SendRequest{ChatID: "chat-1", Message: "one pizza please"})

	// Then
	s.Require().NoError(err)
	s.Equal("Margherita Pizza from Pizza Place is £10.99.", res.Content)
	s.Equal("browsing", res.OrderState)
	s.Require().Len(res.ToolCalls, 1)
	s.Equal(tool.FoodSearchName, res.ToolCalls[0].Name)
}

func (s *Suite) TestSendErrors() {
	_, err := s.client.Send(s, &jsonrpc.SendRequest{ChatID: "chat-1"})
	s.Require().Error(err)
	s.Contains(err.Error(), "No message provided")

	_, err = s.client.Send(s, &jsonrpc.SendRequest{ChatID: "chat-1", Message: "hi"})
	s.Require().Error(err)
	s.Contains(err.Error(), "No crew has been initialized")
}

func (s *Suite) TestInvalidRequestEnvelope() {
	for _, tc := range []struct {
		name        string
		method      string
		contentType string
		detail      string
	}{
		{name: "get", method: http.MethodGet, detail: "rpc: POST method required, received GET"},
		{name: "form", method: http.MethodPost, contentType: "text/plain", detail: `rpc: unsupported Content-Type "text/plain"`},
	} {
		s.Run(tc.name, func() {
			var body io.Reader
			if tc.method == http.MethodPost {
				body = strings.NewReader(`{"jsonrpc":"2.0","method":"Crews.List","params":{},"id":1}`)
			}
			req, err := http.NewRequestWithContext(s, tc.method, s.server.URL+"/rpc", body)
			s.Require().NoError(err)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}

			resp, err := s.server.Client().Do(req)
			s.Require().NoError(err)
			defer resp.Body.Close()

			s.Equal(http.StatusBadRequest, resp.StatusCode)
			var out struct {
				Version string       `json:"jsonrpc"`
				Error   *json2.Error `json:"error"`
			}
			s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
			s.Equal("2.0", out.Version)
			s.Require().NotNil(out.Error)
			s.Equal(json2.E_INVALID_REQ, out.Error.Code)
			s.Equal(tc.detail, out.Error.Message)
		})
	}
}

func TestJsonRpc(t *testing.T) {
	suite.Run(t, new(Suite))
}
