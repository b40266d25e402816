package jsonrpc

import (
	"net/http"

	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/crew"
)

const (
	ChatServiceName  = "Chat"
	CrewsServiceName = "Crews"
)

type (
	ChatService struct {
		registry *chat.Registry
	}

	CrewsService struct {
		registry *chat.Registry
	}

	InitializeRequest struct {
		CrewID string `json:"crew_id,omitempty"`
		ChatID string `json:"chat_id,omitempty"`
	}

	SendRequest struct {
		Message string `json:"message"`
		CrewID  string `json:"crew_id,omitempty"`
		ChatID  string `json:"chat_id"`
	}

	ListCrewsRequest struct{}

	ListCrewsResponse struct {
		Status string      `json:"status"`
		Crews  []crew.Info `json:"crews"`
	}
)

func (s *ChatService) Initialize(r *http.Request, args *InitializeRequest, reply *chat.InitResult) error {
	res, err := s.registry.Initialize(r.Context(), args.CrewID, args.ChatID)
	if err != nil {
		return err
	}
	*reply = *res
	return nil
}

func (s *ChatService) Send(r *http.Request, args *SendRequest, reply *chat.Response) error {
	res, err := s.registry.Chat(r.Context(), args.CrewID, args.ChatID, args.Message)
	if err != nil {
		return err
	}
	*reply = *res
	return nil
}

func (s *CrewsService) List(_ *http.Request, _ *ListCrewsRequest, reply *ListCrewsResponse) error {
	reply.Status = chat.StatusSuccess
	reply.Crews = s.registry.Crews()
	return nil
}
