package chat_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/habiliai/agenteat/chat"
	"github.com/habiliai/agenteat/crew"
	crewtest "github.com/habiliai/agenteat/crew/test"
	"github.com/habiliai/agenteat/errors"
	"github.com/habiliai/agenteat/internal/mytesting"
	"github.com/habiliai/agenteat/memory"
	"github.com/habiliai/agenteat/session"
	"github.com/habiliai/agenteat/tool"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ChatTestSuite struct {
	mytesting.Suite

	crew     *crewtest.Crew
	sessions *session.Service
	memory   *memory.Service
	registry *chat.Registry
}

func (s *ChatTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.crew = &crewtest.Crew{}
	s.sessions = session.NewService(session.NewInMemoryStore(), slog.Default())
	s.memory = memory.NewService(memory.NewInMemoryStore(), memory.NewHashEmbedder(memory.HashEmbeddingDimension), slog.Default())

	second := crew.DefaultDefinition()
	second.ID = "late_night_crew"
	second.Name = "Late Night"

	registry, err := chat.NewRegistry(
		[]*crew.Definition{crew.DefaultDefinition(), second},
		crewtest.Factory(s.crew),
		s.sessions,
		slog.Default(),
		chat.WithMemory(s.memory),
		chat.WithHistoryLimit(4),
	)
	s.Require().NoError(err)
	s.registry = registry
}

func (s *ChatTestSuite) TearDownTest() {
	s.crew.AssertExpectations(s.T())
	s.Suite.TearDownTest()
}

func (s *ChatTestSuite) messages(chatID string) []session.Message {
	thread, err := s.registry.Thread(s, chatID)
	s.Require().NoError(err)
	return thread.Messages
}

func (s *ChatTestSuite) TestInitialize() {
	res, err := s.registry.Initialize(s, "", "")
	s.Require().NoError(err)
	s.Equal(chat.StatusSuccess, res.Status)
	s.Equal(crew.DefaultCrewID, res.CrewID)
	s.Equal("Agent Eat", res.CrewName)
	s.NotEmpty(res.Message)
	s.Len(res.RequiredInputs, 2)
	s.Empty(res.ChatID)

	threads, err := s.sessions.List(s)
	s.Require().NoError(err)
	s.Empty(threads)

	res, err = s.registry.Initialize(s, "late_night_crew", "chat-1")
	s.Require().NoError(err)
	s.Equal("Late Night", res.CrewName)
	s.Equal("chat-1", res.ChatID)

	thread, err := s.registry.Thread(s, "chat-1")
	s.Require().NoError(err)
	s.Equal("late_night_crew", thread.CrewID)
	s.Empty(thread.Messages)

	_, err = s.registry.Initialize(s, "unknown", "")
	s.True(errors.Is(err, errors.ErrNotFound))
	s.Equal("Crew with ID unknown not found", errors.DetailOf(err))

	_, err = s.registry.Thread(s, "missing")
	s.True(errors.Is(err, errors.ErrNotFound))
}

func (s *ChatTestSuite) TestChatValidation() {
	_, err := s.registry.Chat(s, "", "chat-1", "")
	s.True(errors.Is(err, errors.ErrInvalidParams))
	s.Equal("No message provided", errors.DetailOf(err))

	_, err = s.registry.Chat(s, "", "", "hello")
	s.True(errors.Is(err, errors.ErrInvalidParams))
	s.Equal("No chat ID provided. Unable to track conversation thread.", errors.DetailOf(err))

	_, err = s.registry.Chat(s, crew.DefaultCrewID, "chat-1", "hello")
	s.True(errors.Is(err, errors.ErrNotInitialized))
	s.Equal("No crew has been initialized. Please select a crew first.", errors.DetailOf(err))
}

func (s *ChatTestSuite) TestProcessAdvancesOrderAndRemembers() {
	s.Require().NoError(s.registry.Preload(s, ""))

	s.crew.On("Submit", mock.Anything, mock.MatchedBy(func(turn crew.Turn) bool {
		return turn.UserMessage == "my postal code is SW1A 1AA" && len(turn.History) == 0
	})).Return(&crew.Reply{Content: "Thanks! What would you like to eat?"}, nil).Once()

	res, err := s.registry.Chat(s, "", "chat-1", "my postal code is SW1A 1AA")
	s.Require().NoError(err)
	s.Equal("browsing", res.OrderState)
	s.Equal(crew.DefaultCrewID, res.CrewID)
	s.NotNil(res.ToolCalls)

	s.crew.On("Submit", mock.Anything, mock.MatchedBy(func(turn crew.Turn) bool {
		return turn.UserMessage == "add kung pao chicken from Xin Kai" &&
			len(turn.History) == 2 &&
			turn.ChatID == "chat-1"
	})).Run(func(args mock.Arguments) {
		turn := args.Get(1).(crew.Turn)
		s.Contains(turn.Context, "User: my postal code is SW1A 1AA")
		s.NotContains(turn.Context, "Assistant:")
	}).Return(&crew.Reply{
		Content: "Added to your cart.",
		ToolCalls: []tool.CallData{
			{Name: tool.GetRestaurantMenuName, Result: &tool.GetRestaurantMenuResponse{Name: "Xin Kai"}},
			{Name: tool.AddToCartName, Result: &tool.AddToCartResponse{Restaurant: "Xin Kai"}},
		},
	}, nil).Once()

	res, err = s.registry.Chat(s, crew.DefaultCrewID, "chat-1", "add kung pao chicken from Xin Kai")
	s.Require().NoError(err)
	s.Equal("cart", res.OrderState)
	s.Len(res.ToolCalls, 2)

	msgs := s.messages("chat-1")
	s.Require().Len(msgs, 4)
	s.Equal(session.RoleUser, msgs[2].Role)
	s.Equal(session.RoleAssistant, msgs[3].Role)
	s.Equal("Added to your cart.", msgs[3].Content)

	thread, err := s.registry.Thread(s, "chat-1")
	s.Require().NoError(err)
	s.Equal("cart", thread.OrderState)

	memories, err := s.memory.List(s, "chat-1")
	s.Require().NoError(err)
	var values []string
	for _, m := range memories {
		values = append(values, m.Value)
	}
	s.ElementsMatch([]string{
		"User: my postal code is SW1A 1AA",
		"Assistant: Thanks! What would you like to eat?",
		"User: add kung pao chicken from Xin Kai",
		"Assistant: Added to your cart.",
	}, values)
}

func (s *ChatTestSuite) TestHistoryIsLimited() {
	s.Require().NoError(s.registry.Preload(s, ""))

	s.crew.On("Submit", mock.Anything, mock.MatchedBy(func(turn crew.Turn) bool {
		return len(turn.History) <= 4
	})).Return(&crew.Reply{Content: "ok"}, nil).Times(4)

	for i := range 4 {
		_, err := s.registry.Chat(s, "", "chat-1", fmt.Sprintf("message %d", i))
		s.Require().NoError(err)
	}
	s.Len(s.messages("chat-1"), 8)
}

func (s *ChatTestSuite) TestFailedTurnKeepsUserMessage() {
	s.Require().NoError(s.registry.Preload(s, ""))

	s.crew.On("Submit", mock.Anything, mock.Anything).
		Return(nil, errors.New("model is down")).Once()

	_, err := s.registry.Chat(s, "", "chat-1", "pizza please")
	s.Require().Error(err)
	s.Contains(err.Error(), "model is down")

	msgs := s.messages("chat-1")
	s.Require().Len(msgs, 1)
	s.Equal(session.RoleUser, msgs[0].Role)
	s.Equal("pizza please", msgs[0].Content)
}

func (s *ChatTestSuite) TestEmptyReplyFallsBack() {
	s.Require().NoError(s.registry.Preload(s, ""))

	s.crew.On("Submit", mock.Anything, mock.Anything).
		Return(&crew.Reply{}, nil).Once()

	res, err := s.registry.Chat(s, "", "chat-1", "hello")
	s.Require().NoError(err)
	s.Equal(chat.FallbackReply, res.Content)
	s.Equal(chat.FallbackReply, s.messages("chat-1")[1].Content)
}

func (s *ChatTestSuite) TestSwitchingChatIDsKeepsHistories() {
	s.Require().NoError(s.registry.Preload(s, ""))
	s.crew.On("Submit", mock.Anything, mock.Anything).
		Return(&crew.Reply{Content: "ok"}, nil)

	for _, turn := range []struct{ chatID, message string }{
		{"chat-a", "a1"},
		{"chat-b", "b1"},
		{"chat-a", "a2"},
		{"chat-b", "b2"},
	} {
		_, err := s.registry.Chat(s, "", turn.chatID, turn.message)
		s.Require().NoError(err)
	}

	_, err := s.registry.Initialize(s, "", "chat-a")
	s.Require().NoError(err)

	contents := func(chatID string) []string {
		var out []string
		for _, m := range s.messages(chatID) {
			out = append(out, m.Content)
		}
		return out
	}
	s.Equal([]string{"a1", "ok", "a2", "ok"}, contents("chat-a"))
	s.Equal([]string{"b1", "ok", "b2", "ok"}, contents("chat-b"))
}

func (s *ChatTestSuite) TestChatSwitchesActiveCrew() {
	_, err := s.registry.Initialize(s, "late_night_crew", "")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.Preload(s, crew.DefaultCrewID))

	s.crew.On("Submit", mock.Anything, mock.Anything).
		Return(&crew.Reply{Content: "ok"}, nil)

	res, err := s.registry.Chat(s, "late_night_crew", "chat-1", "hi")
	s.Require().NoError(err)
	s.Equal("late_night_crew", res.CrewID)

	res, err = s.registry.Chat(s, "", "chat-1", "hi again")
	s.Require().NoError(err)
	s.Equal("late_night_crew", res.CrewID)

	// unknown ids fall back to the active crew
	res, err = s.registry.Chat(s, "nope", "chat-1", "still there?")
	s.Require().NoError(err)
	s.Equal("late_night_crew", res.CrewID)
}

func (s *ChatTestSuite) TestConcurrentTurnsOnOneSession() {
	s.Require().NoError(s.registry.Preload(s, ""))
	s.crew.On("Submit", mock.Anything, mock.Anything).
		Return(&crew.Reply{Content: "ok"}, nil)

	const n = 10
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.registry.Chat(s, "", "chat-1", fmt.Sprintf("message %d", i))
			s.NoError(err)
		}()
	}
	wg.Wait()

	msgs := s.messages("chat-1")
	s.Require().Len(msgs, 2*n)
	for i, m := range msgs {
		if i%2 == 0 {
			s.Equal(session.RoleUser, m.Role)
		} else {
			s.Equal(session.RoleAssistant, m.Role)
		}
	}
}

func (s *ChatTestSuite) TestSlowCrewLoadDoesNotBlockChat() {
	started := make(chan struct{})
	release := make(chan struct{})
	factory := func(ctx context.Context, def *crew.Definition) (crew.Crew, error) {
		if def.ID == "late_night_crew" {
			close(started)
			<-release
		}
		return s.crew, nil
	}

	second := crew.DefaultDefinition()
	second.ID = "late_night_crew"
	registry, err := chat.NewRegistry(
		[]*crew.Definition{crew.DefaultDefinition(), second},
		factory,
		s.sessions,
		slog.Default(),
	)
	s.Require().NoError(err)
	s.Require().NoError(registry.Preload(s, ""))

	s.crew.On("Submit", mock.Anything, mock.Anything).
		Return(&crew.Reply{Content: "ok"}, nil)

	loaded := make(chan error, 1)
	go func() {
		_, err := registry.Initialize(s, "late_night_crew", "chat-2")
		loaded <- err
	}()
	<-started

	chatted := make(chan error, 1)
	go func() {
		_, err := registry.Chat(s, crew.DefaultCrewID, "chat-1", "hi")
		chatted <- err
	}()
	select {
	case err := <-chatted:
		s.Require().NoError(err)
	case <-time.After(5 * time.Second):
		s.FailNow("chat waited for another crew to load")
	}

	close(release)
	s.Require().NoError(<-loaded)

	res, err := registry.Chat(s, "", "chat-2", "hi again")
	s.Require().NoError(err)
	s.Equal("late_night_crew", res.CrewID)
}

func TestChat(t *testing.T) {
	suite.Run(t, new(ChatTestSuite))
}
