package crewtest

import (
	"context"

	"github.com/habiliai/agenteat/crew"
	"github.com/stretchr/testify/mock"
)

type Crew struct {
	mock.Mock
}

func (c *Crew) Submit(ctx context.Context, turn crew.Turn) (*crew.Reply, error) {
	args := c.Called(ctx, turn)
	reply, _ := args.Get(0).(*crew.Reply)
	return reply, args.Error(1)
}

// Factory hands out the same mock for every definition.
func Factory(c crew.Crew) crew.Factory {
	return func(context.Context, *crew.Definition) (crew.Crew, error) {
		return c, nil
	}
}

var (
	_ crew.Crew = (*Crew)(nil)
)
