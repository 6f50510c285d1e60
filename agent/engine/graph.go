package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
}

type GraphState struct {
	SessionID string
	Text      string

	Reply string
}

func validateRequest(in GraphInput) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}
	return &GraphState{
		SessionID: sessionID,
		Text:      text,
	}, nil
}

func finalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: engine produced empty reply", contractx.ErrValidation)
	}
	return GraphOutput{Reply: reply}, nil
}

func (e *Engine) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*GraphState, error) {
			return validateRequest(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("run_dialogue",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return e.runDialogue(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_dialogue: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (GraphOutput, error) {
			return finalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "run_dialogue"},
		{"run_dialogue", "finalize_reply"},
		{"finalize_reply", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("leasing.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile handle_message graph: %w", err)
	}
	return runner, nil
}
