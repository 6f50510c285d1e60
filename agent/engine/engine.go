package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Leasebot-Tour-Booking-Dialogue/agent/tool"
)

const (
	defaultMaxToolRounds = 8

	storageApologyReply = "Sorry, something went wrong on our side. Please try again in a moment."
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

// Engine is the task-completion engine: per turn it lets the chat model
// propose validator and action tool calls, executes only the ones the
// ordering guard admits, applies their outcomes to the session record, and
// returns the model's final prose reply.
type Engine struct {
	registry *statex.Registry
	model    einomodel.BaseChatModel
	tools    contractx.ToolGateway

	graphRunner  compose.Runnable[GraphInput, GraphOutput]
	systemPrompt string

	maxToolRounds int
	now           func() time.Time
}

var _ contractx.ChatEngine = (*Engine)(nil)

type Option func(*Engine)

func WithMaxToolRounds(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxToolRounds = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func New(
	ctx context.Context,
	registry *statex.Registry,
	chatModel einomodel.ToolCallingChatModel,
	tools contractx.ToolGateway,
	systemPrompt string,
	opts ...Option,
) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("session registry is required")
	}
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, errors.New("system prompt is required")
	}

	bound, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind leasing tools: %v", contractx.ErrModelInvoke, err)
	}

	e := &Engine{
		registry:      registry,
		model:         bound,
		tools:         tools,
		systemPrompt:  systemPrompt,
		maxToolRounds: defaultMaxToolRounds,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	graphRunner, err := e.compileHandleMessageGraph(ctx)
	if err != nil {
		return nil, err
	}
	e.graphRunner = graphRunner

	return e, nil
}

func (e *Engine) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := e.graphRunner.Invoke(ctx, GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// runDialogue holds the session lock for the whole turn: turns on one
// session are strictly serialized while other sessions proceed in parallel.
func (e *Engine) runDialogue(ctx context.Context, gs *GraphState) (*GraphState, error) {
	sess := e.registry.GetOrCreate(gs.SessionID)
	sess.Lock()
	defer sess.Unlock()

	st := sess.State
	sess.AppendHistory(schema.UserMessage(gs.Text))

	for round := 0; round < e.maxToolRounds; round++ {
		out, err := e.model.Generate(ctx, e.buildMessages(st, sess.History))
		if err != nil {
			return nil, fmt.Errorf("%w: generate: %v", contractx.ErrModelInvoke, err)
		}
		if out == nil {
			return nil, fmt.Errorf("%w: model returned nil message", contractx.ErrSchemaViolation)
		}

		if len(out.ToolCalls) == 0 {
			reply := strings.TrimSpace(out.Content)
			if reply == "" {
				return nil, fmt.Errorf("%w: model returned empty reply", contractx.ErrSchemaViolation)
			}
			sess.AppendHistory(schema.AssistantMessage(reply, nil))
			st.Touch(e.now())
			gs.Reply = reply
			return gs, nil
		}

		sess.AppendHistory(out)
		if err := e.executeToolCalls(ctx, sess, st, out.ToolCalls, gs); err != nil {
			return nil, err
		}
		if gs.Reply != "" {
			// storage trouble short-circuited the turn
			return gs, nil
		}
	}

	return nil, fmt.Errorf("%w: tool loop exceeded %d rounds", contractx.ErrSchemaViolation, e.maxToolRounds)
}

func (e *Engine) executeToolCalls(
	ctx context.Context,
	sess *statex.Session,
	st *statex.SessionState,
	calls []schema.ToolCall,
	gs *GraphState,
) error {
	for i, call := range calls {
		req, err := toToolRequest(call)
		if err != nil {
			answerCalls(sess, calls[i:], "malformed tool call")
			return err
		}

		if guardErr := guardToolCall(st, req); guardErr != nil {
			log.Warn().Str("session_id", st.SessionID).Str("tool", req.Tool).
				Str("stage", string(st.Stage)).Err(guardErr).Msg("tool call rejected by guard")
			sess.AppendHistory(toolResultMessage(call.ID, contractx.ToolResult{
				Tool:  req.Tool,
				Error: guardErr.Error(),
			}))
			continue
		}

		res, err := e.tools.Execute(ctx, req)
		if err != nil {
			// Storage is down or similar: fatal for this turn, harmless for
			// the session record, and the user gets a plain apology. The
			// failing call and every later call in the batch still get a tool
			// response, so the replayed transcript stays well formed.
			log.Error().Err(err).Str("session_id", st.SessionID).Str("tool", req.Tool).
				Msg("tool execution failed")
			answerCalls(sess, calls[i:], "temporarily unavailable")
			sess.AppendHistory(schema.AssistantMessage(storageApologyReply, nil))
			gs.Reply = storageApologyReply
			return nil
		}

		if err := applyToolResult(st, req, res, e.now()); err != nil {
			answerCalls(sess, calls[i:], "internal error")
			return err
		}
		log.Debug().Str("session_id", st.SessionID).Str("tool", req.Tool).
			Str("stage", string(st.Stage)).Msg("tool executed")
		sess.AppendHistory(toolResultMessage(call.ID, res))
	}
	return nil
}

// progressSummary is what the model sees about the session, instead of
// having to re-derive progress from the transcript.
type progressSummary struct {
	Stage      statex.Stage   `json:"stage"`
	Missing    []statex.Field `json:"missing_fields,omitempty"`
	Beds       int            `json:"beds,omitempty"`
	ProspectID int64          `json:"prospect_id,omitempty"`
	PropertyID int64          `json:"property_id,omitempty"`
	BookingID  int64          `json:"booking_id,omitempty"`
}

func (e *Engine) buildMessages(st *statex.SessionState, history []*schema.Message) []*schema.Message {
	summary, err := json.Marshal(progressSummary{
		Stage:      st.Stage,
		Missing:    st.Missing(),
		Beds:       st.Beds,
		ProspectID: st.ProspectID,
		PropertyID: st.PropertyID,
		BookingID:  st.BookingID,
	})
	if err != nil {
		summary = []byte(`{}`)
	}

	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs,
		schema.SystemMessage(e.systemPrompt),
		schema.SystemMessage("Session progress: "+string(summary)),
	)
	return append(msgs, history...)
}

func toToolRequest(call schema.ToolCall) (contractx.ToolRequest, error) {
	name := strings.TrimSpace(call.Function.Name)
	if name == "" {
		return contractx.ToolRequest{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return contractx.ToolRequest{}, fmt.Errorf("%w: invalid args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
		}
	}
	return contractx.ToolRequest{Tool: name, Args: args}, nil
}

// answerCalls appends an error tool response for each given call. Chat APIs
// reject a transcript in which an assistant tool call has no tool message, so
// an aborted batch must still answer everything it left unexecuted.
func answerCalls(sess *statex.Session, calls []schema.ToolCall, errMsg string) {
	for _, call := range calls {
		sess.AppendHistory(toolResultMessage(call.ID, contractx.ToolResult{
			Tool:  strings.TrimSpace(call.Function.Name),
			Error: errMsg,
		}))
	}
}

func toolResultMessage(callID string, res contractx.ToolResult) *schema.Message {
	payload, err := json.Marshal(res)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"tool":%q,"error":"unserializable result"}`, res.Tool))
	}
	return schema.ToolMessage(string(payload), callID, schema.WithToolName(res.Tool))
}
