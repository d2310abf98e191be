package model

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jasonychoong/retire-server/internal/tools"
)

// defaultMaxToolRounds bounds how many tool-execution rounds a single
// Converse call will run before giving up on a final answer.
const defaultMaxToolRounds = 8

// AgentConfig carries everything an Agent needs to run a conversation.
type AgentConfig struct {
	Client    Client
	Tools     *tools.Registry
	System    string
	MaxRounds int
	Logger    *zap.Logger
}

// Agent drives the request and tool-execution loop for one conversational
// turn. It keeps calling the model while the model stops for tool use,
// executing the requested tools and feeding their results back in.
type Agent struct {
	client    Client
	registry  *tools.Registry
	defs      []ToolDefinition
	system    string
	maxRounds int
	logger    *zap.Logger
}

// NewAgent validates the configuration and returns a ready Agent.
func NewAgent(cfg AgentConfig) (*Agent, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("model client is required to build an agent")
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	agent := &Agent{
		client:    cfg.Client,
		registry:  cfg.Tools,
		system:    cfg.System,
		maxRounds: maxRounds,
		logger:    logger,
	}
	if cfg.Tools != nil {
		for _, tool := range cfg.Tools.Tools() {
			agent.defs = append(agent.defs, ToolDefinition{
				Name:        tool.Name(),
				Description: tool.Description(),
				InputSchema: tool.InputSchema(),
			})
		}
	}
	return agent, nil
}

// ModelID reports the identifier of the underlying client's model.
func (a *Agent) ModelID() string {
	return a.client.ModelID()
}

// Converse runs the model over the given messages until it produces a reply
// that does not request tools. The returned reply carries every content
// block produced along the way, tool results included, with token usage
// summed across rounds.
func (a *Agent) Converse(ctx context.Context, messages []Message) (*Reply, error) {
	working := append([]Message(nil), messages...)

	var blocks []ContentBlock
	var usage Usage
	for round := 0; round < a.maxRounds; round++ {
		reply, err := a.client.Complete(ctx, &Request{
			System:   a.system,
			Messages: working,
			Tools:    a.defs,
		})
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, reply.Blocks...)
		usage.Add(reply.Usage)

		if reply.StopReason != StopToolUse {
			return &Reply{Blocks: blocks, StopReason: reply.StopReason, Usage: &usage}, nil
		}

		results := a.executeTools(ctx, reply.Blocks)
		if len(results) == 0 {
			// Stop reason claimed tool use but no tool blocks arrived.
			return &Reply{Blocks: blocks, StopReason: reply.StopReason, Usage: &usage}, nil
		}
		blocks = append(blocks, results...)
		working = append(working, Message{Role: RoleAssistant, Blocks: reply.Blocks})
		working = append(working, Message{Role: RoleUser, Blocks: results})
	}
	return nil, fmt.Errorf("model kept requesting tools after %d rounds", a.maxRounds)
}

// executeTools runs every tool_use block through the registry and wraps the
// outcomes as tool_result blocks. A failed call becomes an error result for
// the model rather than aborting the turn.
func (a *Agent) executeTools(ctx context.Context, replyBlocks []ContentBlock) []ContentBlock {
	var results []ContentBlock
	for _, block := range replyBlocks {
		if block.Type != BlockToolUse {
			continue
		}
		var output string
		var err error
		if a.registry != nil {
			output, err = a.registry.Call(ctx, block.Name, block.Input)
		} else {
			err = fmt.Errorf("unknown tool %q", block.Name)
		}
		isError := err != nil
		if isError {
			output = err.Error()
			a.logger.Warn("tool call failed",
				zap.String("tool", block.Name),
				zap.Error(err))
		} else {
			a.logger.Debug("tool call completed",
				zap.String("tool", block.Name))
		}
		results = append(results, ContentBlock{
			Type:      BlockToolResult,
			ToolUseID: block.ID,
			Content:   []ContentBlock{{Type: BlockText, Text: output}},
			IsError:   isError,
		})
	}
	return results
}
