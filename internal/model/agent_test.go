package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/jasonychoong/retire-server/internal/ledger"
	"github.com/jasonychoong/retire-server/internal/tools"
)

// scriptedClient returns canned replies in order and records every request
// it sees.
type scriptedClient struct {
	replies  []*Reply
	requests []*Request
	err      error
}

func (c *scriptedClient) Complete(_ context.Context, req *Request) (*Reply, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	if len(c.replies) == 0 {
		return &Reply{StopReason: StopEndTurn}, nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (c *scriptedClient) ModelID() string { return "test-model" }

type agentStore struct {
	events map[string][]json.RawMessage
}

func (s *agentStore) AppendEvent(sessionID, logName string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if s.events == nil {
		s.events = make(map[string][]json.RawMessage)
	}
	key := sessionID + "/" + logName
	s.events[key] = append(s.events[key], data)
	return nil
}

func (s *agentStore) ReadEvents(sessionID, logName string) ([]json.RawMessage, error) {
	return s.events[sessionID+"/"+logName], nil
}

func testRegistry(t *testing.T, store *agentStore) *tools.Registry {
	t.Helper()
	deps := tools.Deps{Ledger: ledger.NewTopicLedger(store), SessionID: "s1"}
	registry, err := tools.NewRegistry(deps, []string{"information"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return registry
}

func TestNewAgent_RequiresClient(t *testing.T) {
	_, err := NewAgent(AgentConfig{})
	if err == nil || !strings.Contains(err.Error(), "model client is required") {
		t.Errorf("NewAgent() error = %v, want missing-client error", err)
	}
}

func TestAgent_Converse(t *testing.T) {
	client := &scriptedClient{replies: []*Reply{
		{
			Blocks:     []ContentBlock{{Type: BlockText, Text: "Tell me about your pension."}},
			StopReason: StopEndTurn,
			Usage:      &Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		},
	}}
	agent, err := NewAgent(AgentConfig{Client: client, System: "You are a retirement advisor."})
	if err != nil {
		t.Fatalf("NewAgent() error = %v", err)
	}

	reply, err := agent.Converse(context.Background(), []Message{TextMessage(RoleUser, "hello")})
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}
	if got := reply.TextContent(); got != "Tell me about your pension." {
		t.Errorf("TextContent() = %q, want %q", got, "Tell me about your pension.")
	}
	if reply.StopReason != StopEndTurn {
		t.Errorf("StopReason = %q, want %q", reply.StopReason, StopEndTurn)
	}
	if reply.Usage.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", reply.Usage.TotalTokens)
	}
	if len(client.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(client.requests))
	}
	if client.requests[0].System != "You are a retirement advisor." {
		t.Errorf("System = %q, want the configured prompt", client.requests[0].System)
	}
}

func TestAgent_ConverseToolLoop(t *testing.T) {
	store := &agentStore{}
	client := &scriptedClient{replies: []*Reply{
		{
			Blocks: []ContentBlock{
				{Type: BlockText, Text: "Let me note that."},
				{Type: BlockToolUse, ID: "tu_1", Name: "information", Input: map[string]any{
					"topic": "income_cash_flow",
					"value": "pension of $2,100/month",
				}},
			},
			StopReason: StopToolUse,
			Usage:      &Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		},
		{
			Blocks:     []ContentBlock{{Type: BlockText, Text: "Noted, thanks."}},
			StopReason: StopEndTurn,
			Usage:      &Usage{InputTokens: 5, OutputTokens: 5, TotalTokens: 10},
		},
	}}
	agent, err := NewAgent(AgentConfig{Client: client, Tools: testRegistry(t, store)})
	if err != nil {
		t.Fatalf("NewAgent() error = %v", err)
	}

	reply, err := agent.Converse(context.Background(), []Message{TextMessage(RoleUser, "I get a pension")})
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}

	if reply.StopReason != StopEndTurn {
		t.Errorf("StopReason = %q, want %q", reply.StopReason, StopEndTurn)
	}
	if reply.Usage.TotalTokens != 40 {
		t.Errorf("TotalTokens = %d, want 40", reply.Usage.TotalTokens)
	}
	if got := reply.TextContent(); got != "Let me note that.\nNoted, thanks." {
		t.Errorf("TextContent() = %q", got)
	}

	var sawResult bool
	for _, block := range reply.Blocks {
		if block.Type == BlockToolResult && block.ToolUseID == "tu_1" {
			sawResult = true
			if got := block.ResultText(); got != "Recorded information for topic 'income_cash_flow'." {
				t.Errorf("ResultText() = %q", got)
			}
			if block.IsError {
				t.Error("IsError = true for a successful call")
			}
		}
	}
	if !sawResult {
		t.Error("reply blocks carry no tool_result for tu_1")
	}

	if len(store.events["s1/"+ledger.InformationLog]) != 1 {
		t.Error("information tool did not record the fact")
	}

	// The second request must replay the assistant turn and the tool result.
	if len(client.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(client.requests))
	}
	msgs := client.requests[1].Messages
	if len(msgs) != 3 {
		t.Fatalf("second request messages = %d, want 3", len(msgs))
	}
	if msgs[1].Role != RoleAssistant || msgs[2].Role != RoleUser {
		t.Errorf("roles = %q, %q, want assistant then user", msgs[1].Role, msgs[2].Role)
	}
	if msgs[2].Blocks[0].Type != BlockToolResult {
		t.Errorf("feedback block type = %q, want %q", msgs[2].Blocks[0].Type, BlockToolResult)
	}
	if len(client.requests[0].Tools) != 1 || client.requests[0].Tools[0].Name != "information" {
		t.Errorf("Tools = %+v, want the information definition", client.requests[0].Tools)
	}
}

func TestAgent_ConverseToolError(t *testing.T) {
	store := &agentStore{}
	client := &scriptedClient{replies: []*Reply{
		{
			Blocks: []ContentBlock{
				{Type: BlockToolUse, ID: "tu_1", Name: "information", Input: map[string]any{
					"topic": "winning_the_lottery",
					"value": "unlikely",
				}},
			},
			StopReason: StopToolUse,
		},
		{
			Blocks:     []ContentBlock{{Type: BlockText, Text: "Sorry, let me rephrase."}},
			StopReason: StopEndTurn,
		},
	}}
	agent, err := NewAgent(AgentConfig{Client: client, Tools: testRegistry(t, store)})
	if err != nil {
		t.Fatalf("NewAgent() error = %v", err)
	}

	reply, err := agent.Converse(context.Background(), []Message{TextMessage(RoleUser, "hi")})
	if err != nil {
		t.Fatalf("Converse() error = %v", err)
	}

	var result *ContentBlock
	for i := range reply.Blocks {
		if reply.Blocks[i].Type == BlockToolResult {
			result = &reply.Blocks[i]
		}
	}
	if result == nil {
		t.Fatal("no tool_result block in reply")
	}
	if !result.IsError {
		t.Error("IsError = false for a failed call")
	}
	if !strings.Contains(result.ResultText(), "invalid topic") {
		t.Errorf("ResultText() = %q, want the validation message", result.ResultText())
	}
	if len(store.events["s1/"+ledger.InformationLog]) != 0 {
		t.Error("failed call must not record a fact")
	}
}

func TestAgent_ConverseRoundCap(t *testing.T) {
	toolReply := func() *Reply {
		return &Reply{
			Blocks: []ContentBlock{
				{Type: BlockToolUse, ID: "tu_x", Name: "information", Input: map[string]any{
					"topic": "income_cash_flow",
					"value": "again",
				}},
			},
			StopReason: StopToolUse,
		}
	}
	client := &scriptedClient{replies: []*Reply{toolReply(), toolReply(), toolReply()}}
	agent, err := NewAgent(AgentConfig{Client: client, Tools: testRegistry(t, &agentStore{}), MaxRounds: 2})
	if err != nil {
		t.Fatalf("NewAgent() error = %v", err)
	}

	_, err = agent.Converse(context.Background(), []Message{TextMessage(RoleUser, "hi")})
	if err == nil || !strings.Contains(err.Error(), "after 2 rounds") {
		t.Errorf("Converse() error = %v, want round-cap error", err)
	}
}

func TestAgent_ConverseClientError(t *testing.T) {
	client := &scriptedClient{err: fmt.Errorf("boom")}
	agent, err := NewAgent(AgentConfig{Client: client})
	if err != nil {
		t.Fatalf("NewAgent() error = %v", err)
	}

	_, err = agent.Converse(context.Background(), []Message{TextMessage(RoleUser, "hi")})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Converse() error = %v, want the client error", err)
	}
}
