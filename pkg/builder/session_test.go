package builder_test

import (
	"reflect"
	"testing"

	"github.com/johnathanchiu/componentize/pkg/builder"
	"github.com/johnathanchiu/componentize/pkg/builder/effects"
	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/internal/testutil"
	"github.com/johnathanchiu/componentize/pkg/builder/transcript"
)

func newSession() *builder.Session {
	return builder.NewSession(builder.Dependencies{})
}

func feed(s *builder.Session, isResume bool, evts ...events.Event) {
	for _, evt := range evts {
		s.HandleEvent(evt, isResume)
	}
}

// scenarioEvents is the canonical full turn: thinking, one tool call
// with its result, closing text, complete.
func scenarioEvents() []events.Event {
	return testutil.Sequenced(0,
		testutil.TurnStart(),
		testutil.Thinking("Let"),
		testutil.Thinking(" me check"),
		testutil.Tool("tu_1", "read"),
		testutil.ToolOK("tu_1", "ok"),
		testutil.Text("Done."),
		testutil.Complete(""),
	)
}

func lastMessage(t *testing.T, s *builder.Session) transcript.Message {
	t.Helper()
	msgs := s.Messages()
	if len(msgs) == 0 {
		t.Fatal("no messages")
	}

	return msgs[len(msgs)-1]
}

func assertScenarioABlocks(t *testing.T, msg transcript.Message) {
	t.Helper()

	if msg.IsStreaming {
		t.Fatal("message should be settled")
	}
	if len(msg.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(msg.Blocks))
	}

	thinking, ok := msg.Blocks[0].(*transcript.ThinkingBlock)
	if !ok || thinking.Content != "Let me check" {
		t.Fatalf("block 0 = %#v, want Thinking(%q)", msg.Blocks[0], "Let me check")
	}

	tc, ok := msg.Blocks[1].(*transcript.ToolCallBlock)
	if !ok || tc.ID != "tu_1" || tc.Status != events.ToolSuccess || tc.Result != "ok" {
		t.Fatalf("block 1 = %#v, want ToolCall(tu_1, success, ok)", msg.Blocks[1])
	}

	text, ok := msg.Blocks[2].(*transcript.TextBlock)
	if !ok || text.Content != "Done." {
		t.Fatalf("block 2 = %#v, want Text(%q)", msg.Blocks[2], "Done.")
	}
}

func TestFullTurn(t *testing.T) {
	s := newSession()
	feed(s, false, scenarioEvents()...)

	assertScenarioABlocks(t, lastMessage(t, s))
	if s.Status() != builder.StatusIdle {
		t.Fatalf("status = %q, want idle", s.Status())
	}
}

func TestReplayedBatchesMatchSingleDelivery(t *testing.T) {
	evts := scenarioEvents()

	// Single continuous delivery.
	live := newSession()
	feed(live, false, evts...)

	// Two batches, the second re-delivering tool_call and tool_result.
	resumed := newSession()
	feed(resumed, false, evts[:5]...)
	feed(resumed, true, evts[3:]...)

	liveMsg := lastMessage(t, live)
	resumedMsg := lastMessage(t, resumed)
	if !blocksEqual(liveMsg.Blocks, resumedMsg.Blocks) {
		t.Fatalf("replayed blocks diverge:\nlive:    %#v\nresumed: %#v",
			liveMsg.Blocks, resumedMsg.Blocks)
	}
	if len(resumed.ToolCalls()) != 1 {
		t.Fatalf("ledger records = %d, want 1", len(resumed.ToolCalls()))
	}
}

func TestTurnStartContinuesPreOpenedMessage(t *testing.T) {
	s := newSession()
	s.AddUserMessage("go")
	s.StartAssistantMessage()

	feed(s, false, scenarioEvents()...)

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2 (no phantom assistant message)", len(msgs))
	}
	for i, msg := range msgs {
		if msg.Failed {
			t.Fatalf("message %d marked failed", i)
		}
	}
	assertScenarioABlocks(t, msgs[1])
}

func TestReplayFromZeroMatchesLive(t *testing.T) {
	evts := testutil.Sequenced(0,
		testutil.UserMsg("make a button"),
		testutil.TurnStart(),
		testutil.Thinking("plan"),
		testutil.Tool("tu_1", "create_component"),
		testutil.ToolOK("tu_1", "created"),
		testutil.Text("Created a button."),
		testutil.Complete(""),
	)

	live := newSession()
	live.AddUserMessage("make a button")
	live.StartAssistantMessage()
	feed(live, false, evts[1:]...)

	resumed := newSession()
	feed(resumed, true, evts...)

	liveMsgs := live.Messages()
	resumedMsgs := resumed.Messages()
	if len(liveMsgs) != len(resumedMsgs) {
		t.Fatalf("message counts diverge: live %d, resumed %d", len(liveMsgs), len(resumedMsgs))
	}
	for i := range liveMsgs {
		if liveMsgs[i].Role != resumedMsgs[i].Role {
			t.Fatalf("message %d role diverges", i)
		}
		if !blocksEqual(liveMsgs[i].Blocks, resumedMsgs[i].Blocks) {
			t.Fatalf("message %d blocks diverge", i)
		}
	}
}

func TestToolErrorDoesNotAbortTurn(t *testing.T) {
	s := newSession()
	feed(s, false, testutil.Sequenced(0,
		testutil.TurnStart(),
		testutil.Tool("tu_1", "create_component"),
		testutil.ToolFail("tu_1", "name taken"),
		testutil.Text("Let me retry with a new name."),
		testutil.Tool("tu_2", "create_component"),
		testutil.ToolOK("tu_2", "created"),
		testutil.Complete(""),
	)...)

	msg := lastMessage(t, s)
	tc := msg.Blocks[0].(*transcript.ToolCallBlock)
	if tc.Status != events.ToolError {
		t.Fatalf("first call status = %q, want error", tc.Status)
	}
	// The error result closes the first block in place, so the turn
	// yields tool call, text, tool call.
	if len(msg.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3 (processing continued)", len(msg.Blocks))
	}
}

func TestErrorEventSettlesWithPartialBlocks(t *testing.T) {
	s := newSession()
	feed(s, false, testutil.Sequenced(0,
		testutil.TurnStart(),
		testutil.Thinking("working"),
		testutil.Tool("tu_1", "read"),
		testutil.ToolFail("tu_1", "boom"),
		testutil.ErrorEvent("agent crashed"),
	)...)

	msg := lastMessage(t, s)
	if msg.IsStreaming {
		t.Fatal("error event must settle the message")
	}
	if !msg.Failed {
		t.Fatal("message should be marked failed")
	}
	if len(msg.Blocks) != 2 {
		t.Fatalf("blocks = %d, want partial content kept", len(msg.Blocks))
	}
	if s.Status() != builder.StatusFailed {
		t.Fatalf("status = %q, want failed", s.Status())
	}
}

func TestErrorResultFiresNoSideEffect(t *testing.T) {
	reg := testutil.NewMemRegistry()
	s := builder.NewSession(builder.Dependencies{
		Dispatcher: effects.NewDispatcher(effects.Dependencies{Registry: reg}),
	})

	feed(s, false,
		testutil.TurnStart(),
		testutil.Tool("tu_1", "create_component"),
		events.Event{Type: events.TypeToolResult, Payload: events.ToolResult{
			ToolUseID: "tu_1",
			Status:    events.ResultError,
			Component: &events.CanvasComponent{ComponentName: "Broken", Code: "const Broken = 1"},
		}},
	)

	if reg.Len() != 0 {
		t.Fatal("failed tool call must not apply side effects")
	}
}

func TestResumeTurnStartContinuesOpenAssistant(t *testing.T) {
	s := newSession()
	s.Hydrate([]transcript.Message{
		{ID: "u1", Role: transcript.RoleUser, Blocks: []transcript.Block{&transcript.TextBlock{Content: "go"}}},
		{ID: "a1", Role: transcript.RoleAssistant, IsStreaming: true},
	})

	feed(s, true,
		testutil.TurnStart(),
		testutil.Text("resumed"),
		testutil.Complete(""),
	)

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2 (no second assistant message)", len(msgs))
	}
	text := msgs[1].Blocks[0].(*transcript.TextBlock)
	if text.Content != "resumed" {
		t.Fatalf("content = %q", text.Content)
	}
}

func TestReplayedUserMessageDeduplicated(t *testing.T) {
	s := newSession()
	s.AddUserMessage("make a button")

	feed(s, true, testutil.UserMsg("make a button"), testutil.TurnStart(), testutil.Complete("hi"))

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2 (prompt not re-added)", len(msgs))
	}
}

func TestUserMessageDroppedOnLiveStream(t *testing.T) {
	s := newSession()
	feed(s, false, testutil.UserMsg("sneaky"))

	if len(s.Messages()) != 0 {
		t.Fatal("user_message on a live stream must be dropped")
	}
}

func TestCompleteContentUsedOnlyWithoutStreamedText(t *testing.T) {
	noText := newSession()
	feed(noText, false, testutil.TurnStart(), testutil.Complete("final answer"))

	msg := lastMessage(t, noText)
	if len(msg.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(msg.Blocks))
	}
	if text := msg.Blocks[0].(*transcript.TextBlock); text.Content != "final answer" {
		t.Fatalf("content = %q", text.Content)
	}

	streamed := newSession()
	feed(streamed, false, testutil.TurnStart(), testutil.Text("streamed."), testutil.Complete("streamed."))

	msg = lastMessage(t, streamed)
	if len(msg.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 (final content must not duplicate deltas)", len(msg.Blocks))
	}
}

func TestStreamingInvariantHeldThroughout(t *testing.T) {
	s := newSession()
	s.AddUserMessage("go")

	for _, evt := range scenarioEvents() {
		s.HandleEvent(evt, false)
		msgs := s.Messages()
		for i, msg := range msgs {
			if msg.IsStreaming && i != len(msgs)-1 {
				t.Fatalf("after seq %d: message %d streaming but not last", evt.Sequence, i)
			}
		}
	}
}

func TestResetClearsLedgerForNewContext(t *testing.T) {
	s := newSession()
	feed(s, false, testutil.TurnStart(), testutil.Tool("tu_1", "read"))

	s.Reset()

	if len(s.ToolCalls()) != 0 {
		t.Fatal("ledger should be empty after reset")
	}
	feed(s, false, testutil.TurnStart(), testutil.Tool("tu_1", "read"))
	if len(s.ToolCalls()) != 1 {
		t.Fatal("id should be usable again in the new context")
	}
}

func blocksEqual(a, b []transcript.Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}

	return true
}
