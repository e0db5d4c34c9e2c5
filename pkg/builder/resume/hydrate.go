package resume

import (
	"github.com/google/uuid"

	"github.com/johnathanchiu/componentize/pkg/builder/events"
	"github.com/johnathanchiu/componentize/pkg/builder/ports"
	"github.com/johnathanchiu/componentize/pkg/builder/transcript"
)

// messagesFromHistory converts durable history records into finalized
// messages, once, at hydration. An assistant record expands to blocks in
// thinking, tool calls, text order - the order a live turn would have
// produced them. No replay is needed for committed history.
func messagesFromHistory(records []ports.HistoryRecord) []transcript.Message {
	msgs := make([]transcript.Message, 0, len(records))
	for _, rec := range records {
		switch rec.Role {
		case string(transcript.RoleUser):
			msgs = append(msgs, transcript.Message{
				ID:     uuid.NewString(),
				Role:   transcript.RoleUser,
				Blocks: []transcript.Block{&transcript.TextBlock{Content: rec.Content}},
			})

		case string(transcript.RoleAssistant):
			msgs = append(msgs, transcript.Message{
				ID:     uuid.NewString(),
				Role:   transcript.RoleAssistant,
				Blocks: assistantBlocks(rec),
				Failed: rec.Failed,
			})
		}
	}

	return msgs
}

func assistantBlocks(rec ports.HistoryRecord) []transcript.Block {
	var blocks []transcript.Block

	if rec.Thinking != "" {
		blocks = append(blocks, &transcript.ThinkingBlock{Content: rec.Thinking})
	}

	for _, call := range rec.ToolCalls {
		status := events.ToolStatus(call.Status)
		if status == "" {
			status = events.ToolSuccess
		}
		blocks = append(blocks, &transcript.ToolCallBlock{
			ID:     call.ID,
			Name:   call.Name,
			Args:   call.Args,
			Status: status,
			Result: call.Result,
		})
	}

	if rec.Content != "" {
		blocks = append(blocks, &transcript.TextBlock{Content: rec.Content})
	}

	return blocks
}
