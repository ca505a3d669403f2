package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/decoynet/honeytrap/pkg/session"
)

// ReplyInput is the context for one generated victim reply.
type ReplyInput struct {
	Message       string
	RecentHistory []string
	Language      session.Language
	Emotion       session.Emotion
}

// Replier produces a short in-persona reply. Unlike Judge it may fail;
// the agent falls back to its template pools on error.
type Replier interface {
	Reply(ctx context.Context, input ReplyInput) (string, error)
}

// GroqReplier generates bounded pre-detection replies with the remote
// model.
type GroqReplier struct {
	client *GroqClient
}

// NewGroqReplier creates the remote reply generator.
func NewGroqReplier(client *GroqClient) *GroqReplier {
	return &GroqReplier{client: client}
}

const replySystemPrompt = "You are roleplaying as a confused, polite, non-technical person replying to " +
	"a text message. Stay in character. Never reveal anything about yourself, never share numbers or " +
	"codes, never accuse the sender of anything."

func (r *GroqReplier) Reply(ctx context.Context, input ReplyInput) (string, error) {
	language := "English"
	if input.Language == session.LanguageHindi {
		language = "Romanized Hindi (Hindi words written in Latin script)"
	}

	var history strings.Builder
	recent := input.RecentHistory
	if len(recent) > 4 {
		recent = recent[len(recent)-4:]
	}
	for _, msg := range recent {
		fmt.Fprintf(&history, "- %s\n", msg)
	}

	prompt := fmt.Sprintf(`Recent conversation:
%s
Their latest message: %q

Reply as a %s ordinary user in %s.

RULES:
- At most 10 words
- Exactly one sentence
- No emojis, no digits, no names
- Sound natural and slightly confused, never scripted

Reply with the sentence only:`,
		history.String(), input.Message, input.Emotion, language)

	reply, err := r.client.ChatCompletion(ctx, replySystemPrompt, prompt, 0.7, 150)
	if err != nil {
		return "", err
	}
	return cleanReply(reply), nil
}

// cleanReply strips quoting artifacts models tend to add.
func cleanReply(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.Trim(reply, `"`)
	reply = strings.TrimPrefix(reply, "Me:")
	return strings.TrimSpace(reply)
}
