// Package policy holds the static bot policy: which community is
// monitored, which account the bot posts as, and the full text of every
// message the workflow sends.
//
// Policy is authored as a CUE document and compiled through the CUE Go
// API at startup. Unlike the tunables in internal/config, policy never
// changes while the process runs.
package policy

import "strings"

// Placeholders substituted into message bodies at send time.
const (
	placeholderPost   = "{{post}}"
	placeholderAnswer = "{{answer}}"
)

// Messages is the full set of user-facing texts.
type Messages struct {
	// PromptSubject/PromptBody form the initial private message asking
	// the author to justify the submission. PromptBody may reference
	// {{post}}, replaced with the submission permalink.
	PromptSubject string
	PromptBody    string

	// RetrySubject/RetryBody form the re-prompt sent after an
	// insufficient answer.
	RetrySubject string
	RetryBody    string

	// TimeoutSubject/TimeoutBody form the notice sent when an answer
	// arrives outside the reinstatement window.
	TimeoutSubject string
	TimeoutBody    string

	// StickyComment is the distinguished comment template published on
	// reinstatement. It may reference {{answer}}, replaced with the
	// author's accepted answer.
	StickyComment string
}

// Policy is the compiled static configuration.
type Policy struct {
	// Community is the monitored community name.
	Community string

	// BotUser is the bot's own account name, used to detect the bot's
	// existing replies.
	BotUser string

	// ConfigWikiPage names the wiki page holding the remote tunables
	// document parsed by internal/config.
	ConfigWikiPage string

	Messages Messages
}

// RenderPrompt substitutes the submission permalink into the prompt body.
func (p Policy) RenderPrompt(permalink string) string {
	return strings.ReplaceAll(p.Messages.PromptBody, placeholderPost, permalink)
}

// RenderSticky substitutes the accepted answer into the sticky comment.
func (p Policy) RenderSticky(answer string) string {
	return strings.ReplaceAll(p.Messages.StickyComment, placeholderAnswer, answer)
}
