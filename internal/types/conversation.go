package types

import "strings"

// JoinConversation flattens a brief and message history into one text,
// brief first.
func JoinConversation(messages []ConversationMessage, brief string) string {
	var b strings.Builder
	if s := strings.TrimSpace(brief); s != "" {
		b.WriteString(s)
	}
	for _, m := range messages {
		s := strings.TrimSpace(m.Content)
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s)
	}
	return b.String()
}

// UserText returns only the user-authored turns plus the brief.
func UserText(messages []ConversationMessage, brief string) string {
	var user []ConversationMessage
	for _, m := range messages {
		if m.Role == RoleUser {
			user = append(user, m)
		}
	}
	return JoinConversation(user, brief)
}
