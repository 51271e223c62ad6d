package tools

import "strings"

// UnfenceJSON returns the payload of the first markdown code fence in a
// model reply, or the trimmed reply when it has no fence. Any info string
// after the opening fence (json, JSON, ...) is dropped.
func UnfenceJSON(reply string) string {
	reply = strings.TrimSpace(reply)
	start := strings.Index(reply, "```")
	if start < 0 {
		return reply
	}
	body := reply[start+3:]
	if i := strings.IndexAny(body, "\n{["); i >= 0 {
		body = body[i:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
