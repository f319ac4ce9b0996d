package executor

import "regexp"

// identifierSentinel matches the literal "id:MESSAGE_ID" placeholder the
// planner is prompted to use when a step needs to reference "the next
// message" without knowing its real id (§4.G).
var identifierSentinel = regexp.MustCompile(`\bid:MESSAGE_ID\b`)

// substituteIdentifiers resolves the id:MESSAGE_ID sentinel against the next
// unused entry of mem's "mail:last_message_ids" context key, tracking
// consumption so each identifier is substituted at most once per request
// (invariant 8).
func substituteIdentifiers(command string, mem memoryView) string {
	if !identifierSentinel.MatchString(command) {
		return command
	}
	id, ok := mem.NextUnusedIdentifier("mail:last_message_ids")
	if !ok {
		return command
	}
	return identifierSentinel.ReplaceAllLiteralString(command, "id:"+id)
}
