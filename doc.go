// Package ctxrescue rescues degraded multi-turn AI conversations.
//
// Long conversations with an AI assistant can collapse into doom loops:
// the same error pasted over and over, cascades of apologies, near-
// identical code rewritten with no progress. ctxrescue detects those
// patterns, extracts the user's original goal and the blocking issue,
// strips the redundant turns, and renders a condensed "rescue package"
// that seeds a fresh conversation.
//
// # Quick Start
//
// Parse a transcript, rescue it, and render the package:
//
//	messages, _ := transcript.ParseFile("chat.txt")
//
//	client, err := ctxrescue.NewClient(nil) // rule-based, no API key needed
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Rescue(ctx, messages)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	gen, _ := rescue.NewGenerator()
//	gen.WriteFile("rescue.md", result.Analysis, result.Sanitized, &result.Stats)
//
// # Analyzers
//
// The rule-based analyzer is free, fast, and never sends data anywhere.
// Claude- and OpenAI-backed analyzers can be selected via configuration;
// when they fail, the client falls back to the rule-based path
// automatically.
//
// # Sanitization levels
//
// minimal removes only detected loops; balanced (the default) also caps
// repeated errors at two occurrences and drops filler acknowledgments;
// aggressive keeps a single occurrence per error and code signature.
// Messages are never edited, only included or excluded, so the
// sanitized conversation is a faithful subset of the original.
package ctxrescue
