// Package agent talks to the external chat agent.
//
// # Overview
//
// The client talks to exactly one agent, identified by the AgentID constant.
// A call sends the user's text and returns a Result describing what the agent
// said. The package owns three things:
//
//   - Caller: the transport abstraction (HTTPCaller posts JSON to an endpoint)
//   - Result: the loosely typed wire model, decoded into explicit optional fields
//   - Extract / FailureDetail: turning a Result into display text
//
// # Wire Format
//
// Request:
//
//	{"message": "Tell me a joke", "agent_id": "699b595299a581580fa6037c"}
//
// Response:
//
//	{"success": true, "response": {"result": "{\"text\": \"Why do ...\"}"}}
//	{"success": true, "response": {"result": {"message": "Hi"}}}
//	{"success": false, "error": "rate limited"}
//
// The nested result may be a string (possibly holding JSON) or any JSON value.
// Fields with unexpected types decode as empty rather than failing the call.
//
// # Failures
//
// Caller.Call returns an error only for transport faults. A result with
// success=false is an agent-reported failure and is returned as data.
// Extract never panics; it falls back to DefaultReply or ExtractionFailedReply.
package agent
