// Package webui serves the browser front-end of the chat client.
//
// Pages are rendered on the server from embedded html/template files. Every
// action is a plain form post followed by a redirect to "/":
//
//	POST /conversations                 new conversation
//	POST /conversations/{id}/select     switch conversation
//	POST /conversations/{id}/delete     delete conversation
//	POST /send                          message, conversation_id, idempotency_key
//	POST /messages/{id}/retry           resend a failed message
//	POST /sample                        enabled=true|false
//
// Sends run in the background; GET /events streams conversation events as
// SSE so open pages reload when the reply lands. Each rendered form carries a
// fresh idempotency key, and keys already seen by the dedupe cache are
// dropped, so a resubmitted form does not send twice.
package webui
