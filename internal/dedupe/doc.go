// Package dedupe remembers recently seen idempotency keys so that a form
// submitted twice (a double click, a browser resend) reaches the send
// pipeline once.
package dedupe
