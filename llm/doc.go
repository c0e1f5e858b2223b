// Package llm provides a provider-neutral abstraction over the LLM HTTP
// services that judge gatekeeper attempts.
//
// # Core Concepts
//
//  1. Messages: the Message type represents a conversation turn with a role
//     (user, assistant, system) and text content. The transcript sent to a
//     provider is a sequence of Messages; the judge persona's instruction is
//     carried out-of-band on the Request, never inside the transcript.
//
//  2. Client Interface: the Client interface has a single Submit method that
//     issues exactly one synchronous request and returns the reply text.
//     Implementations (llm/openai, llm/gemini) handle provider-specific wire
//     shapes internally and never mutate the caller's transcript.
//
//  3. Errors: the Error type provides provider-neutral error handling. Every
//     failure a provider call can produce is normalized into one of four
//     kinds (missing credential, transport failure, provider rejected, empty
//     response) so callers never branch on provider-specific surfaces.
//
// # Extension Points
//
// To add a new provider:
//  1. Implement the Client interface in a subpackage
//  2. Translate between the provider's wire format and llm package types
//  3. Normalize the provider's errors into *llm.Error values
//  4. Register the provider name and constructor in llm/gateway
package llm
