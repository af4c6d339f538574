// Package embedder generates vector embeddings for skills and search
// queries using an external text-embedding provider.
//
// Supported providers are Gemini (default, 768 dimensions), OpenAI
// (1536 dimensions), and a deterministic local provider for offline
// development and tests (384 dimensions).
//
// Provider selection follows environment configuration:
//
//  1. If MATCHER_EMBEDDING_PROVIDER is set → use specified provider
//  2. Else if GEMINI_API_KEY is set → use Gemini
//  3. Else if OPENAI_API_KEY is set → use OpenAI
//  4. Else → fallback to local provider (offline mode)
//
// All providers share an LRU cache on the SHA-256 of the input text, so
// re-embedding the same skill or expanded query is free. Transient API
// failures are retried with exponential backoff; a provider response
// without extractable vector data is ErrProviderFailed, never a silent
// zero vector.
package embedder
