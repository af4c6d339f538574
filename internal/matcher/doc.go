// Package matcher implements chat-driven partner matching.
//
// A free-text message flows through a greeting short-circuit, query
// expansion, embedding, and finally RankMatches, which keeps each
// candidate's single best skill similarity ("best reason to connect").
// The discovery feed's overlap scoring lives in package feed and answers
// a different question; the two are intentionally separate.
package matcher
