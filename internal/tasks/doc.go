// package tasks implements the search and selection flows behind the bot.
//
// The core abstraction is Engine, which ties the catalog provider, the
// session store, and the media fetcher together. Search produces the
// rendered candidate list plus one opaque callback token per candidate;
// Select resolves a token back to its candidate and drives the audio fetch.
// Both return user-facing results for every failure mode, so the transport
// layer never has to interpret domain errors itself.
package tasks
