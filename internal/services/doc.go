// Package services defines the [Provider] interface for music catalog search and implements it for Deezer, iTunes, and Spotify.
//
// # Provider Interface
//
// All catalog providers implement a common abstraction, so the search
// orchestration works uniformly regardless of which upstream answers.
//
// # Deezer Implementation
//
// [DeezerProvider] is the default provider. It requires no credentials and
// exposes a 30-second preview clip URL on most results.
//
// # iTunes Implementation
//
// [ITunesProvider] serves as the regional-availability fallback: the iTunes
// Search API covers storefronts where Deezer returns empty result sets.
//
// # Spotify Implementation
//
// [SpotifyProvider] uses the OAuth2 client-credentials grant. It is selected
// automatically when a client ID/secret pair is configured; absence of the
// credential pair silently falls back to the default provider.
//
// # Fallback Chain
//
// [Chain] tries providers in a fixed order and returns the first non-empty
// result set. Results are never merged or re-ranked across providers.
//
// # Error Handling
//
// Search failures wrap [shared.ErrUpstream]. Providers never retry; the
// caller decides whether a failure is shown to the user.
//
// # API Mappings
//
// Each provider converts its JSON response into []models.Candidate. Missing
// titles or artists are replaced with fixed placeholder strings so both
// fields are always present, and result sets are truncated to the requested
// limit regardless of how many records the upstream returns.
package services
