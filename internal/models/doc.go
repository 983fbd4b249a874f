// Package models defines domain entities and persistence interfaces for the tunebot music search bot.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Candidate] : One normalized catalog search result (title, artist, link, optional preview URL)
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CachedTrack] : Tracks that were fetched successfully, keyed by provider and canonical link
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
