// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// A Session ties one conversation to one document index. SessionStore owns
// every live session, DocumentService fills a session's index from an upload,
// and RagPipeline answers questions against it.
//
// Services are pure Go with no CGO.
package services
