// Package memory provides in-memory implementations of the ConfigStore and
// EmbeddingIndex ports. They back tests and the CLI's --ephemeral mode.
package memory
