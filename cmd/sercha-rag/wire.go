package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors/chunker"
)

// appName names the per-user cache directory.
const appName = "sercha-rag"

// newSettingsService reads settings from ~/.sercha-rag/config.toml. When
// the home directory is unavailable settings live for this run only.
func newSettingsService(_ cli.Options) (driving.SettingsService, error) {
	var store driven.ConfigStore
	fileStore, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("settings will not be saved: %v", err)
		store = memory.NewConfigStore()
	} else {
		store = fileStore
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// newServices builds the pipeline from the current settings.
func newServices(ctx context.Context, opts cli.Options, settingsSvc driving.SettingsService) (*cli.Services, error) {
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	rag := settings.RAG
	if err := rag.Validate(); err != nil {
		return nil, err
	}

	result, err := ai.Initialise(*settings, ai.InitOptions{Ephemeral: opts.Ephemeral})
	if err != nil {
		return nil, err
	}

	root := rag.IndexDir
	if root == "" {
		root = filepath.Join(xdg.CacheHome, appName, "sessions")
	}
	logger.Debug("session indexes under %s", root)

	sessions := services.NewSessionStore(root, result.Index)
	retriever := services.NewRetrieverService(result.Index)

	warnings := append([]string(nil), result.Warnings...)

	var prompts driven.PromptStore
	var changes <-chan string
	promptStore, err := file.NewPromptStore("")
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("using the built-in prompt: %v", err))
	} else {
		prompts = promptStore
		changes, err = promptStore.Watch(ctx)
		if err != nil {
			logger.Debug("prompt reload disabled: %v", err)
		}
	}

	return &cli.Services{
		Session: services.NewSessionService(sessions, retriever),
		Document: services.NewDocumentService(
			sessions, normalisers.Default(), chunker.FromSettings(rag), result.Index,
		),
		Chat:          services.NewRagPipeline(sessions, retriever, result.LLMService, prompts, settingsSvc),
		PromptChanges: changes,
		Warnings:      warnings,
		Close:         result.Close,
	}, nil
}
