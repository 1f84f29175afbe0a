package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "upstream", Value: "grants"},
		StringField{Key: "  model  ", Value: "  gpt-oss-120b  "},
		StringField{Key: "", Value: "ignored"},
		StringField{Key: "empty", Value: "   "},
	)

	require.Len(t, fields, 2)
	assert.Equal(t, zap.String("upstream", "grants"), fields[0])
	assert.Equal(t, zap.String("model", "gpt-oss-120b"), fields[1])
}

func TestWithFieldsNilLogger(t *testing.T) {
	logger := WithFields(nil, zap.String("upstream", "jobs"))
	require.NotNil(t, logger)

	// No-op loggers must still be safe to use.
	logger.Info("message")
}

func TestWithUpstream(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := WithUpstream(zap.New(core), "llm", "openai/gpt-oss-120b")

	logger.Info("request sent")

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "llm", fields[FieldUpstream])
	assert.Equal(t, "openai/gpt-oss-120b", fields[FieldModel])
}

func TestWithUpstreamOmitsEmptyModel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := WithUpstream(zap.New(core), "grants", "")

	logger.Info("request sent")

	entries := logs.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "grants", fields[FieldUpstream])
	assert.NotContains(t, fields, FieldModel)
}
