package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToGlobalLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	FromContext(context.Background()).Infow("hello", "key", "value")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "hello", entry.Message)
	require.Equal(t, "value", entry.ContextMap()["key"])
}

func TestNewContextCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	ctx := NewContext(context.Background(), With("request_id", "abc"))
	FromContext(ctx).Warn("careful")

	require.Equal(t, 1, logs.FilterField(zap.String("request_id", "abc")).Len())
}

func TestPackageHelpersUseReplacedLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	Debugf("hidden %d", 1)
	Infof("shown %d", 2)

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "shown 2", logs.All()[0].Message)
}
