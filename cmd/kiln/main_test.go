package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newComponents(ctrl *gomock.Controller) (*app.Components, *mocks.MockConfigLoader, *mocks.MockLogger) {
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	a := app.New(
		loader,
		nil,
		mocks.NewMockInputResolver(ctrl),
		mocks.NewMockHasher(ctrl),
		logger,
		metrics.Nop{},
		nil,
		mocks.NewMockDocumentOptimizer(ctrl),
	)
	return &app.Components{App: a, Logger: logger}, loader, logger
}

func provide(c *app.Components) ComponentProvider {
	return func(_ context.Context) (*app.Components, func(), error) {
		return c, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, _, _ := newComponents(ctrl)

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provide(components))
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that errors other than build failures are logged.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, loader, logger := newComponents(ctrl)

	loader.EXPECT().Load(".").Return(nil, errors.New("load failed"))
	logger.EXPECT().Error(gomock.Any())

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"build"}, stderr, provide(components))
	assert.Equal(t, 1, exitCode)
}

// TestRun_OptimizeFailure verifies that optimizer failures exit 1 without a second report.
func TestRun_OptimizeFailure(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dist"), 0o750))

	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	resolver := mocks.NewMockInputResolver(ctrl)
	optimizer := mocks.NewMockDocumentOptimizer(ctrl)

	loader.EXPECT().Load(root).Return(&domain.Pipeline{
		Settings: domain.Settings{Root: root, Source: "src", Output: "dist"},
	}, nil)
	resolver.EXPECT().ResolveInputs(gomock.Any(), filepath.Join(root, "dist")).Return([]string{"index.html"}, nil)
	require.NoError(t, os.WriteFile(filepath.Join(root, "dist", "index.html"), []byte("<html></html>"), 0o600))
	optimizer.EXPECT().Optimize(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNotAMPDocument)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any())

	a := app.New(loader, nil, resolver, mocks.NewMockHasher(ctrl), logger, metrics.Nop{}, nil, optimizer)
	components := &app.Components{App: a, Logger: logger}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"optimize", "-c", root}, stderr, provide(components))
	assert.Equal(t, 1, exitCode)
}
