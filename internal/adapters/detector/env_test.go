package detector_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/detector"
	"go.trai.ch/kiln/internal/adapters/linear"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		isTTY bool
		ci    string
		want  detector.OutputMode
	}{
		{name: "terminal", isTTY: true, ci: "", want: detector.ModeCompact},
		{name: "CI=true forces linear", isTTY: true, ci: "true", want: detector.ModeLinear},
		{name: "CI=1 forces linear", isTTY: true, ci: "1", want: detector.ModeLinear},
		{name: "CI=false keeps compact", isTTY: true, ci: "false", want: detector.ModeCompact},
		{name: "pipe", isTTY: false, ci: "", want: detector.ModeLinear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.Detect(tt.isTTY, tt.ci))
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.ModeLinear, detector.DetectEnvironment())
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		flag string
		auto detector.OutputMode
		want detector.OutputMode
	}{
		{flag: "", auto: detector.ModeCompact, want: detector.ModeCompact},
		{flag: "auto", auto: detector.ModeLinear, want: detector.ModeLinear},
		{flag: "compact", auto: detector.ModeLinear, want: detector.ModeCompact},
		{flag: "linear", auto: detector.ModeCompact, want: detector.ModeLinear},
		{flag: "ci", auto: detector.ModeCompact, want: detector.ModeLinear},
		{flag: "unknown", auto: detector.ModeCompact, want: detector.ModeCompact},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveMode(tt.auto, tt.flag))
		})
	}
}

func TestOutputMode_String(t *testing.T) {
	assert.Equal(t, "auto", detector.ModeAuto.String())
	assert.Equal(t, "compact", detector.ModeCompact.String())
	assert.Equal(t, "linear", detector.ModeLinear.String())
}

func TestNewRenderer(t *testing.T) {
	var out bytes.Buffer
	assert.IsType(t, &linear.Renderer{}, detector.NewRenderer(detector.ModeLinear, &out, &out))
	assert.IsType(t, &linear.Renderer{}, detector.NewRenderer(detector.ModeCompact, &out, &out))
}
