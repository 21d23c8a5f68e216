package keyframes_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/waypoint/pkg/keyframes"
	"github.com/stretchr/testify/assert"
)

func TestUpdate_DerivedKeyframesKeepLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	update := keyframes.NewUpdate("A", keyframes.WithLogger(logger)).
		DeriveUpdate(keyframes.Transition[string]{FromState: "A", TargetState: "B"})
	kf := update.Replace("B").DeriveKeyframes(keyframes.Transition[string]{FromState: "B", TargetState: "C"})

	kf.SetProgress(5, nil)
	assert.Contains(t, buf.String(), "progress clamped")
	assert.Equal(t, 1.0, kf.Progress())
}
