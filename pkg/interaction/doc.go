// Package interaction drives a model through time.
//
// A Source owns the canonical state and applies operations to it. A Component sits in
// front of a Source and turns every applied operation into renderer output: either a new
// keyframe segment that is played by progress, or an immediate update. Progress is
// advanced explicitly with SetProgress, with Tick from a render clock, or with Drag from a
// gesture; the engine has no clock of its own.
//
// Basic usage:
//
//	stack, _ := backstack.New("home")
//	c := interaction.NewComponent(interaction.FromModel(stack.Model))
//	c.Operate(ctx, backstack.Push[string]{Target: "settings"}, domain.ModeKeyframe)
//	c.Tick(ctx, 16*time.Millisecond)
package interaction
