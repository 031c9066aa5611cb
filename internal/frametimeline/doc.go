// Package frametimeline correlates predicted, actual, and presented
// timing for each vsync into a single record, classifies the result as
// on-time, early, or late jank, and exports the verdict to a timestats
// sink and a trace collector.
//
// Three signals feed one record: a vsync scheduler predicts timing
// ahead of time and mints a token for it (TokenManager); the app and
// compositor report actual timestamps as a buffer moves through the
// pipeline (SurfaceFrame); the display reports when it actually
// presented via a fence (DisplayFrame, resolved by PendingPresentQueue).
// FrameTimeline is the facade a compositor drives in a fixed per-vsync
// order: setSfWakeUp, createSurfaceFrameForToken*, addSurfaceFrame*,
// setSfPresent.
//
// Dependency rule: classifier.go and the state machines in
// surface_frame.go/display_frame.go never read a clock — all timing
// comes in as arguments, so they stay pure and cheap to test.
package frametimeline
