package lib

// Package lib contains small shared constants for the zkcredit project.

// Name is the canonical project name.
const Name = "zkcredit"

// Version is the current semantic version of the pipeline tool.
const Version = "0.2.0"

// ModelVersion identifies the scoring model generation the shared circuit
// artifacts were built against. Bumped whenever the model is retrained.
const ModelVersion = "1.0.0"
