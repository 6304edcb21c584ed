//go:build tools
// +build tools

// Package tools tracks the mockgen dependency used by go generate.
package dialog_hub

import (
	_ "go.uber.org/mock/mockgen"
)
