//go:build tools

package statline

// Build-time tool dependencies: stringer backs the go:generate directive in internal/log, and
// golint is invoked in CI.
import (
	_ "golang.org/x/lint/golint"
	_ "golang.org/x/tools/cmd/stringer"
)
