// Package migrations holds the planner schema as goose SQL files. The API
// applies them at startup when AUTO_MIGRATE is set, and the integration
// tests apply them in TestMain.
package migrations

import "embed"

// FS is the set of *.sql migrations, for goose.NewProvider.
//
//go:embed *.sql
var FS embed.FS
