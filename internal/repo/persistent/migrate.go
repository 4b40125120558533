package persistent

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/andreyxaxa/Photo-Ingest/pkg/postgres"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies every embedded script in name order. Scripts are idempotent.
func Migrate(ctx context.Context, pg *postgres.Postgres) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("Migrate - fs.Glob: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		b, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("Migrate - migrations.ReadFile: %w", err)
		}

		if err = pg.ExecScript(ctx, splitStatements(string(b))...); err != nil {
			return fmt.Errorf("Migrate - pg.ExecScript %s: %w", name, err)
		}
	}

	return nil
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}

	return out
}
