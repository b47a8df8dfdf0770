// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package pgstac

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlavoie-cs/terrastac/internal/metrics"
)

// ScriptSeparator splits a SQL script into statements executed one by one.
// Function bodies contain semicolons, so a plain split on ";" cannot work;
// the scripts carry explicit markers instead.
const ScriptSeparator = "-- SPLITHERE --"

// Script file names under the scripts directory.
const (
	ScriptSchemaBuilder     = "json_schema_builder.sql"
	ScriptDiscoverQueryable = "discover_queryables.sql"
	ScriptDiscoverSummaries = "discover_summaries.sql"
)

// SplitScript breaks script content at the separator markers, dropping
// empty fragments.
func SplitScript(content string) []string {
	var statements []string
	for _, part := range strings.Split(content, ScriptSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			statements = append(statements, part)
		}
	}
	return statements
}

// RunScript executes every statement of one script file on the write
// pool. Statements run raw: SQL function bodies use jsonb operators that
// a query formatter would mangle.
func (c *Client) RunScript(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	for i, stmt := range SplitScript(string(content)) {
		if _, err := c.write.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// scriptNames selects which function scripts to apply. The schema builder
// is always loaded; the discovery overrides are skipped when the
// deployment keeps PgSTAC's defaults.
func scriptNames(skipQueryables, skipSummaries bool) []string {
	names := []string{ScriptSchemaBuilder}
	if !skipQueryables {
		names = append(names, ScriptDiscoverQueryable)
	}
	if !skipSummaries {
		names = append(names, ScriptDiscoverSummaries)
	}
	return names
}

// ApplyFunctionScripts installs the catalog's SQL function overrides at
// startup. A script that fails leaves the database on whatever definition
// it already had, so failures are logged and skipped rather than aborting
// startup.
func (c *Client) ApplyFunctionScripts(ctx context.Context, dir string, skipQueryables, skipSummaries bool) {
	for _, name := range scriptNames(skipQueryables, skipSummaries) {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		err := c.RunScript(ctx, filepath.Join(dir, name))
		metrics.RecordScriptLoad(base, err)
		if err != nil {
			c.log.Error().Err(err).Str("script", name).Msgf("failed to update %s functions", base)
			continue
		}
		c.log.Info().Str("script", name).Msgf("updated %s functions", base)
	}
}
