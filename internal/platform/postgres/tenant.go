// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// ErrMissingTenant is returned when a tenant-scoped call has no organization id.
var ErrMissingTenant = errors.New("postgres: tenant-scoped transaction requires an organization id")

const setTenantQuery = `SELECT set_config('` + constants.TenantSettingKey + `', $1, true)`

/*
WithTenant runs fn inside a transaction whose row-level-security scope is
the given organization.

Description: The organization id is written with set_config(..., is_local = true)
so it disappears with the transaction and can never leak to the next user of
the pooled connection. fn's error rolls the transaction back.

Parameters:
  - ctx: request context (cancellation aborts the transaction)
  - db: pool or connection able to begin a transaction
  - organizationID: value visible to policies through current_setting()
  - fn: statements to run under the tenant scope

Returns:
  - error: fn's error, or begin/commit failures
*/
func WithTenant(ctx context.Context, db TxBeginner, organizationID string, fn func(tx DBTX) error) error {
	if organizationID == "" {
		return ErrMissingTenant
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_tenant_begin_failed: %w", err)
	}

	if _, err := tx.Exec(ctx, setTenantQuery, organizationID); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("postgres_tenant_set_config_failed: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_tenant_commit_failed: %w", err)
	}

	return nil
}
