// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/xiaot623/gogo/unitlink/discovery"
	"github.com/xiaot623/gogo/unitlink/policy"
)

// NewTestCatalog returns an in-memory catalog closed at test cleanup.
func NewTestCatalog(t *testing.T, units ...discovery.Unit) *discovery.Catalog {
	t.Helper()

	c, err := discovery.NewSQLiteCatalog(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite catalog: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	for _, u := range units {
		if err := c.Register(context.Background(), u); err != nil {
			t.Fatalf("failed to register unit %s: %v", u.UnitID, err)
		}
	}
	return c
}

// NewTestPolicy prepares the default admission policy.
func NewTestPolicy(t *testing.T) *policy.Engine {
	t.Helper()

	e, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}
