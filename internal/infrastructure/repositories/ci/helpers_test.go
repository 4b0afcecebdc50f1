//go:build unit

package ci_test

import (
	"sync"

	"github.com/rios0rios0/depgate/internal/domain/entities"
	"github.com/rios0rios0/depgate/internal/infrastructure/repositories/ci"
	"github.com/rios0rios0/depgate/test/infrastructure/repositorydoubles"
)

func envOf(values map[string]string) ci.Getenv {
	return func(key string) string { return values[key] }
}

func report(body string) string {
	return entities.ReportMarker + "\n" + body
}

func spyVCS() *repositorydoubles.SpyVersionControlRepository {
	return &repositorydoubles.SpyVersionControlRepository{
		Remote:          "origin",
		DefaultBranch:   "origin/main",
		MergeBaseResult: "ancestor-sha",
	}
}

// commentAPI records what a fake comment endpoint served and received.
type commentAPI struct {
	mu        sync.Mutex
	existing  []string
	posted    []string
	listCalls int
	authz     []string
}

func (c *commentAPI) list(authorization string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	c.authz = append(c.authz, authorization)
	return append([]string(nil), c.existing...)
}

func (c *commentAPI) post(authorization, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authz = append(c.authz, authorization)
	c.posted = append(c.posted, body)
	c.existing = append(c.existing, body)
}

func (c *commentAPI) snapshot() (posted []string, listCalls int, authz []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.posted...), c.listCalls, append([]string(nil), c.authz...)
}
