package router

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ConcurrentMatch(t *testing.T) {
	t.Parallel()

	tbl := NewTable[string]()
	require.NoError(t, tbl.AddRoute(MethodGet, "/users/{id}/posts", "posts"))
	require.NoError(t, tbl.AddRoute(MethodGet, "/users/admin/settings", "settings"))
	require.NoError(t, tbl.AddRoute(MethodGet, "/static/{*path}", "static"))

	var wg sync.WaitGroup
	errs := make(chan error, 64)

	for g := range 16 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 200 {
				id := fmt.Sprintf("u%d-%d", g, i)
				match, ok := tbl.Match(MethodGet, "/users/"+id+"/posts")
				if !ok || match.Params["id"] != id {
					errs <- fmt.Errorf("bad match for %s: %v", id, match)
					return
				}
				match, ok = tbl.Match(MethodGet, "/static/css/"+id)
				if !ok || match.Params["path"] != "css/"+id {
					errs <- fmt.Errorf("bad wildcard match for %s", id)
					return
				}
			}
		}(g)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestTable_MatchConcurrentWithAddRoute(t *testing.T) {
	t.Parallel()

	tbl := NewTable[int]()
	require.NoError(t, tbl.AddRoute(MethodGet, "/base", -1))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := range 500 {
			_ = tbl.AddRoute(MethodGet, fmt.Sprintf("/r/%d/{id}", i), i)
		}
	}()

	go func() {
		defer wg.Done()
		for range 500 {
			match, ok := tbl.Match(MethodGet, "/base")
			if assert.True(t, ok) {
				assert.Equal(t, -1, match.Handler)
			}
			_, _ = tbl.Match(MethodGet, "/r/7/x")
		}
	}()

	wg.Wait()

	assert.Equal(t, 501, tbl.Len())
	match, ok := tbl.Match(MethodGet, "/r/499/x")
	require.True(t, ok)
	assert.Equal(t, 499, match.Handler)
}
