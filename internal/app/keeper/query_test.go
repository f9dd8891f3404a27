package keeper

import (
	"bytes"
	"context"
	"testing"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, nil)

	gh := entry.New(entry.NewID(), "GitHub", []string{"gh"}, []string{"dev"}, map[string]string{"user": "bob", "password!": "hunter2"})
	require.NoError(t, a.Store().Put(ctx, gh))
	gl := putEntry(t, a, "gitlab", nil, map[string]string{"user": "alice"})
	gone := putEntry(t, a, "github-old", nil, map[string]string{"user": "old"})
	gone.SetRemoved(true)
	require.NoError(t, a.Store().Put(ctx, gone))

	t.Run("by id", func(t *testing.T) {
		got, err := a.Query(ctx, QueryOptions{Key: gl.ID().String()})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, gl.ID(), got[0].ID())
	})

	t.Run("by removed id", func(t *testing.T) {
		got, err := a.Query(ctx, QueryOptions{Key: gone.ID().String()})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].IsRemoved())
	})

	t.Run("by alias masks secrets", func(t *testing.T) {
		got, err := a.Query(ctx, QueryOptions{Key: "GH", Mode: MatchExact})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, entry.SecretMask, got[0].Properties()["password!"])
		assert.Equal(t, "bob", got[0].Properties()["user"])
	})

	t.Run("show secrets", func(t *testing.T) {
		got, err := a.Query(ctx, QueryOptions{Key: "github", ShowSecrets: true})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "hunter2", got[0].Properties()["password!"])
	})

	t.Run("contains skips removed", func(t *testing.T) {
		got, err := a.Query(ctx, QueryOptions{Key: "git", Mode: MatchContains})
		require.NoError(t, err)
		assert.Equal(t, []entry.ID{gh.ID(), gl.ID()}, ids(got))
	})

	t.Run("no match", func(t *testing.T) {
		_, err := a.Query(ctx, QueryOptions{Key: "amazon"})
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("stored value untouched", func(t *testing.T) {
		stored, err := a.Store().Get(ctx, gh.ID())
		require.NoError(t, err)
		assert.Equal(t, "hunter2", stored.Properties()["password!"])
	})
}

func TestWriteEntries(t *testing.T) {
	e := entry.New(entry.NewID(), "github", []string{"gh"}, nil, map[string]string{"b": "2", "a": "1"})

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, []*entry.Entry{e}, false, false))
	assert.Equal(t, "----\nid: "+e.ID().String()+"\nservice: github\nproperties:\n  a: 1\n  b: 2\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteEntries(&buf, []*entry.Entry{e}, true, false))
	assert.Contains(t, buf.String(), "aliases: gh\n")
	assert.Contains(t, buf.String(), "tags: (none)\n")
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, nil)

	work := putEntry(t, a, "corp-mail", []string{"work"}, map[string]string{"user": "bob@corp.example", "url": "https://mail.corp"})
	home := putEntry(t, a, "webmail", []string{"home"}, map[string]string{"user": "bob@home.example"})
	gone := putEntry(t, a, "old", []string{"work"}, map[string]string{"user": "bob@corp.example"})
	gone.SetRemoved(true)
	require.NoError(t, a.Store().Put(ctx, gone))

	t.Run("property values", func(t *testing.T) {
		got, err := a.Search(ctx, SearchOptions{Key: "bob@", Mode: MatchContains, Properties: []string{"user"}})
		require.NoError(t, err)
		assert.Equal(t, []entry.ID{work.ID(), home.ID()}, ids(got))
	})

	t.Run("only listed properties", func(t *testing.T) {
		_, err := a.Search(ctx, SearchOptions{Key: "mail.corp", Mode: MatchContains, Properties: []string{"user"}})
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("service included", func(t *testing.T) {
		got, err := a.Search(ctx, SearchOptions{Key: "mail", Mode: MatchContains, IncludeService: true})
		require.NoError(t, err)
		assert.Equal(t, []entry.ID{work.ID(), home.ID()}, ids(got))
	})

	t.Run("tag filter", func(t *testing.T) {
		got, err := a.Search(ctx, SearchOptions{Key: "bob@", Mode: MatchContains, Properties: []string{"user"}, Tags: []string{"home"}})
		require.NoError(t, err)
		assert.Equal(t, []entry.ID{home.ID()}, ids(got))
	})

	t.Run("bad regex", func(t *testing.T) {
		_, err := a.Search(ctx, SearchOptions{Key: "(", Mode: MatchRegex})
		assert.Error(t, err)
	})
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, nil)

	_, err := a.Tags(ctx, TagsOptions{})
	assert.ErrorIs(t, err, ErrNoTags)

	props := map[string]string{"k": "v"}
	putEntry(t, a, "a", []string{"dev", "mail"}, props)
	putEntry(t, a, "b", []string{"mail"}, props)
	putEntry(t, a, "c", []string{"mail", "bank"}, props)

	names := func(tags []storage.TagCount) []string {
		out := make([]string, 0, len(tags))
		for _, tc := range tags {
			out = append(out, tc.Tag)
		}
		return out
	}

	got, err := a.Tags(ctx, TagsOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"bank", "dev", "mail"}, names(got))

	got, err = a.Tags(ctx, TagsOptions{ByCount: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"mail", "bank", "dev"}, names(got))
	assert.Equal(t, 3, got[0].Count)

	got, err = a.Tags(ctx, TagsOptions{Reverse: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"mail", "dev", "bank"}, names(got))

	got, err = a.Tags(ctx, TagsOptions{Key: "a", Mode: MatchContains})
	require.NoError(t, err)
	assert.Equal(t, []string{"bank", "mail"}, names(got))

	var buf bytes.Buffer
	require.NoError(t, WriteTags(&buf, got, true, false))
	assert.Equal(t, "bank\t1\nmail\t3\n", buf.String())
}
