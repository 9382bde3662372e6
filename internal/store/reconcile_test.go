package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memSection is an in-memory sectionOps for exercising identity
// resolution without a database.
type memSection struct {
	rows    []recordKey
	findErr map[string]error
}

func (m *memSection) find(ctx context.Context, slug string) (*recordKey, error) {
	if err := m.findErr[slug]; err != nil {
		return nil, err
	}
	for i := range m.rows {
		if m.rows[i].Slug == slug {
			r := m.rows[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memSection) all(ctx context.Context) ([]recordKey, error) {
	out := make([]recordKey, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

// upsert mirrors what a section apply does, so later batch elements
// observe earlier elements' effects.
func (m *memSection) upsert(in recordKey, res resolution) {
	if res.existing != nil {
		for i := range m.rows {
			if m.rows[i].ID == res.existing.ID {
				m.rows[i].Slug = res.slug
				m.rows[i].Title = in.Title
				return
			}
		}
	}
	id := in.ID
	if id == "" {
		id = fmt.Sprintf("gen-%d", len(m.rows)+1)
	}
	m.rows = append(m.rows, recordKey{ID: id, Slug: res.slug, Title: in.Title})
}

func TestResolvePreservesSlugWhenAbsent(t *testing.T) {
	sec := &memSection{rows: []recordKey{
		{ID: "r1", Slug: "old-slug", Title: "Old Title"},
	}}

	// Legacy documents address rows by id == slug.
	res, err := resolveRecord(context.Background(), recordKey{ID: "old-slug", Title: "New Title"}, sec)
	require.NoError(t, err)
	require.NotNil(t, res.existing)
	assert.Equal(t, "r1", res.existing.ID, "must update the same row, not create a new one")
	assert.Equal(t, "old-slug", res.slug, "absent slug must not rename the row")
}

func TestResolveByTitleFallback(t *testing.T) {
	sec := &memSection{rows: []recordKey{
		{ID: "r1", Slug: "alpha", Title: "Alpha Launch"},
		{ID: "r2", Slug: "beta", Title: "Beta Launch"},
	}}

	res, err := resolveRecord(context.Background(), recordKey{Title: "Beta Launch"}, sec)
	require.NoError(t, err)
	require.NotNil(t, res.existing)
	assert.Equal(t, "r2", res.existing.ID)
	assert.Equal(t, "beta", res.slug)

	// Case-insensitive as last resort.
	res, err = resolveRecord(context.Background(), recordKey{Title: "ALPHA launch"}, sec)
	require.NoError(t, err)
	require.NotNil(t, res.existing)
	assert.Equal(t, "r1", res.existing.ID)
}

func TestResolveRefusesRenameOntoOccupiedSlug(t *testing.T) {
	sec := &memSection{rows: []recordKey{
		{ID: "a", Slug: "foo", Title: "Foo"},
		{ID: "b", Slug: "bar", Title: "Bar"},
	}}

	// B is being renamed to "foo", which A already occupies.
	res, err := resolveRecord(context.Background(), recordKey{ID: "bar", Slug: "foo", Title: "Foo Two"}, sec)
	require.NoError(t, err)
	require.NotNil(t, res.existing)
	assert.Equal(t, "b", res.existing.ID, "the id match is the row being edited")
	assert.Equal(t, "bar", res.slug, "collision must keep the current slug")
}

func TestResolveRenamesWhenSlugVacant(t *testing.T) {
	sec := &memSection{rows: []recordKey{
		{ID: "b", Slug: "bar", Title: "Bar"},
	}}

	res, err := resolveRecord(context.Background(), recordKey{ID: "bar", Slug: "baz", Title: "Bar"}, sec)
	require.NoError(t, err)
	require.NotNil(t, res.existing)
	assert.Equal(t, "b", res.existing.ID)
	assert.Equal(t, "baz", res.slug)
}

func TestResolveNewRecordSlugGeneration(t *testing.T) {
	sec := &memSection{}

	res, err := resolveRecord(context.Background(), recordKey{Title: "Hello,  World!"}, sec)
	require.NoError(t, err)
	assert.Nil(t, res.existing)
	assert.Equal(t, "hello-world", res.slug)

	res, err = resolveRecord(context.Background(), recordKey{}, sec)
	require.NoError(t, err)
	assert.Nil(t, res.existing)
	assert.True(t, strings.HasPrefix(res.slug, "untitled-"), "untitled records fall back to a timestamp slug")
}

func TestReconcileBatchFirstWriteWins(t *testing.T) {
	sec := &memSection{}
	items := []recordKey{
		{Slug: "launch", Title: "Launch"},
		{Slug: "launch", Title: "Launch Again"},
		{Slug: "other", Title: "Other"},
	}

	tally := reconcileBatch(context.Background(), "projects", items,
		func(k *recordKey) recordKey { return *k },
		sec,
		func(ctx context.Context, item *recordKey, res resolution) error {
			sec.upsert(*item, res)
			return nil
		},
		zap.NewNop())

	assert.Equal(t, SyncTally{Succeeded: 2, Skipped: 1}, tally)
	require.Len(t, sec.rows, 2)
	assert.Equal(t, "Launch", sec.rows[0].Title, "first write wins within a batch")
}

func TestReconcileBatchContinuesPastFailures(t *testing.T) {
	sec := &memSection{}
	items := []recordKey{
		{Slug: "good-one", Title: "Good One"},
		{Slug: "bad", Title: "Bad"},
		{Slug: "good-two", Title: "Good Two"},
	}

	tally := reconcileBatch(context.Background(), "projects", items,
		func(k *recordKey) recordKey { return *k },
		sec,
		func(ctx context.Context, item *recordKey, res resolution) error {
			if item.Slug == "bad" {
				return errors.New("boom")
			}
			sec.upsert(*item, res)
			return nil
		},
		zap.NewNop())

	assert.Equal(t, SyncTally{Succeeded: 2, Failed: 1}, tally)
	assert.Len(t, sec.rows, 2, "one bad record must not block the rest of the batch")
}

func TestReconcileBatchLaterElementsSeeEarlierEffects(t *testing.T) {
	sec := &memSection{}
	items := []recordKey{
		{Title: "Fresh Project"},            // creates slug fresh-project
		{Slug: "fresh-project", Title: "X"}, // resolves to the row just created
	}

	tally := reconcileBatch(context.Background(), "projects", items,
		func(k *recordKey) recordKey { return *k },
		sec,
		func(ctx context.Context, item *recordKey, res resolution) error {
			sec.upsert(*item, res)
			return nil
		},
		zap.NewNop())

	assert.Equal(t, SyncTally{Succeeded: 1, Skipped: 1}, tally)
	assert.Len(t, sec.rows, 1)
}

func TestReconcileBatchResolutionErrorCountsAsFailure(t *testing.T) {
	sec := &memSection{findErr: map[string]error{"broken": errors.New("io error")}}
	items := []recordKey{{Slug: "broken", Title: "Broken"}}

	tally := reconcileBatch(context.Background(), "projects", items,
		func(k *recordKey) recordKey { return *k },
		sec,
		func(ctx context.Context, item *recordKey, res resolution) error { return nil },
		zap.NewNop())

	assert.Equal(t, SyncTally{Failed: 1}, tally)
}
