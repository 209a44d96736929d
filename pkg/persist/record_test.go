package persist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-modelform/pkg/convert"
	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/persist"
)

var _ forms.RecordSource = (*persist.Record)(nil)

func TestRecordPrefillsEditForm(t *testing.T) {
	registry := testRegistry(t)
	note, _ := registry.Lookup("Note")
	tag, _ := registry.Lookup("Tag")

	rec := persist.MustNewRecord(note)
	rec.SetPK(int64(1))
	rec.Set("title", "groceries")

	urgent := persist.MustNewRecord(tag)
	urgent.SetPK(int64(10))
	urgent.Set("note_id", int64(1))
	urgent.Set("label", "urgent")
	rec.SetRelated("tags", urgent)

	converter := convert.New(convert.WithRegistry(registry))
	schema, err := converter.Form(note, convert.FieldsOptions{IncludeNested: true})
	require.NoError(t, err)

	form := schema.BindRecord(rec)
	assert.Equal(t, "groceries", form.Value("title"))

	entries := form.Field("tags").Entries
	require.Len(t, entries, 1)
	assert.Equal(t, int64(10), entries[0].Value("id"))
	assert.Equal(t, "urgent", entries[0].Value("label"))

	values := form.InputValues()
	assert.Equal(t, "urgent", values["tags-0-label"])
	assert.Equal(t, int64(10), values["tags-0-id"])
}

func TestRecordRelatedAccessors(t *testing.T) {
	registry := testRegistry(t)
	note, _ := registry.Lookup("Note")
	tag, _ := registry.Lookup("Tag")

	rec := persist.MustNewRecord(note)
	assert.Nil(t, rec.Related("tags"))
	assert.Empty(t, rec.RelatedRecords("tags"))

	child := persist.MustNewRecord(tag)
	child.Set("label", "home")
	rec.SetRelated("tags", child)

	require.Len(t, rec.Related("tags"), 1)
	label, ok := rec.Related("tags")[0].Get("label")
	require.True(t, ok)
	assert.Equal(t, "home", label)
}
