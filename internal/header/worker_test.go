package header

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/internal/document"
	"github.com/bartekus/licaudit/internal/license"
	"github.com/bartekus/licaudit/internal/scanerr"
)

func entry(content string) *document.ArchiveEntryDocument {
	return document.NewArchiveEntryDocument(document.NewName("/r/a.go", "/r", document.UnixFS), []byte(content))
}

func collection(t *testing.T) *license.Collection {
	t.Helper()
	c, err := license.NewCollection(license.DuplicateIgnore,
		license.NewLicense("AL2.0", "", license.NewFamily("AL", "Apache"), license.NewSubstring("al", "Apache License")),
	)
	require.NoError(t, err)
	return c
}

func approveAll(*license.License) bool { return true }

func TestCheck_Matched(t *testing.T) {
	w, err := NewWorker(DefaultMaxRetainedLines, approveAll)
	require.NoError(t, err)
	coll := collection(t)

	doc := entry("// Copyright\r\n// Licensed under the Apache License\npackage x\n")
	assert.Equal(t, Matched, w.Check(doc, coll))

	claims := doc.MetaData().Licenses()
	require.Len(t, claims, 1)
	assert.Equal(t, "AL", claims[0].FamilyCategory)
	assert.True(t, claims[0].Approved)
	assert.Empty(t, doc.MetaData().SampleHeader())
	assert.Nil(t, coll.Matched(), "collection is reset after the check")
}

func TestCheck_Exhausted(t *testing.T) {
	w, err := NewWorker(2, nil)
	require.NoError(t, err)

	doc := entry("one\ntwo\nthree")
	assert.Equal(t, Exhausted, w.Check(doc, collection(t)))

	claims := doc.MetaData().Licenses()
	require.Len(t, claims, 1)
	assert.Equal(t, license.UnknownFamily.ID(), claims[0].FamilyCategory)
	assert.False(t, doc.MetaData().Approved())
	assert.Equal(t, "one\ntwo\n", doc.MetaData().SampleHeader())
}

func TestCheck_ExhaustedAtDefaultCap(t *testing.T) {
	w, err := NewWorker(DefaultMaxRetainedLines, nil)
	require.NoError(t, err)

	var b strings.Builder
	for range 200 {
		b.WriteString("// nothing to see\n")
	}
	doc := entry(b.String())
	assert.Equal(t, Exhausted, w.Check(doc, collection(t)))

	claims := doc.MetaData().Licenses()
	require.Len(t, claims, 1)
	assert.Equal(t, license.UnknownFamily.ID(), claims[0].FamilyCategory)
	assert.Equal(t, strings.Repeat("// nothing to see\n", DefaultMaxRetainedLines), doc.MetaData().SampleHeader())
}

func TestCheck_DecidedAtEndOfDocument(t *testing.T) {
	newColl := func(t *testing.T) *license.Collection {
		t.Helper()
		c, err := license.NewCopyright("c", "", "", "")
		require.NoError(t, err)
		m := license.NewAll("proprietary", c, license.NewNot("n", license.NewSubstring("g", "GNU General Public License")))
		coll, err := license.NewCollection(license.DuplicateIgnore,
			license.NewLicense("ACME", "", license.NewFamily("ACME", "Acme proprietary"), m),
		)
		require.NoError(t, err)
		return coll
	}
	w, err := NewWorker(DefaultMaxRetainedLines, approveAll)
	require.NoError(t, err)

	t.Run("matched at end", func(t *testing.T) {
		doc := entry("// Copyright 2024 Acme\npackage x\n")
		assert.Equal(t, Matched, w.Check(doc, newColl(t)))
		claims := doc.MetaData().Licenses()
		require.Len(t, claims, 1)
		assert.Equal(t, "ACME", claims[0].FamilyCategory)
	})

	t.Run("excluded by a later line", func(t *testing.T) {
		doc := entry("// Copyright 2024 Acme\n// GNU General Public License v3\npackage x\n")
		assert.Equal(t, Exhausted, w.Check(doc, newColl(t)))
		claims := doc.MetaData().Licenses()
		require.Len(t, claims, 1)
		assert.Equal(t, license.UnknownFamily.ID(), claims[0].FamilyCategory)
	})
}

func TestCheck_LastLineWithoutNewline(t *testing.T) {
	w, err := NewWorker(0, approveAll)
	require.NoError(t, err)
	assert.Equal(t, Matched, w.Check(entry("x\nApache License"), collection(t)))
}

func TestCheck_LongLine(t *testing.T) {
	w, err := NewWorker(1, approveAll)
	require.NoError(t, err)
	long := strings.Repeat("a", 1<<20) + " Apache License"
	assert.Equal(t, Matched, w.Check(entry(long), collection(t)))
}

func TestNewWorker_Negative(t *testing.T) {
	_, err := NewWorker(-1, nil)
	assert.True(t, scanerr.IsConfiguration(err))
}

type brokenDoc struct {
	*document.ArchiveEntryDocument
}

type brokenReader struct{ sent bool }

func (r *brokenReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "first line\n"), nil
	}
	return 0, errors.New("disk on fire")
}

func (brokenDoc) Open() (io.ReadCloser, error) {
	return io.NopCloser(&brokenReader{}), nil
}

func TestCheck_ReadErrorIsRecoverable(t *testing.T) {
	w, err := NewWorker(DefaultMaxRetainedLines, approveAll)
	require.NoError(t, err)

	doc := brokenDoc{entry("")}
	assert.Equal(t, Failed, w.Check(doc, collection(t)))
	assert.Equal(t, document.TypeUnknown, doc.MetaData().Type())
	assert.Contains(t, doc.MetaData().Err(), "disk on fire")
	assert.Contains(t, doc.MetaData().Err(), "analysing /a.go")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "matched", Matched.String())
	assert.Equal(t, "exhausted", Exhausted.String())
}
