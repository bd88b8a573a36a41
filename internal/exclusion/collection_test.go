package exclusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/licaudit/internal/scanerr"
)

func TestParseCollection(t *testing.T) {
	tests := []struct {
		in   string
		want Collection
	}{
		{"git", Git},
		{" GIT ", Git},
		{"svn", Subversion},
		{"hidden_dir", HiddenDir},
		{"standard_patterns", StandardPatterns},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCollection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCollection("nope")
	require.Error(t, err)
	assert.True(t, scanerr.IsConfiguration(err))
}

func TestCollection_Expand(t *testing.T) {
	all := All.Expand()
	assert.Contains(t, all, Git)
	assert.Contains(t, all, HiddenDir)
	assert.NotContains(t, all, All)
	assert.NotContains(t, all, StandardPatterns)
	assert.NotContains(t, all, StandardSCMs)

	assert.Equal(t, []Collection{Subversion, Git, Bazaar, Mercurial, CVS}, StandardSCMs.Expand())
	assert.Equal(t, []Collection{Mac}, Mac.Expand())
}

func TestCollection_Patterns(t *testing.T) {
	assert.Equal(t, []string{"**/.git/**", "**/.gitignore"}, Git.Patterns())
	assert.Contains(t, StandardSCMs.Patterns(), "**/.svn/**")
	assert.Contains(t, StandardSCMs.Patterns(), "**/.hg/**")
	assert.Empty(t, HiddenFile.Patterns())

	cvs := CVS.Patterns()
	assert.Equal(t, len(cvs), len(uniqueStrings(cvs)))
}

func TestCollection_ProcessorsAndMatchers(t *testing.T) {
	assert.True(t, Git.HasProcessor())
	assert.False(t, Maven.HasProcessor())
	assert.Len(t, StandardSCMs.FileProcessors(), 4)

	assert.Nil(t, Maven.Matcher())
	assert.Equal(t, "HIDDEN_DIR", HiddenDir.Matcher().Name())
	assert.Equal(t, "or(HIDDEN_DIR, HIDDEN_FILE)", All.Matcher().Name())
}

func TestCollections_Sorted(t *testing.T) {
	cs := Collections()
	assert.Len(t, cs, 24)
	assert.Equal(t, All, cs[0])
	assert.Equal(t, VSS, cs[len(cs)-1])
	for _, c := range cs {
		assert.NotEmpty(t, c.Description(), c)
	}
}

func uniqueStrings(in []string) map[string]bool {
	out := map[string]bool{}
	for _, s := range in {
		out[s] = true
	}
	return out
}
