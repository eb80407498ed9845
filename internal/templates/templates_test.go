package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	all := Builtin().All()
	require.Len(t, all, 8)
	assert.Equal(t, "file-list", all[0].ID)
	assert.Equal(t, "git-status", all[7].ID)

	for _, tmpl := range all {
		assert.True(t, tmpl.Safe, tmpl.ID)
		assert.NotEmpty(t, tmpl.Examples, tmpl.ID)
		assert.Contains(t, []string{"simple", "moderate", "complex"}, tmpl.Complexity, tmpl.ID)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := Builtin().All()
	all[0].ID = "changed"
	assert.Equal(t, "file-list", Builtin().All()[0].ID)
}

func TestGet(t *testing.T) {
	tmpl, err := Builtin().Get("find-files")
	require.NoError(t, err)
	assert.Equal(t, "Find Files", tmpl.Name)
	require.Len(t, tmpl.Parameters, 3)
	assert.Equal(t, "*.txt", tmpl.Parameters[1].Default)

	_, err = Builtin().Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestByCategory(t *testing.T) {
	assert.Equal(t, []string{"disk-usage", "process-list"}, ids(Builtin().ByCategory("system")))
	assert.Empty(t, Builtin().ByCategory("unknown"))
}

func TestByTag(t *testing.T) {
	assert.Equal(t, []string{"find-files", "text-search"}, ids(Builtin().ByTag("SEARCH")))
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{query: "archive", want: []string{"archive-extract"}},
		{query: "CURL", want: []string{"network-test"}},
		{query: "processes", want: []string{"process-list"}},
		{query: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Builtin().Search(tt.query)))
		})
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{
		"file-management", "text-processing", "archive", "system", "network", "version-control",
	}, Builtin().Categories())
}

func TestPopularTags(t *testing.T) {
	tags := Builtin().PopularTags()
	require.GreaterOrEqual(t, len(tags), 2)
	// files and search are used twice, files first because it is seen first.
	assert.Equal(t, []string{"files", "search"}, tags[:2])
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		params map[string]string
		want   string
	}{
		{
			name:   "explicit values",
			id:     "find-files",
			params: map[string]string{"directory": "/var/log", "pattern": "*.log", "type": "f"},
			want:   `find /var/log -name "*.log" -type f`,
		},
		{
			name:   "defaults fill gaps",
			id:     "file-list",
			params: map[string]string{},
			want:   "ls -la .",
		},
		{
			name:   "explicit empty value removes placeholder",
			id:     "file-list",
			params: map[string]string{"directory": ""},
			want:   "ls -la",
		},
		{
			name:   "missing required without default is removed",
			id:     "text-search",
			params: map[string]string{"flags": "rn"},
			want:   `grep -rn "" *.txt`,
		},
		{
			name:   "prefix placeholders",
			id:     "archive-extract",
			params: map[string]string{"archive": "backup.tar"},
			want:   "tar -xvf backup.tar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Builtin().Get(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tmpl.Generate(tt.params))
		})
	}
}

func TestGenerateUnknownPlaceholders(t *testing.T) {
	tmpl := Template{Command: "echo {a} {b} {c}", Parameters: []Parameter{{Name: "a"}}}
	assert.Equal(t, "echo 1  3", tmpl.Generate(map[string]string{"a": "1", "c": "3"}))
}

func TestGenerateNestedPlaceholdersInNameOrder(t *testing.T) {
	tmpl := Template{Command: "echo {x} {y}"}
	params := map[string]string{"x": "{y}", "y": "Y"}
	for i := 0; i < 50; i++ {
		require.Equal(t, "echo Y Y", tmpl.Generate(params))
	}
}

func TestMissing(t *testing.T) {
	tmpl, err := Builtin().Get("network-test")
	require.NoError(t, err)

	assert.Equal(t, []string{"url"}, tmpl.Missing(nil))
	assert.Empty(t, tmpl.Missing(map[string]string{"url": "https://example.com"}))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "bad yaml", doc: "templates: ["},
		{name: "wrong version", doc: "version: 2\ntemplates: []"},
		{name: "bad id", doc: "version: 1\ntemplates:\n  - id: Bad_ID\n    command: ls"},
		{name: "duplicate id", doc: "version: 1\ntemplates:\n  - id: a\n    command: ls\n  - id: a\n    command: pwd"},
		{name: "empty command", doc: "version: 1\ntemplates:\n  - id: a\n    command: ' '"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	doc := `version: 1
templates:
  - id: git-status
    name: Git Short Status
    command: git status -sb
    category: version-control
    tags: [Git]
  - id: port-check
    name: Check Port
    command: ss -ltnp sport = :{port}
    category: network
    tags: [network]
    parameters:
      - name: port
        required: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	extra, err := LoadFile(path)
	require.NoError(t, err)

	merged := Builtin().Merge(extra)
	all := merged.All()
	require.Len(t, all, 9)

	git, err := merged.Get("git-status")
	require.NoError(t, err)
	assert.Equal(t, "git status -sb", git.Command)
	assert.Equal(t, []string{"git"}, git.Tags)
	assert.Equal(t, "port-check", all[8].ID)

	// The built-in catalog is untouched.
	orig, err := Builtin().Get("git-status")
	require.NoError(t, err)
	assert.Equal(t, "git {command}", orig.Command)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func ids(ts []Template) []string {
	out := []string{}
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}
