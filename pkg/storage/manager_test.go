package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"hashclip/pkg/candidate"
	"hashclip/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "videos")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, manager.GetOutputDir())
	assert.True(t, filepath.IsAbs(manager.AbsOutputDir()))

	// existing directory is fine
	_, err = NewManager(dir)
	assert.NoError(t, err)
}

func TestNewManagerDirectoryCreationFailed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	for _, dir := range []string{file, filepath.Join(file, "child")} {
		_, err := NewManager(dir)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindDirectoryCreationFailed), err.Error())
		assert.True(t, errors.IsFatal(err))
	}
}

func TestFileName(t *testing.T) {
	created := time.Date(2025, 5, 12, 23, 30, 0, 0, time.FixedZone("CEST", -2*3600))

	name := FileName("gopher", created, 15, 200, "mp4")
	assert.Equal(t, "gopher_20250513_likes15_views200.mp4", name)

	pattern := regexp.MustCompile(`^[A-Za-z0-9_.-]+_\d{8}_likes\d+_views\d+\.[a-z0-9]+$`)
	assert.Regexp(t, pattern, name)
}

func TestFileNameDeterministic(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	first := FileName("news_bot", created, 42, 1000, "webm")
	second := FileName("news_bot", created, 42, 1000, "webm")
	assert.Equal(t, first, second)

	assert.NotEqual(t, first, FileName("news_bot", created, 42, 1001, "webm"))
	assert.NotEqual(t, first, FileName("news_bot", created, 43, 1000, "webm"))
}

func TestFileStemEdgeCases(t *testing.T) {
	assert.Equal(t, "unknown_00000000_likes0_views0", FileStem("", time.Time{}, 0, 0))
	assert.Equal(t, "a_b_20250101_likes1_views2", FileStem("a/b", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 1, 2))
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"gopher":     "gopher",
		"Go_Pher-1":  "Go_Pher-1",
		"../etc":     "_._etc",
		"a b":        "a_b",
		"":           "unknown",
		"   ":        "unknown",
		"użytkownik": "u_ytkownik",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeName(in), in)
	}
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "mp4", NormalizeExt(""))
	assert.Equal(t, "mp4", NormalizeExt(".MP4"))
	assert.Equal(t, "webm", NormalizeExt("webm"))
	assert.Equal(t, DefaultExt, NormalizeExt("m/p4"))
	assert.Equal(t, DefaultExt, NormalizeExt("averyverylongext"))
}

func post(id, author string, likes int) candidate.Candidate {
	return candidate.Candidate{
		ID:        id,
		Author:    author,
		Likes:     likes,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBasePath(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	manager.Plan([]candidate.Candidate{
		post("100", "gopher", 1),
		post("200", "gopher", 1),
		post("300", "gopher", 2),
	})

	// the first post of a group keeps the plain name
	base := manager.BasePath("gopher_20250601_likes1_views2", "100")
	assert.Equal(t, filepath.Join(dir, "gopher_20250601_likes1_views2"), base)
	assert.Equal(t, base, manager.BasePath("gopher_20250601_likes1_views2", "100"))

	// later members get their id, whatever views they end up with
	assert.Equal(t, filepath.Join(dir, "gopher_20250601_likes1_views2_200"), manager.BasePath("gopher_20250601_likes1_views2", "200"))
	assert.Equal(t, filepath.Join(dir, "gopher_20250601_likes1_views9_200"), manager.BasePath("gopher_20250601_likes1_views9", "200"))

	// alone in its group
	assert.Equal(t, filepath.Join(dir, "gopher_20250601_likes2_views2"), manager.BasePath("gopher_20250601_likes2_views2", "300"))
}

func TestPlanGroupsBySanitizedAuthor(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	manager.Plan([]candidate.Candidate{post("1", "a b", 5), post("2", "a/b", 5)})

	assert.Equal(t, filepath.Join(dir, "a_b_20250601_likes5_views0"), manager.BasePath("a_b_20250601_likes5_views0", "1"))
	assert.Equal(t, filepath.Join(dir, "a_b_20250601_likes5_views0_2"), manager.BasePath("a_b_20250601_likes5_views0", "2"))
}

func TestBasePathConcurrent(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	candidates := []candidate.Candidate{post("1", "x", 20), post("2", "x", 20)}
	manager.Plan(candidates)

	var wg sync.WaitGroup
	bases := make([]string, 20)
	for i := range bases {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bases[i] = manager.BasePath(FileStem("x", candidates[0].CreatedAt, 20, 500), candidates[i%2].ID)
		}(i)
	}
	wg.Wait()

	for i, b := range bases {
		if i%2 == 0 {
			assert.Equal(t, "x_20250601_likes20_views500", filepath.Base(b))
		} else {
			assert.Equal(t, "x_20250601_likes20_views500_2", filepath.Base(b))
		}
	}

	// a new plan replaces the previous one
	manager.Plan([]candidate.Candidate{candidates[1]})
	assert.Equal(t, "x_20250601_likes20_views500", filepath.Base(manager.BasePath("x_20250601_likes20_views500", "2")))
}

func TestTemplateAndPath(t *testing.T) {
	assert.Equal(t, "out/x.%(ext)s", Template("out/x"))
	assert.Equal(t, "out/x.mkv", PathFor("out/x", "mkv"))
	assert.Equal(t, "out/x.mp4", PathFor("out/x", ""))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v.mp4")
	assert.False(t, Exists(path))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	assert.True(t, Exists(path))
	assert.False(t, Exists(dir))
}
