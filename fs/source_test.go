package fs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/socialarchive"
	"github.com/fwojciec/socialarchive/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pagesJSON = `[
	{"slug": "intro", "created_time": "2019-08-01", "last_modified": {"time": "2019-09-01"}, "links": [], "roundgroup": null},
	{"slug": "lab1", "created_time": "2019-08-02", "last_modified": {"time": "2019-09-02"},
	 "links": [{"url": "/social/upload/lab1.pdf", "created_time": "2019-08-03", "category": "file"}], "roundgroup": "HT19"}
]`

func TestSource_ListCourses(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "B/BB2000/00-info.json", `{}`)
	writeFile(t, root, "A/AB1234/00-info.json", `{}`)
	writeFile(t, root, "A/AA0001/00-info.json", `{}`)
	writeFile(t, root, "A/stray.txt", "x")
	writeFile(t, root, "README", "x")

	refs, err := fs.NewSource(root).ListCourses(context.Background())

	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "AA0001", refs[0].Code)
	assert.Equal(t, "AB1234", refs[1].Code)
	assert.Equal(t, "BB2000", refs[2].Code)
	assert.Equal(t, "B", refs[2].Letter)
	assert.Equal(t, filepath.Join(root, "B", "BB2000"), refs[2].Dir)
}

func TestSource_LoadCourse(t *testing.T) {
	t.Parallel()

	ref := func(root string) socialarchive.CourseRef {
		return socialarchive.CourseRef{Letter: "A", Code: "AB1234", Dir: filepath.Join(root, "A", "AB1234")}
	}

	t.Run("loads pages and info", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "A/AB1234/00-pages.json", pagesJSON)
		writeFile(t, root, "A/AB1234/00-info.json", `{"code": "AB1234", "name": {"sv": "Kurs", "en": "Course"}}`)

		course, err := fs.NewSource(root).LoadCourse(context.Background(), ref(root))

		require.NoError(t, err)
		assert.Equal(t, "AB1234", course.Info.Code)
		assert.Equal(t, "Course", course.Info.Names["en"])
		require.Len(t, course.Pages, 2)
		assert.Equal(t, "intro", course.Pages[0].Slug)
		assert.Empty(t, course.Pages[0].Group)
		assert.Equal(t, "HT19", course.Pages[1].Group)
	})

	t.Run("returns ENOTFOUND for a missing manifest", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "A/AB1234/00-info.json", `{"code": "AB1234"}`)

		_, err := fs.NewSource(root).LoadCourse(context.Background(), ref(root))

		assert.Equal(t, socialarchive.ENOTFOUND, socialarchive.ErrorCode(err))
		assert.Contains(t, socialarchive.ErrorMessage(err), "00-pages.json")
	})

	t.Run("returns EINVALID for malformed json", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "A/AB1234/00-pages.json", `[{`)
		writeFile(t, root, "A/AB1234/00-info.json", `{"code": "AB1234"}`)

		_, err := fs.NewSource(root).LoadCourse(context.Background(), ref(root))

		assert.Equal(t, socialarchive.EINVALID, socialarchive.ErrorCode(err))
	})

	t.Run("returns EINVALID for an unknown link category", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "A/AB1234/00-pages.json", `[{"slug": "a", "links": [{"url": "x", "category": "podcast"}]}]`)
		writeFile(t, root, "A/AB1234/00-info.json", `{"code": "AB1234"}`)

		_, err := fs.NewSource(root).LoadCourse(context.Background(), ref(root))

		assert.Equal(t, socialarchive.EINVALID, socialarchive.ErrorCode(err))
		assert.Contains(t, socialarchive.ErrorMessage(err), "podcast")
	})

	t.Run("rejects an info code that does not match the directory", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, root, "A/AB1234/00-pages.json", `[]`)
		writeFile(t, root, "A/AB1234/00-info.json", `{"code": "XX9999"}`)

		_, err := fs.NewSource(root).LoadCourse(context.Background(), ref(root))

		assert.Equal(t, socialarchive.EINVALID, socialarchive.ErrorCode(err))
	})
}

func TestSource_ReadPageBody(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "A/AB1234/intro.html", "<p>see the exam</p>")
	src := fs.NewSource(root)
	ref := socialarchive.CourseRef{Letter: "A", Code: "AB1234", Dir: filepath.Join(root, "A", "AB1234")}

	body, err := src.ReadPageBody(context.Background(), ref, &socialarchive.Page{Slug: "intro"})
	require.NoError(t, err)
	assert.Equal(t, "<p>see the exam</p>", body)

	_, err = src.ReadPageBody(context.Background(), ref, &socialarchive.Page{Slug: "missing"})
	assert.Equal(t, socialarchive.ENOTFOUND, socialarchive.ErrorCode(err))
}

func TestSource_ReadAttachment(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := writeFile(t, root, "a.txt", "hello")
	src := fs.NewSource(root)

	data, err := src.ReadAttachment(context.Background(), &socialarchive.ResolvedAttachment{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = src.ReadAttachment(context.Background(), &socialarchive.ResolvedAttachment{Path: filepath.Join(root, "gone.txt")})
	assert.Equal(t, socialarchive.EUNREADABLE, socialarchive.ErrorCode(err))
}
