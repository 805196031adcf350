package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dshills/canvasundo/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDocument returns a small diagram whose cells are ordered by ID.
func testDocument(id string) *scene.Document {
	return &scene.Document{
		ID:   id,
		Name: "Diagram " + id,
		Cells: []scene.Cell{
			scene.NewConnector("e1", "n1", "n2", scene.Attributes{"label": "next"}),
			scene.NewNode("n1", scene.Attributes{
				"x":     10,
				"y":     20,
				"scale": 1.5,
				"style": map[string]any{"fill": "#fff", "stroke": 2},
			}),
			scene.NewNode("n2", scene.Attributes{"x": 200, "y": 20, "locked": true}),
		},
	}
}

// forEachRepository runs fn against every DiagramRepository implementation.
func forEachRepository(t *testing.T, fn func(t *testing.T, repo DiagramRepository)) {
	t.Run("filesystem", func(t *testing.T) {
		repo, err := NewFilesystemDiagramRepository(t.TempDir())
		require.NoError(t, err)
		fn(t, repo)
	})

	t.Run("sqlite", func(t *testing.T) {
		repo, err := NewSQLiteDiagramRepository(filepath.Join(t.TempDir(), "diagrams.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		fn(t, repo)
	})
}

func TestRepository_SaveLoadRoundTrip(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo DiagramRepository) {
		doc := testDocument("d1")
		require.NoError(t, repo.Save(doc))

		loaded, err := repo.Load("d1")
		require.NoError(t, err)

		assert.Equal(t, doc.ID, loaded.ID)
		assert.Equal(t, doc.Name, loaded.Name)
		assert.Equal(t, doc.Cells, loaded.Cells)
	})
}

func TestRepository_SaveReplaces(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo DiagramRepository) {
		doc := testDocument("d1")
		require.NoError(t, repo.Save(doc))

		doc.Name = "Renamed"
		doc.Cells = doc.Cells[1:2]
		require.NoError(t, repo.Save(doc))

		loaded, err := repo.Load("d1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.Name)
		require.Len(t, loaded.Cells, 1)
		assert.Equal(t, "n1", loaded.Cells[0].ID)
	})
}

func TestRepository_LoadMissing(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo DiagramRepository) {
		_, err := repo.Load("missing")
		assert.ErrorIs(t, err, ErrDiagramNotFound)
	})
}

func TestRepository_Delete(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo DiagramRepository) {
		require.NoError(t, repo.Save(testDocument("d1")))
		require.NoError(t, repo.Delete("d1"))

		_, err := repo.Load("d1")
		assert.ErrorIs(t, err, ErrDiagramNotFound)

		assert.ErrorIs(t, repo.Delete("d1"), ErrDiagramNotFound)
	})
}

func TestRepository_List(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo DiagramRepository) {
		empty, err := repo.List()
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, id := range []string{"zeta", "alpha", "mid"} {
			require.NoError(t, repo.Save(testDocument(id)))
		}

		summaries, err := repo.List()
		require.NoError(t, err)
		require.Len(t, summaries, 3)

		ids := make([]string, len(summaries))
		for i, s := range summaries {
			ids[i] = s.ID
			assert.Equal(t, 3, s.Cells)
			assert.Equal(t, "Diagram "+s.ID, s.Name)
			assert.False(t, s.UpdatedAt.IsZero())
		}
		assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
	})
}

func TestRepository_RejectsInvalid(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo DiagramRepository) {
		assert.Error(t, repo.Save(nil))
		assert.Error(t, repo.Save(&scene.Document{}))

		_, err := repo.Load("")
		assert.Error(t, err)
		assert.Error(t, repo.Delete(""))
	})
}

func TestFilesystemRepository_RejectsPathTraversal(t *testing.T) {
	repo, err := NewFilesystemDiagramRepository(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"../escape", `a\b`, "..", "."} {
		t.Run(id, func(t *testing.T) {
			doc := testDocument(id)
			assert.Error(t, repo.Save(doc))
			_, err := repo.Load(id)
			assert.Error(t, err)
		})
	}
}

func TestSQLiteRepository_RejectsDanglingConnector(t *testing.T) {
	repo, err := NewSQLiteDiagramRepository(filepath.Join(t.TempDir(), "diagrams.db"))
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	doc := &scene.Document{
		ID:    "d1",
		Cells: []scene.Cell{scene.NewConnector("e1", "n1", "missing", nil)},
	}
	assert.ErrorIs(t, repo.Save(doc), scene.ErrInvalidCell)

	_, err = repo.Load("d1")
	assert.ErrorIs(t, err, ErrDiagramNotFound)
}

func TestSQLiteRepository_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "diagrams.db")

	repo, err := NewSQLiteDiagramRepository(dbPath)
	require.NoError(t, err)
	require.NoError(t, repo.Save(testDocument("d1")))
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteDiagramRepository(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.Load("d1")
	require.NoError(t, err)
	assert.Len(t, loaded.Cells, 3)
}

func TestNormalizeNumbers(t *testing.T) {
	in := map[string]any{
		"int":    float64(42),
		"float":  2.25,
		"nested": map[string]any{"n": float64(-3)},
		"list":   []any{float64(1), 0.5, "x"},
	}

	out := normalizeNumbers(in).(map[string]any)

	assert.Equal(t, 42, out["int"])
	assert.Equal(t, 2.25, out["float"])
	assert.Equal(t, map[string]any{"n": -3}, out["nested"])
	assert.Equal(t, []any{1, 0.5, "x"}, out["list"])
}

// BenchmarkSQLiteRepository_Load benchmarks loading diagrams of growing size
func BenchmarkSQLiteRepository_Load(b *testing.B) {
	for _, size := range []int{10, 100, 500} {
		b.Run(fmt.Sprintf("cells=%d", size), func(b *testing.B) {
			repo, err := NewSQLiteDiagramRepository(filepath.Join(b.TempDir(), "bench.db"))
			require.NoError(b, err)
			defer func() { _ = repo.Close() }()

			doc := &scene.Document{ID: "bench"}
			for i := 0; i < size; i++ {
				doc.Cells = append(doc.Cells, scene.NewNode(fmt.Sprintf("n%04d", i),
					scene.Attributes{"x": i, "y": i * 2, "label": "node"}))
			}
			require.NoError(b, repo.Save(doc))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := repo.Load("bench"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestSQLiteRepository_NullAttributes(t *testing.T) {
	repo, err := NewSQLiteDiagramRepository(filepath.Join(t.TempDir(), "diagrams.db"))
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	require.NoError(t, repo.Save(testDocument("d1")))
	_, err = repo.db.Exec("UPDATE cells SET attributes = 'null' WHERE cell_id = 'n2'")
	require.NoError(t, err)

	doc, err := repo.Load("d1")
	require.NoError(t, err)
	require.Len(t, doc.Cells, 3)
	assert.Equal(t, "n2", doc.Cells[2].ID)
	assert.NotNil(t, doc.Cells[2].Attributes)
	assert.Empty(t, doc.Cells[2].Attributes)
}

func TestSQLiteRepository_IntegralFloatsLoadAsInts(t *testing.T) {
	repo, err := NewSQLiteDiagramRepository(filepath.Join(t.TempDir(), "diagrams.db"))
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	doc := &scene.Document{
		ID:    "d1",
		Cells: []scene.Cell{scene.NewNode("n1", scene.Attributes{"w": 2.0, "h": 2.5})},
	}
	require.NoError(t, repo.Save(doc))

	loaded, err := repo.Load("d1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Cells[0].Attributes["w"])
	assert.Equal(t, 2.5, loaded.Cells[0].Attributes["h"])
}
