package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kommunelab/lovassistent/internal/model"
	"github.com/kommunelab/lovassistent/internal/repo"
	"github.com/kommunelab/lovassistent/test/testutil"
)

func unitVec(i int) []float32 {
	v := make([]float32, 384)
	v[i] = 1
	return v
}

func TestLawRepoInsertAndSearch(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()
	laws := repo.NewLawRepo(db)

	require.NoError(t, laws.Insert(ctx, &model.Law{
		LawID:     "nl-20180615-038",
		Text:      "Lov om hundehold",
		Metadata:  model.Metadata{"Tittel": "Hundeloven"},
		Embedding: unitVec(0),
	}))
	require.NoError(t, laws.Insert(ctx, &model.Law{
		LawID:     "sf-20110822-0894",
		Text:      "Forskrift om hundehold",
		Metadata:  model.Metadata{"Tittel": "Hundeforskriften"},
		Embedding: unitVec(1),
	}))

	// law_id is unique, the second insert must surface the conflict.
	require.Error(t, laws.Insert(ctx, &model.Law{
		LawID:     "nl-20180615-038",
		Text:      "duplikat",
		Embedding: unitVec(2),
	}))

	hits, err := laws.SearchByEmbedding(ctx, unitVec(0), 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "nl-20180615-038", hits[0].LawID)
	require.Equal(t, "Hundeloven", hits[0].Metadata.Title())
	require.Equal(t, "sf-20110822-0894", hits[1].LawID)

	hits, err = laws.SearchByEmbedding(ctx, unitVec(1), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "sf-20110822-0894", hits[0].LawID)
}

func TestClearCorpus(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()

	laws := repo.NewLawRepo(db)
	paragraphs := repo.NewParagraphRepo(db)
	require.NoError(t, laws.Insert(ctx, &model.Law{
		LawID: "nl-20180615-038", Text: "tekst", Embedding: unitVec(0),
	}))
	require.NoError(t, paragraphs.Insert(ctx, &model.Paragraph{
		ParagraphID: "nl-20180615-038_p1_1", LawID: "nl-20180615-038",
		ParagraphNumber: "§ 1", Text: "tekst", Embedding: unitVec(0),
	}))

	require.NoError(t, repo.ClearCorpus(ctx, db))

	hits, err := laws.SearchByEmbedding(ctx, unitVec(0), 5)
	require.NoError(t, err)
	require.Empty(t, hits)
	parHits, err := paragraphs.SearchByEmbedding(ctx, unitVec(0), nil, 5)
	require.NoError(t, err)
	require.Empty(t, parHits)
}
