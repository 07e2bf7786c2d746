package firestore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmulatorStore returns a Store on the Firestore emulator, seeded with a
// fresh project so tests do not share documents.
func newEmulatorStore(t *testing.T) (*Store, *firestore.Client) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	project := fmt.Sprintf("flavourkitchen-test-%d", time.Now().UnixNano())
	client, err := firestore.NewClient(ctx, project)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return New(client, nil), client
}

func seed(t *testing.T, client *firestore.Client) {
	t.Helper()
	ctx := context.Background()
	sets := []struct {
		coll string
		id   string
		data map[string]any
	}{
		{"categories", "c1", map[string]any{"slug": "thai", "title": "Thai", "description": "Bright"}},
		{"categories", "c2", map[string]any{"slug": "italian", "title": "Italian"}},
		{"recipes", "r1", map[string]any{"slug": "pad-thai", "title": "Pad Thai", "category_id": "c1", "servings": 2, "content": "Notes", "imgix_url": "https://imgix.cosmicjs.com/p.jpg"}},
		{"recipes", "r2", map[string]any{"slug": "risotto", "title": "Risotto", "category_id": "c2"}},
		{"recipes", "r3", map[string]any{"slug": "toast", "title": "Toast", "category_id": "gone"}},
	}
	for _, s := range sets {
		_, err := client.Collection(s.coll).Doc(s.id).Set(ctx, s.data)
		require.NoError(t, err)
	}
}

func TestStore_ListRecipesExpandsCategories(t *testing.T) {
	store, client := newEmulatorStore(t)
	seed(t, client)

	recipes, err := store.ListRecipes(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 3)

	bySlug := map[string]string{}
	for _, r := range recipes {
		bySlug[r.Slug] = r.CategorySlug()
	}
	assert.Equal(t, "thai", bySlug["pad-thai"])
	assert.Equal(t, "italian", bySlug["risotto"])
	assert.Equal(t, "", bySlug["toast"])
}

func TestStore_ListRecipesSkipsMalformedDocument(t *testing.T) {
	store, client := newEmulatorStore(t)
	seed(t, client)
	_, err := client.Collection("recipes").Doc("r4").Set(context.Background(),
		map[string]any{"slug": "stew", "title": "Stew", "servings": "4-6"})
	require.NoError(t, err)

	recipes, err := store.ListRecipes(context.Background())
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
}

func TestStore_PointLookups(t *testing.T) {
	store, client := newEmulatorStore(t)
	seed(t, client)
	ctx := context.Background()

	r, err := store.GetRecipeBySlug(ctx, "pad-thai")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "Notes", *r.Content)
	assert.Equal(t, 2, r.ServingCount())
	assert.Equal(t, "Thai", r.Metadata.Category.Title)
	assert.Equal(t, "https://imgix.cosmicjs.com/p.jpg", r.ImgixURL())

	missing, err := store.GetRecipeBySlug(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	c, err := store.GetCategoryBySlug(ctx, "thai")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "c1", c.ID)

	byCat, err := store.ListRecipesByCategory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "pad-thai", byCat[0].Slug)

	about, err := store.GetAboutPage(ctx)
	require.NoError(t, err)
	assert.Nil(t, about)
}

func TestOpen_RequiresProject(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrMissingProject)
}
