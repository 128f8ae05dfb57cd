package services

import (
	"context"
	"testing"

	"recipebox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecipe_ListAndGet(t *testing.T) {
	auth, recipes, _ := newServices(t)
	ctx := context.Background()
	u := mustRegister(t, auth, "cook", "cook@example.com")

	created, err := recipes.CreateRecipe(ctx, u, RecipeInput{
		Title:        "Test Recipe",
		Ingredients:  "i",
		Instructions: "s",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, u.ID, created.Author.ID)

	all, err := recipes.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Test Recipe", all[0].Title)
	assert.Equal(t, "cook", all[0].Author.Username)

	got, err := recipes.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Test Recipe", got.Title)
	assert.Equal(t, "i", got.Ingredients)
	assert.Equal(t, "s", got.Instructions)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, u.ID, got.AuthorID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestCreateRecipe_Validation(t *testing.T) {
	auth, recipes, _ := newServices(t)
	ctx := context.Background()
	u := mustRegister(t, auth, "cook", "cook@example.com")

	_, err := recipes.CreateRecipe(ctx, u, RecipeInput{Title: "  ", Description: "only this"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "ingredients")
	assert.Contains(t, verr.Fields, "instructions")

	all, err := recipes.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRecipe_RequiresAuthor(t *testing.T) {
	_, recipes, _ := newServices(t)

	_, err := recipes.CreateRecipe(context.Background(), nil, RecipeInput{Title: "t", Ingredients: "i", Instructions: "s"})
	assert.Error(t, err)
}

func TestListRecipes_NewestFirst(t *testing.T) {
	auth, recipes, _ := newServices(t)
	ctx := context.Background()
	u := mustRegister(t, auth, "cook", "cook@example.com")

	for _, title := range []string{"first", "second"} {
		_, err := recipes.CreateRecipe(ctx, u, RecipeInput{Title: title, Ingredients: "i", Instructions: "s"})
		require.NoError(t, err)
	}

	all, err := recipes.ListRecipes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title)
	assert.Equal(t, "first", all[1].Title)
}

func TestGetRecipe_NotFound(t *testing.T) {
	_, recipes, _ := newServices(t)

	_, err := recipes.GetRecipe(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddComment(t *testing.T) {
	auth, recipes, _ := newServices(t)
	ctx := context.Background()
	u := mustRegister(t, auth, "cook", "cook@example.com")
	r, err := recipes.CreateRecipe(ctx, u, RecipeInput{Title: "Soup", Ingredients: "water", Instructions: "boil"})
	require.NoError(t, err)

	_, err = recipes.AddComment(ctx, r.ID+1, u, "lovely")
	assert.ErrorIs(t, err, ErrNotFound)

	var verr *ValidationError
	_, err = recipes.AddComment(ctx, r.ID, u, "   ")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "comment")

	c, err := recipes.AddComment(ctx, r.ID, u, "lovely")
	require.NoError(t, err)
	assert.Equal(t, r.ID, c.RecipeID)

	comments, err := recipes.ListComments(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "lovely", comments[0].Body)
	assert.Equal(t, "cook", comments[0].Author.Username)

	other, err := recipes.ListComments(ctx, r.ID+1)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAddRating(t *testing.T) {
	auth, recipes, _ := newServices(t)
	ctx := context.Background()
	u := mustRegister(t, auth, "cook", "cook@example.com")
	r, err := recipes.CreateRecipe(ctx, u, RecipeInput{Title: "Soup", Ingredients: "water", Instructions: "boil"})
	require.NoError(t, err)

	_, err = recipes.AddRating(ctx, r.ID+1, u, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	for _, bad := range []int{0, 6, -1} {
		var verr *ValidationError
		_, err = recipes.AddRating(ctx, r.ID, u, bad)
		require.ErrorAs(t, err, &verr, "value %d", bad)
		assert.Contains(t, verr.Fields, "rating")
	}

	// The same user may rate twice.
	_, err = recipes.AddRating(ctx, r.ID, u, models.MaxRating)
	require.NoError(t, err)
	_, err = recipes.AddRating(ctx, r.ID, u, models.MinRating)
	require.NoError(t, err)

	ratings, err := recipes.ListRatings(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, 5, ratings[0].Value)
	assert.Equal(t, 1, ratings[1].Value)
	assert.Equal(t, u.ID, ratings[0].Author.ID)
}

func TestLatestRecipes_Limit(t *testing.T) {
	auth, recipes, _ := newServices(t)
	ctx := context.Background()
	u := mustRegister(t, auth, "cook", "cook@example.com")

	for _, title := range []string{"one", "two", "three"} {
		_, err := recipes.CreateRecipe(ctx, u, RecipeInput{Title: title, Ingredients: "i", Instructions: "s"})
		require.NoError(t, err)
	}

	latest, err := recipes.LatestRecipes(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "three", latest[0].Title)
	assert.Equal(t, "two", latest[1].Title)
}
