package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"recipebox/internal/logging"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/services"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	recipes *services.RecipeService
	search  *services.SearchService
	log     logging.Logger
}

func NewRecipeHandler(recipes *services.RecipeService, search *services.SearchService, log logging.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, search: search, log: log}
}

func (h *RecipeHandler) Index(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context())
	if err != nil {
		serverError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "index.html", gin.H{"Recipes": recipes})
}

func (h *RecipeHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "create_recipe.html", gin.H{"Form": recipeForm{}, "Errors": noErrors()})
}

func (h *RecipeHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form recipeForm
	if errs := bindForm(c, &form, "title"); errs != nil {
		Render(c, http.StatusBadRequest, "create_recipe.html", gin.H{"Form": form, "Errors": errs})
		return
	}

	_, err := h.recipes.CreateRecipe(c.Request.Context(), user, services.RecipeInput{
		Title:        form.Title,
		Description:  form.Description,
		Ingredients:  form.Ingredients,
		Instructions: form.Instructions,
	})
	if err != nil {
		if fields, ok := serviceFieldErrors(err); ok {
			Render(c, http.StatusBadRequest, "create_recipe.html", gin.H{"Form": form, "Errors": fields})
			return
		}
		serverError(c, h.log, err)
		return
	}

	middleware.Flash(c, "Your recipe has been created!")
	c.Redirect(http.StatusFound, "/")
}

// loadRecipe resolves the :id path parameter. It renders the 404 or 500 page
// itself and returns nil when the request is already answered.
func (h *RecipeHandler) loadRecipe(c *gin.Context) *models.Recipe {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		RenderError(c, http.StatusNotFound, "Recipe not found.")
		return nil
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), uint(id))
	if errors.Is(err, services.ErrNotFound) {
		RenderError(c, http.StatusNotFound, "Recipe not found.")
		return nil
	}
	if err != nil {
		serverError(c, h.log, err)
		return nil
	}
	return recipe
}

func (h *RecipeHandler) Detail(c *gin.Context) {
	recipe := h.loadRecipe(c)
	if recipe == nil {
		return
	}
	h.renderDetail(c, http.StatusOK, recipe, gin.H{})
}

// Interact handles the comment and rating forms on the detail page. The
// submit button's name decides which one was posted.
func (h *RecipeHandler) Interact(c *gin.Context) {
	recipe := h.loadRecipe(c)
	if recipe == nil {
		return
	}

	switch {
	case c.PostForm("submit_comment") != "":
		h.addComment(c, recipe)
	case c.PostForm("submit_rating") != "":
		h.addRating(c, recipe)
	default:
		h.renderDetail(c, http.StatusOK, recipe, gin.H{})
	}
}

func (h *RecipeHandler) addComment(c *gin.Context, recipe *models.Recipe) {
	user := middleware.CurrentUser(c)

	var form commentForm
	if errs := bindForm(c, &form, "comment"); errs != nil {
		h.renderDetail(c, http.StatusBadRequest, recipe, gin.H{"CommentErrors": errs, "CommentBody": form.Comment})
		return
	}

	_, err := h.recipes.AddComment(c.Request.Context(), recipe.ID, user, form.Comment)
	if err != nil {
		if fields, ok := serviceFieldErrors(err); ok {
			h.renderDetail(c, http.StatusBadRequest, recipe, gin.H{"CommentErrors": fields, "CommentBody": form.Comment})
			return
		}
		h.interactionFailed(c, err)
		return
	}
	c.Redirect(http.StatusFound, recipePath(recipe.ID))
}

func (h *RecipeHandler) addRating(c *gin.Context, recipe *models.Recipe) {
	user := middleware.CurrentUser(c)
	raw := c.PostForm("rating")

	var form ratingForm
	if errs := bindForm(c, &form, "rating"); errs != nil {
		h.renderDetail(c, http.StatusBadRequest, recipe, gin.H{"RatingErrors": errs, "RatingValue": raw})
		return
	}

	_, err := h.recipes.AddRating(c.Request.Context(), recipe.ID, user, form.Rating)
	if err != nil {
		if fields, ok := serviceFieldErrors(err); ok {
			h.renderDetail(c, http.StatusBadRequest, recipe, gin.H{"RatingErrors": fields, "RatingValue": raw})
			return
		}
		h.interactionFailed(c, err)
		return
	}
	c.Redirect(http.StatusFound, recipePath(recipe.ID))
}

func (h *RecipeHandler) interactionFailed(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		RenderError(c, http.StatusNotFound, "Recipe not found.")
		return
	}
	serverError(c, h.log, err)
}

func (h *RecipeHandler) renderDetail(c *gin.Context, code int, recipe *models.Recipe, extra gin.H) {
	ctx := c.Request.Context()

	comments, err := h.recipes.ListComments(ctx, recipe.ID)
	if err != nil {
		serverError(c, h.log, err)
		return
	}
	ratings, err := h.recipes.ListRatings(ctx, recipe.ID)
	if err != nil {
		serverError(c, h.log, err)
		return
	}

	data := gin.H{
		"Recipe":        recipe,
		"Comments":      comments,
		"Ratings":       ratings,
		"AverageRating": averageRating(ratings),
		"CommentErrors": noErrors(),
		"RatingErrors":  noErrors(),
		"CommentBody":   "",
		"RatingValue":   "",
	}
	for k, v := range extra {
		data[k] = v
	}
	Render(c, code, "recipe_detail.html", data)
}

func averageRating(ratings []models.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(ratings))
}

func recipePath(id uint) string {
	return "/recipe/" + strconv.FormatUint(uint64(id), 10)
}

func (h *RecipeHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	results, err := h.search.Search(c.Request.Context(), query)
	if err != nil {
		serverError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "search.html", gin.H{"Query": query, "Results": results})
}
