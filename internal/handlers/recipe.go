package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/middleware"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
	"github.com/SulTenZ/Food-Recipe-App/internal/service"
)

type recipeRequest struct {
	Name         string   `json:"name" binding:"required"`
	Ingredients  []string `json:"ingredients" binding:"required"`
	Instructions string   `json:"instructions" binding:"required"`
}

func (r recipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Name:         r.Name,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
	}
}

type recipeResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Ingredients  []string  `json:"ingredients"`
	Instructions string    `json:"instructions"`
	HasPhoto     bool      `json:"hasPhoto"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toRecipeResponse(r models.Recipe) recipeResponse {
	return recipeResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		HasPhoto:     r.PhotoKey != nil,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toRecipeView(v service.RecipeView) recipeResponse {
	out := toRecipeResponse(v.Recipe)
	out.PhotoURL = v.PhotoURL
	return out
}

func ownerID(c *gin.Context) string {
	account, _ := middleware.CurrentAccount(c)
	return account.ID
}

func (h HandlerSet) CreateRecipe(c *gin.Context) {
	var req recipeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), ownerID(c), req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(recipe))
}

func (h HandlerSet) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context(), ownerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]recipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		out = append(out, toRecipeResponse(recipe))
	}
	c.JSON(http.StatusOK, out)
}

func (h HandlerSet) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

func (h HandlerSet) UpdateRecipe(c *gin.Context) {
	var req recipeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), ownerID(c), c.Param("id"), req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

func (h HandlerSet) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	message(c, http.StatusOK, "Recipe deleted successfully")
}

// UploadRecipePhoto takes a multipart "photo" field.
func (h HandlerSet) UploadRecipePhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxPhotoBytes+1<<20)

	header, err := c.FormFile("photo")
	if err != nil {
		h.writeError(c, apperr.Invalid("Validation failed", "photo file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.writeError(c, apperr.Wrap(apperr.KindInternal, "open upload", err))
		return
	}
	defer file.Close()

	view, err := h.recipes.AttachPhoto(c.Request.Context(), ownerID(c), c.Param("id"), file, header.Size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeView(view))
}

func (h HandlerSet) ListPremiumRecipes(c *gin.Context) {
	views, err := h.recipes.ListWithPhotos(c.Request.Context(), ownerID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]recipeResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toRecipeView(v))
	}
	c.JSON(http.StatusOK, out)
}
