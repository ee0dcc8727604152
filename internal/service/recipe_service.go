package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/SulTenZ/Food-Recipe-App/internal/apperr"
	"github.com/SulTenZ/Food-Recipe-App/internal/ids"
	"github.com/SulTenZ/Food-Recipe-App/internal/media"
	"github.com/SulTenZ/Food-Recipe-App/internal/models"
)

const (
	MaxPhotoBytes = 5 << 20
	photoURLTTL   = 15 * time.Minute
)

type RecipeInput struct {
	Name         string   `validate:"required,min=3,max=200"`
	Ingredients  []string `validate:"required,min=1,dive,required,max=200"`
	Instructions string   `validate:"required,min=10,max=10000"`
}

// RecipeView is a recipe plus a short-lived URL for its photo, if any.
type RecipeView struct {
	models.Recipe
	PhotoURL string
}

type RecipeService struct {
	store    RecipeStore
	photos   PhotoStore
	validate *validator.Validate
	policy   *bluemonday.Policy
	log      zerolog.Logger
}

// NewRecipeService builds the recipe service. photos may be nil, which
// disables photo uploads.
func NewRecipeService(store RecipeStore, photos PhotoStore, log zerolog.Logger) *RecipeService {
	return &RecipeService{
		store:    store,
		photos:   photos,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		policy:   bluemonday.StrictPolicy(),
		log:      log,
	}
}

// clean strips markup from every text field before validation. Entities the
// policy escapes are decoded again; responses are JSON, not HTML.
func (s *RecipeService) clean(in RecipeInput) RecipeInput {
	out := RecipeInput{
		Name:         s.text(in.Name),
		Instructions: s.text(in.Instructions),
	}
	for _, ingredient := range in.Ingredients {
		if v := s.text(ingredient); v != "" {
			out.Ingredients = append(out.Ingredients, v)
		}
	}
	return out
}

func (s *RecipeService) text(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

func (s *RecipeService) check(in RecipeInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindInternal, "validate recipe", err)
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return apperr.Invalid("Validation failed", details...)
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func (s *RecipeService) Create(ctx context.Context, ownerID string, in RecipeInput) (models.Recipe, error) {
	in = s.clean(in)
	if err := s.check(in); err != nil {
		return models.Recipe{}, err
	}
	recipe := models.Recipe{
		ID:           ids.New(),
		UserID:       ownerID,
		Name:         in.Name,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
	}
	if err := s.store.Create(ctx, &recipe); err != nil {
		return models.Recipe{}, storeError(err)
	}
	return recipe, nil
}

func (s *RecipeService) List(ctx context.Context, ownerID string) ([]models.Recipe, error) {
	recipes, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeError(err)
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	return recipes, nil
}

func (s *RecipeService) Get(ctx context.Context, ownerID, id string) (models.Recipe, error) {
	recipe, err := s.store.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return models.Recipe{}, storeError(err)
	}
	return recipe, nil
}

// Update replaces the editable fields. The photo is kept.
func (s *RecipeService) Update(ctx context.Context, ownerID, id string, in RecipeInput) (models.Recipe, error) {
	in = s.clean(in)
	if err := s.check(in); err != nil {
		return models.Recipe{}, err
	}
	recipe, err := s.store.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return models.Recipe{}, storeError(err)
	}
	recipe.Name = in.Name
	recipe.Ingredients = in.Ingredients
	recipe.Instructions = in.Instructions
	if err := s.store.Update(ctx, &recipe); err != nil {
		return models.Recipe{}, storeError(err)
	}
	return recipe, nil
}

func (s *RecipeService) Delete(ctx context.Context, ownerID, id string) error {
	recipe, err := s.store.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return storeError(err)
	}
	if err := s.store.Delete(ctx, id, ownerID); err != nil {
		return storeError(err)
	}
	if recipe.PhotoKey != nil && s.photos != nil {
		if err := s.photos.DeletePhoto(ctx, *recipe.PhotoKey); err != nil {
			s.log.Warn().Err(err).Str("recipe_id", id).Msg("orphaned recipe photo")
		}
	}
	return nil
}

// AttachPhoto stores an image for a recipe and replaces any previous one.
func (s *RecipeService) AttachPhoto(ctx context.Context, ownerID, id string, body io.Reader, size int64) (RecipeView, error) {
	if s.photos == nil {
		return RecipeView{}, apperr.New(apperr.KindValidationFailed, "Photo uploads are not available")
	}
	if size <= 0 || size > MaxPhotoBytes {
		return RecipeView{}, apperr.Invalid("Validation failed", "photo must be between 1 byte and 5 MiB")
	}

	recipe, err := s.store.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return RecipeView{}, storeError(err)
	}

	photo, r, err := media.Sniff(body)
	if err != nil {
		if errors.Is(err, media.ErrUnsupported) {
			return RecipeView{}, apperr.Invalid("Validation failed", "photo must be a JPEG, PNG, GIF or WebP image")
		}
		return RecipeView{}, apperr.Wrap(apperr.KindInternal, "read photo", err)
	}

	key := fmt.Sprintf("recipes/%s/%s%s", ownerID, ids.New(), photo.Ext)
	if err := s.photos.PutPhoto(ctx, key, r, size, photo.ContentType); err != nil {
		return RecipeView{}, apperr.Wrap(apperr.KindInternal, "store photo", err)
	}

	previous := recipe.PhotoKey
	recipe.PhotoKey = &key
	if err := s.store.Update(ctx, &recipe); err != nil {
		_ = s.photos.DeletePhoto(ctx, key)
		return RecipeView{}, storeError(err)
	}
	if previous != nil {
		if err := s.photos.DeletePhoto(ctx, *previous); err != nil {
			s.log.Warn().Err(err).Str("recipe_id", id).Msg("previous photo not removed")
		}
	}
	return s.view(ctx, recipe), nil
}

// ListWithPhotos returns the owner's recipes with signed photo URLs.
func (s *RecipeService) ListWithPhotos(ctx context.Context, ownerID string) ([]RecipeView, error) {
	recipes, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]RecipeView, 0, len(recipes))
	for _, recipe := range recipes {
		views = append(views, s.view(ctx, recipe))
	}
	return views, nil
}

func (s *RecipeService) view(ctx context.Context, recipe models.Recipe) RecipeView {
	v := RecipeView{Recipe: recipe}
	if recipe.PhotoKey == nil || s.photos == nil {
		return v
	}
	url, err := s.photos.PhotoURL(ctx, *recipe.PhotoKey, photoURLTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("recipe_id", recipe.ID).Msg("photo url unavailable")
		return v
	}
	v.PhotoURL = url
	return v
}
