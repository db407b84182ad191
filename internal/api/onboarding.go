package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/newsinflight/internal/authprovider"
	"github.com/bilgisen/newsinflight/internal/catalog"
	"github.com/bilgisen/newsinflight/internal/logger"
	"github.com/bilgisen/newsinflight/internal/middleware"
	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/profile"
	"github.com/bilgisen/newsinflight/internal/storage"
)

type onboardingRequest struct {
	Level     int      `json:"level"`
	Interests []string `json:"interests" validate:"required,min=1,max=10,dive,required,max=64"`
	Contexts  []string `json:"contexts" validate:"max=10,dive,required,max=64"`
}

// CompleteOnboarding handles POST /api/onboarding/complete
func (h *Handlers) CompleteOnboarding(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)
	if session == nil {
		return fiber.NewError(fiber.StatusUnauthorized, profile.ErrUnauthenticated.Error())
	}
	log := logger.FromContext(c.UserContext())

	var req onboardingRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid JSON body",
			"details": err.Error(),
		})
	}

	level := models.Level(req.Level)
	if !level.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "level must be 1, 2 or 3",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": middleware.FieldErrors(err),
		})
	}

	interests := profile.ParseTags(req.Interests)
	contexts := profile.ParseTags(req.Contexts)
	if badI, badC := h.deps.Catalog.Unknown(interests, contexts); len(badI)+len(badC) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "unknown tags",
			"fields": fiber.Map{
				"interests": nonNil(badI),
				"contexts":  nonNil(badC),
			},
		})
	}

	ctx, cancel := h.backendContext(c.UserContext())
	defer cancel()

	user, err := h.deps.Users.CompleteOnboarding(ctx, session.UserID, models.Onboarding{
		Level:        level,
		InterestTags: interests,
		ContextTags:  contexts,
		OnboardedAt:  h.now().UTC(),
	})
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "user not synced",
		})
	}
	if err != nil {
		return internalError(c, "failed to save onboarding", err)
	}

	onboardedAt := h.now().UTC()
	if user.OnboardedAt != nil {
		onboardedAt = user.OnboardedAt.UTC()
	}

	patch := map[string]interface{}{
		profile.KeyLevel:              int(level),
		profile.KeyInterests:          interests,
		profile.KeyContexts:           contexts,
		profile.KeyOnboardingComplete: true,
		profile.KeyOnboardedAt:        onboardedAt.Format(time.RFC3339),
	}
	if _, err := h.deps.Provider.UpdateMetadata(ctx, session.UserID, patch); err != nil {
		var perr *authprovider.Error
		if errors.As(err, &perr) {
			log.Error().Int("provider_status", perr.Status).Msg("auth provider rejected metadata update")
		}
		return internalError(c, "failed to update session metadata", err)
	}

	log.Info().
		Int("level", int(level)).
		Strs("interests", interests).
		Strs("contexts", contexts).
		Msg("onboarding completed")

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"level":        int(level),
			"interests":    interests,
			"contexts":     contexts,
			"onboarded_at": onboardedAt,
		},
	})
}

// SyncUser handles POST /api/sync-user
func (h *Handlers) SyncUser(c *fiber.Ctx) error {
	session := middleware.SessionFrom(c)
	if session == nil {
		return fiber.NewError(fiber.StatusUnauthorized, profile.ErrUnauthenticated.Error())
	}

	ctx, cancel := h.backendContext(c.UserContext())
	defer cancel()

	pu, err := h.deps.Provider.GetUser(ctx, session.UserID)
	if errors.Is(err, authprovider.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "user not found at auth provider",
		})
	}
	if err != nil {
		return internalError(c, "failed to fetch user from auth provider", err)
	}

	email := pu.Email
	if email == "" {
		email = session.Email
	}
	user, err := h.deps.Users.UpsertUser(ctx, models.User{
		ID:       session.UserID,
		Email:    email,
		Name:     pu.Name,
		ImageURL: pu.ImageURL,
	})
	if err != nil {
		return internalError(c, "failed to sync user", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// SeedCatalog handles POST /api/admin/catalog/seed
func (h *Handlers) SeedCatalog(c *fiber.Ctx) error {
	ctx, cancel := h.backendContext(c.UserContext())
	defer cancel()

	inserted, err := h.deps.Seeder.Seed(ctx)
	switch {
	case errors.Is(err, catalog.ErrSeedInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case storage.IsTableMissing(err):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "catalog tables are not provisioned",
			"hint":  "create the interest_tags and context_tags tables first",
		})
	case err != nil:
		return internalError(c, "failed to seed catalog", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"inserted": inserted,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
