package handler

// Vendor stall profiles. A vendor can only ever read or write their own.

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/festopiya/stall-booking/internal/model"
	"github.com/festopiya/stall-booking/internal/repository"
)

// ProfileHandler lets a vendor read and save their own stall profile.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
	Timeout  time.Duration
}

func NewProfileHandler(profiles *repository.ProfileRepo, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Timeout: timeout}
}

type profileReq struct {
	StallName    string `json:"stall_name"`
	FoodCategory string `json:"food_category"`
	Phone        string `json:"phone"`
}

// Get handles GET /v1/vendor/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	vendorID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	p, err := h.Profiles.GetProfile(ctx, vendorID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return notFound(c, "profile not found")
		}
		return unavailable(c, "load profile", err)
	}
	return c.JSON(http.StatusOK, p)
}

// Put handles PUT /v1/vendor/profile, creating the profile or overwriting it.
func (h *ProfileHandler) Put(c echo.Context) error {
	vendorID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	p := model.VendorProfile{
		VendorID:     vendorID,
		StallName:    req.StallName,
		FoodCategory: req.FoodCategory,
		Phone:        req.Phone,
		UpdatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := p.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()
	if err := h.Profiles.UpsertProfile(ctx, p); err != nil {
		return unavailable(c, "save profile", err)
	}
	return c.JSON(http.StatusOK, p)
}
