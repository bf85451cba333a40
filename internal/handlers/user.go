package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/foodreview/internal/handlers/principal"
	"github.com/nkiryanov/foodreview/internal/handlers/render"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
	"github.com/nkiryanov/foodreview/internal/service/user"
)

type accountResponse struct {
	ID          uuid.UUID    `json:"id"`
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	Role        models.Role  `json:"role"`
	Nationality string       `json:"nationality"`
	Badge       models.Badge `json:"badge"`
	PhotoURL    string       `json:"photoUrl,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func newAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		Nationality: a.Nationality,
		Badge:       a.Badge,
		PhotoURL:    a.PhotoURL,
		CreatedAt:   a.CreatedAt,
	}
}

type profileResponse struct {
	accountResponse
	ReviewCount        int `json:"reviewCount"`
	ReviewsToNextBadge int `json:"reviewsToNextBadge"`
}

func handleUserMe(userService userService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := principal.FromContext(r.Context())

		profile, err := userService.Profile(r.Context(), p.Email)
		if err != nil {
			renderError(w, logger, err)
			return
		}

		render.JSON(w, profileResponse{
			accountResponse:    newAccountResponse(profile.Account),
			ReviewCount:        profile.ReviewCount,
			ReviewsToNextBadge: profile.ReviewsToNextBadge,
		})
	})
}

func handleUpdateMe(userService userService, logger logger.Logger) http.Handler {
	type request struct {
		Name        *string `json:"name" validate:"omitnil,notblank,max=30"`
		Nationality *string `json:"nationality" validate:"omitnil,max=64"`
		PhotoURL    *string `json:"photoUrl" validate:"omitnil,max=2048"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		p, _ := principal.FromContext(r.Context())
		account, err := userService.UpdateProfile(r.Context(), p.Email, user.ProfileUpdate{
			Name:        data.Name,
			Nationality: data.Nationality,
			PhotoURL:    data.PhotoURL,
		})
		if err != nil {
			renderError(w, logger, err)
			return
		}

		render.JSON(w, newAccountResponse(account))
	})
}

func handleProtected() http.Handler {
	type response struct {
		Message     string   `json:"message"`
		Email       string   `json:"email"`
		Authorities []string `json:"authorities"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := principal.FromContext(r.Context())
		render.JSON(w, response{
			Message:     "Hello, " + p.Name,
			Email:       p.Email,
			Authorities: p.Authorities,
		})
	})
}

func handleRecomputeBadge(userService userService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := userService.RecomputeBadge(r.Context(), r.PathValue("email"))
		if err != nil {
			renderError(w, logger, err)
			return
		}

		render.JSON(w, newAccountResponse(account))
	})
}
