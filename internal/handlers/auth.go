package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nkiryanov/foodreview/internal/apperrors"
	"github.com/nkiryanov/foodreview/internal/handlers/render"
	"github.com/nkiryanov/foodreview/internal/logger"
	"github.com/nkiryanov/foodreview/internal/models"
	"github.com/nkiryanov/foodreview/internal/service/auth"
)

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func newTokenPairResponse(pair models.TokenPair) tokenPairResponse {
	return tokenPairResponse{AccessToken: pair.Access.Value, RefreshToken: pair.Refresh.Value}
}

type messageResponse struct {
	Message string `json:"message"`
}

func handleSignup(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Email       string `json:"email" validate:"required,email,max=254"`
		Password    string `json:"password" validate:"required,min=4,max=128"`
		Name        string `json:"name" validate:"required,notblank,max=30"`
		Nationality string `json:"nationality" validate:"max=64"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		_, err = authService.Signup(r.Context(), auth.SignupParams{
			Email:       data.Email,
			Password:    data.Password,
			Name:        data.Name,
			Nationality: data.Nationality,
		})
		if err != nil {
			renderError(w, logger, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Signup completed"})
	})
}

func handleLogin(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			renderError(w, logger, err)
			return
		}

		render.JSON(w, newTokenPairResponse(pair))
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func handleTokenRefresh(authService authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[refreshRequest](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Refresh(r.Context(), data.RefreshToken)
		if err != nil {
			renderError(w, logger, err)
			return
		}

		render.JSON(w, newTokenPairResponse(pair))
	})
}

func handleLogout(authService authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[refreshRequest](w, r)
		if err != nil {
			return
		}

		if err := authService.Logout(r.Context(), data.RefreshToken); err != nil {
			renderError(w, logger, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Logged out"})
	})
}

// availabilityValue extracts the checked value, writing the error response itself when it can't
type availabilityValue func(w http.ResponseWriter, r *http.Request) (string, bool)

// Value from the query string: ?email=...
func fromQuery(param string) availabilityValue {
	return func(w http.ResponseWriter, r *http.Request) (string, bool) {
		value := r.URL.Query().Get(param)
		if value == "" {
			render.Error(w, codeInvalidRequest, "Query parameter '"+param+"' is required", http.StatusBadRequest)
			return "", false
		}
		return value, true
	}
}

// Value from a JSON object body: {"email": "..."}
func fromJSON(param string) availabilityValue {
	return func(w http.ResponseWriter, r *http.Request) (string, bool) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			render.DecodeError(w, err)
			return "", false
		}

		value := body[param]
		if value == "" {
			render.Error(w, codeInvalidRequest, "Field '"+param+"' is required", http.StatusBadRequest)
			return "", false
		}
		return value, true
	}
}

// handleCheckAvailable answers whether the value is free to sign up with
func handleCheckAvailable(value availabilityValue, check func(*http.Request, string) (bool, error), taken error, logger logger.Logger) http.Handler {
	type response struct {
		Available bool `json:"available"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := value(w, r)
		if !ok {
			return
		}

		available, err := check(r, v)
		switch {
		case err != nil:
			renderError(w, logger, err)
		case !available:
			renderError(w, logger, taken)
		default:
			render.JSON(w, response{Available: true})
		}
	})
}

func handleCheckEmail(value availabilityValue, authService authService, logger logger.Logger) http.Handler {
	return handleCheckAvailable(value, func(r *http.Request, email string) (bool, error) {
		return authService.EmailAvailable(r.Context(), email)
	}, apperrors.ErrEmailAlreadyExists, logger)
}

func handleCheckName(value availabilityValue, authService authService, logger logger.Logger) http.Handler {
	return handleCheckAvailable(value, func(r *http.Request, name string) (bool, error) {
		return authService.NameAvailable(r.Context(), name)
	}, apperrors.ErrNameAlreadyExists, logger)
}
