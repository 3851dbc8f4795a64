package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/jimiolaniyan/vidhub/media"
	"github.com/jimiolaniyan/vidhub/response"
)

const maxJSONBody = 16 << 10

type sessionResponse struct {
	User       *Account `json:"user,omitempty"`
	IsLoggedIn bool     `json:"isLoggedin"`
}

func RegisterAccountHandler(svc Service, stager *media.Stager, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staged, err := stager.Stage(w, r, "avatar", "coverImage", "coverimage")
		if err != nil {
			if errors.Is(err, media.ErrInvalidUpload) {
				err = fmt.Errorf("%w: %v", ErrInvalidRequest, err)
			}
			encodeError(w, err, log)
			return
		}
		// the uploader removes what it consumes; this catches the rest
		defer staged.Cleanup()

		acc, err := svc.Register(r.Context(), RegisterRequest{
			Username:       r.FormValue("username"),
			Email:          r.FormValue("email"),
			FullName:       formValue(r, "fullName", "fullname"),
			Password:       r.FormValue("password"),
			AvatarPath:     staged.Path("avatar"),
			CoverImagePath: staged.Path("coverImage", "coverimage"),
		})
		if err != nil {
			encodeError(w, err, log)
			return
		}

		_ = response.JSON(w, http.StatusCreated, acc, "User registered successfully")
	})
}

func LoginHandler(svc Service, cookies CookiePolicy, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeLoginRequest(w, r)
		if err != nil {
			encodeError(w, err, log)
			return
		}

		s, err := svc.Login(r.Context(), req)
		if err != nil {
			encodeError(w, err, log)
			return
		}

		cookies.setSession(w, s.Tokens)
		_ = response.JSON(w, http.StatusOK, sessionResponse{User: s.Account, IsLoggedIn: true}, "User logged in successfully")
	})
}

// LogoutHandler must run behind RequireAuth.
func LogoutHandler(svc Service, cookies CookiePolicy, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := AccountFromContext(r.Context())
		if !ok {
			encodeError(w, ErrUnauthorized, log)
			return
		}

		if err := svc.Logout(r.Context(), acc.ID); err != nil {
			encodeError(w, err, log)
			return
		}

		cookies.clearSession(w)
		_ = response.JSON(w, http.StatusOK, sessionResponse{IsLoggedIn: false}, "User logged out successfully")
	})
}

func RefreshTokenHandler(svc Service, cookies CookiePolicy, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := refreshToken(w, r)
		if err != nil {
			encodeError(w, err, log)
			return
		}

		s, err := svc.Refresh(r.Context(), token)
		if err != nil {
			encodeError(w, err, log)
			return
		}

		cookies.setSession(w, s.Tokens)
		_ = response.JSON(w, http.StatusOK, sessionResponse{User: s.Account, IsLoggedIn: true}, "Access token refreshed")
	})
}

// encodeError maps service errors onto the API error taxonomy. Anything
// unrecognised is logged and reported as a bare 500.
func encodeError(w http.ResponseWriter, err error, log *zap.Logger) {
	var fields []string
	var verr *ValidationError
	if errors.As(err, &verr) {
		fields = verr.Fields
	}

	var apiErr *response.Error
	switch {
	case errors.Is(err, ErrMissingFields):
		apiErr = response.BadRequest("All fields are required", fields...)
	case errors.Is(err, ErrMissingCredentials):
		apiErr = response.BadRequest("Username or email and password are required", fields...)
	case errors.Is(err, ErrInvalidInput):
		apiErr = response.BadRequest("Invalid input", fields...)
	case errors.Is(err, ErrAvatarRequired):
		apiErr = response.BadRequest("Avatar is required")
	case errors.Is(err, ErrInvalidRequest):
		apiErr = response.BadRequest("Invalid request body")
	case errors.Is(err, ErrExistingAccount):
		apiErr = response.Conflict("User with email or username already exists")
	case errors.Is(err, ErrInvalidCredentials):
		apiErr = response.Unauthorized("Invalid credentials")
	case errors.Is(err, ErrUnauthorized):
		apiErr = response.Unauthorized("Unauthorized")
	case errors.Is(err, ErrAvatarUpload):
		apiErr = response.Internal("Failed to upload avatar")
	case errors.Is(err, ErrAccountNotCreated):
		apiErr = response.Internal("Something went wrong while registering the user")
	default:
		if log != nil {
			log.Error("unhandled error", zap.Error(err))
		}
		apiErr = response.Internal("")
	}

	_ = response.Fail(w, apiErr)
}

func decodeLoginRequest(w http.ResponseWriter, r *http.Request) (LoginRequest, error) {
	req := LoginRequest{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		return LoginRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return req, nil
}

// refreshToken reads the refreshToken cookie, falling back to an optional
// JSON body {"refreshToken": "..."}.
func refreshToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&body)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return body.RefreshToken, nil
}

func formValue(r *http.Request, keys ...string) string {
	for _, k := range keys {
		if v := r.FormValue(k); v != "" {
			return v
		}
	}
	return ""
}
