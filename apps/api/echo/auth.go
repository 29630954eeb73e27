package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core/user"
)

const contextTokenKey = "userToken"

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Incorrect email or password")
	errInactiveUser       = echo.NewHTTPError(http.StatusBadRequest, "Inactive user")
	errEmailTaken         = echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

func newJWTConfig(secret string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secret),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func (s *Server) userClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.conf.AppName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(s.tokenTTL()).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
	}
}

// GenerateToken returns a signed JWT for usr.
func (s *Server) GenerateToken(usr user.User) (string, error) {
	method := jwt.GetSigningMethod(s.jwt.SigningMethod)
	token := jwt.NewWithClaims(method, s.userClaims(usr))

	ss, err := token.SignedString(s.jwt.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUserID returns the id of the authenticated user.
func getContextUserID(ctx echo.Context) (int, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errUnauthorized
	}
	return id, nil
}

type authApi struct {
	srv *Server
	svc *user.Service
}

func registerAuthAPI(g *echo.Group, srv *Server) {
	api := authApi{srv: srv, svc: srv.deps.UserSvc}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/register", api.register)
}

type (
	LoginResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
)

// login accepts the OAuth2 password form and returns a bearer token.
func (api *authApi) login(ctx echo.Context) error {
	creds := user.Credentials{
		Username: ctx.FormValue("username"),
		Password: ctx.FormValue("password"),
	}
	if err := creds.Validate(api.srv.deps.Validator); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(creds)
	switch errors.Cause(err) {
	case nil:
	case user.ErrInvalidCredentials:
		return errInvalidCredentials
	case user.ErrInactive:
		return errInactiveUser
	default:
		return errors.Wrap(err, "authenticating")
	}

	token, err := api.srv.GenerateToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{AccessToken: token, TokenType: "bearer"})
}

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.srv.deps.Validator); err != nil {
		return err
	}

	usr, err := api.svc.Create(data)
	if err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			return errEmailTaken
		}
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}
