package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sunsetCompanionAPI/internal/user"
	"sunsetCompanionAPI/tests/helpers"
)

func decode(resp *http.Response, out interface{}) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

func TestGetProfile_Unauthenticated(t *testing.T) {
	srv := helpers.NewTestServer(t)
	c := helpers.NewClient(t)

	var errResp map[string]string
	assert.Equal(t, http.StatusUnauthorized, helpers.DoJSON(t, c, http.MethodGet, srv.URL+"/api/me", nil, &errResp))
	assert.Equal(t, "User not authenticated", errResp["error"])

	assert.Equal(t, http.StatusUnauthorized, helpers.DoJSON(t, c, http.MethodPost, srv.URL+"/api/sunsets",
		map[string]string{"imageUrl": "http://img/1.png"}, nil))
}

func TestLoginLogout(t *testing.T) {
	srv := helpers.NewTestServer(t)
	first := helpers.NewClient(t)
	register(t, srv, first, "Login@X.com")

	var errResp map[string]string
	code := helpers.DoJSON(t, first, http.MethodPost, srv.URL+"/api/register",
		map[string]string{"email": "login@x.com", "password": "other"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email already registered", errResp["error"])

	c := helpers.NewClient(t)
	errResp = nil
	code = helpers.DoJSON(t, c, http.MethodPost, srv.URL+"/api/login",
		map[string]string{"email": "login@x.com", "password": "wrong"}, &errResp)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", errResp["error"])

	var resp user.UserResponse
	require.Equal(t, http.StatusOK, helpers.DoJSON(t, c, http.MethodPost, srv.URL+"/api/login",
		map[string]string{"email": "LOGIN@x.com", "password": "p"}, &resp))
	assert.Equal(t, "login@x.com", resp.User.Email)

	assert.Equal(t, http.StatusOK, helpers.DoJSON(t, c, http.MethodGet, srv.URL+"/api/me", nil, nil))

	assert.Equal(t, http.StatusNoContent, helpers.DoJSON(t, c, http.MethodPost, srv.URL+"/api/logout", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, helpers.DoJSON(t, c, http.MethodGet, srv.URL+"/api/me", nil, nil))
}

func TestRegisterValidation(t *testing.T) {
	srv := helpers.NewTestServer(t)
	c := helpers.NewClient(t)

	assert.Equal(t, http.StatusBadRequest, helpers.DoJSON(t, c, http.MethodPost, srv.URL+"/api/register",
		map[string]string{"email": "nopassword@x.com"}, nil))
	assert.Equal(t, http.StatusBadRequest, helpers.DoJSON(t, c, http.MethodPost, srv.URL+"/api/register",
		map[string]string{"password": "p"}, nil))

	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, helpers.DoJSON(t, c, http.MethodPost, srv.URL+"/api/register",
		map[string]string{"email": "long@x.com", "password": strings.Repeat("a", 100)}, &body))
	assert.Equal(t, "Password is too long", body["error"])
}

func TestClerkBearerAuth(t *testing.T) {
	srv := helpers.NewTestServer(t)
	c := helpers.NewClient(t)

	resp := helpers.PostWebhook(t, srv.URL, helpers.TestWebhookSecret,
		helpers.MockClerkWebhookPayload("user.created", "user_bearer", "bearer@example.com"), srv.Clock.Now())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token, err := helpers.GenerateMockClerkJWT("user_bearer")
	require.NoError(t, err)

	var profile user.Profile
	require.Equal(t, http.StatusOK, helpers.DoJSON(t, c, http.MethodGet, srv.URL+"/api/me", nil, &profile,
		"Authorization", "Bearer "+token))
	assert.Equal(t, "bearer@example.com", profile.Email)
	assert.Equal(t, "Test User", profile.Name)

	assert.Equal(t, http.StatusUnauthorized, helpers.DoJSON(t, c, http.MethodGet, srv.URL+"/api/me", nil, nil,
		"Authorization", "Bearer not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, helpers.DoJSON(t, c, http.MethodGet, srv.URL+"/api/me", nil, nil,
		"Authorization", token))

	unknown, err := helpers.GenerateMockClerkJWT("user_nobody")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, helpers.DoJSON(t, c, http.MethodGet, srv.URL+"/api/me", nil, nil,
		"Authorization", "Bearer "+unknown))
}
