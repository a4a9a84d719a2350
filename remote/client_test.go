package remote

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/syndicate/catalog"
	"github.com/c360/syndicate/errors"
	"github.com/c360/syndicate/profile"
)

// actionServer serves a CKAN-style action API for one test.
func actionServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for action, h := range handlers {
		mux.HandleFunc("/api/3/action/"+action, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeSuccess(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "result": json.RawMessage(raw)})
}

func writeError(w http.ResponseWriter, status int, errBody map[string]any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": errBody})
}

func TestClient_PackageShow(t *testing.T) {
	srv := actionServer(t, map[string]http.HandlerFunc{
		"package_show": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "secret", r.Header.Get("Authorization"))

			var params struct {
				ID string `json:"id"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
			assert.Equal(t, "pkg-1", params.ID)

			writeSuccess(t, w, catalog.Dataset{ID: "pkg-1", Name: "ds", Title: "DS"})
		},
	})

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)

	ds, err := c.PackageShow(context.Background(), "pkg-1")
	require.NoError(t, err)
	assert.Equal(t, "DS", ds.Title)
}

func TestClient_NotFoundMapsToSentinel(t *testing.T) {
	srv := actionServer(t, map[string]http.HandlerFunc{
		"package_show": func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, map[string]any{
				"__type":  "Not Found Error",
				"message": "Not found",
			})
		},
	})

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = c.PackageShow(context.Background(), "missing")
	assert.True(t, stderrors.Is(err, errors.ErrRemoteNotFound))
	assert.False(t, errors.IsTransient(err))
}

func TestClient_AuthorizationErrorMapsToSentinel(t *testing.T) {
	srv := actionServer(t, map[string]http.HandlerFunc{
		"organization_show": func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusForbidden, map[string]any{
				"__type":  "Authorization Error",
				"message": "Access denied",
			})
		},
	})

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = c.OrganizationShow(context.Background(), "council")
	assert.True(t, stderrors.Is(err, errors.ErrNotAuthorized))
}

func TestClient_ValidationErrorCarriesFields(t *testing.T) {
	srv := actionServer(t, map[string]http.HandlerFunc{
		"package_create": func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusConflict, map[string]any{
				"__type":  "Validation Error",
				"message": "validation failed",
				"name":    []string{"That URL is already in use."},
				"title":   "Missing value",
			})
		},
	})

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = c.PackageCreate(context.Background(), &catalog.Dataset{Name: "taken"})
	require.Error(t, err)

	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"That URL is already in use."}, ve.Fields["name"])
	assert.Equal(t, []string{"Missing value"}, ve.Fields["title"], "scalar field messages are normalized to lists")
	assert.True(t, IsNameConflict(err))
	assert.True(t, stderrors.Is(err, errors.ErrRemoteValidation))
}

func TestClient_ValidationErrorWithoutNameConflict(t *testing.T) {
	err := &ValidationError{Action: "package_create", Fields: map[string][]string{
		"notes": {"Missing value"},
	}}
	assert.False(t, IsNameConflict(err))
}

func TestClient_ServerErrorIsTransient(t *testing.T) {
	srv := actionServer(t, map[string]http.HandlerFunc{
		"package_show": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		},
	})

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = c.PackageShow(context.Background(), "pkg-1")
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestClient_ConnectionRefusedIsTransient(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1", "secret")
	require.NoError(t, err)

	_, err = c.PackageShow(context.Background(), "pkg-1")
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestClient_PackageUpdateSendsRemoteID(t *testing.T) {
	srv := actionServer(t, map[string]http.HandlerFunc{
		"package_update": func(w http.ResponseWriter, r *http.Request) {
			var got catalog.Dataset
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "remote-1", got.ID)
			writeSuccess(t, w, got)
		},
	})

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)

	ds := &catalog.Dataset{Name: "ds"}
	updated, err := c.PackageUpdate(context.Background(), "remote-1", ds)
	require.NoError(t, err)
	assert.Equal(t, "remote-1", updated.ID)
	assert.Empty(t, ds.ID, "caller's payload must not be mutated")
}

func TestClient_PackageDelete(t *testing.T) {
	srv := actionServer(t, map[string]http.HandlerFunc{
		"package_delete": func(w http.ResponseWriter, _ *http.Request) {
			writeSuccess(t, w, nil)
		},
	})

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)
	assert.NoError(t, c.PackageDelete(context.Background(), "remote-1"))
}

func TestClient_UserShow(t *testing.T) {
	srv := actionServer(t, map[string]http.HandlerFunc{
		"user_show": func(w http.ResponseWriter, _ *http.Request) {
			writeSuccess(t, w, catalog.User{ID: "u1", Name: "sync-bot"})
		},
	})

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)

	u, err := c.UserShow(context.Background(), "sync-bot")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient("not-a-url", "secret")
	assert.Error(t, err)
}

func TestFactory_BuildsClientPerProfile(t *testing.T) {
	factory := NewFactory()

	p := profile.Profile{ID: "portal", URL: "https://data.example.org", APIKey: "key"}
	a, err := factory(p)
	require.NoError(t, err)
	b, err := factory(p)
	require.NoError(t, err)
	assert.NotSame(t, a, b, "clients are built per call, never cached")
}
