package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/taluka/internal/api/apitest"
	"github.com/idilsaglam/taluka/internal/model"
)

func newTestClient(t *testing.T, seed ...model.Taluka) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(seed...)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithHTTPClient(srv.HTTPClient())), srv
}

func TestNewClientDefaults(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
	assert.Equal(t, "http://example.test", NewClient(" http://example.test/ ").BaseURL())
}

func TestClientList(t *testing.T) {
	c, srv := newTestClient(t,
		model.Taluka{ID: 1, StateName: "Maharashtra", District: "Pune", TalukaName: "Haveli", Status: model.StatusActive},
		model.Taluka{ID: 2, StateName: "Maharashtra", District: "Pune", TalukaName: "Mulshi", Status: model.StatusInactive},
	)

	got, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Haveli", got[0].TalukaName)
	assert.Equal(t, model.StatusInactive, got[1].Status)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestClientListEmpty(t *testing.T) {
	c, _ := newTestClient(t)
	got, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClientCreate(t *testing.T) {
	c, srv := newTestClient(t)

	rec, err := c.Create(context.Background(), model.TalukaInput{
		StateName: "Gujarat", District: "Surat", TalukaName: "Olpad", Status: model.StatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/talukas", reqs[0].Path)
	assert.JSONEq(t, `{"stateName":"Gujarat","district":"Surat","talukaName":"Olpad","status":"Inactive"}`, reqs[0].Body)
}

func TestClientUpdate(t *testing.T) {
	c, srv := newTestClient(t, model.Taluka{ID: 4, StateName: "Goa", District: "North Goa", TalukaName: "Bardez", Status: model.StatusActive})

	rec, err := c.Update(context.Background(), 4, model.TalukaInput{
		StateName: "Goa", District: "North Goa", TalukaName: "Pernem", Status: model.StatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pernem", rec.TalukaName)
	assert.Equal(t, 1, srv.Count(http.MethodPut, "/api/talukas/4"))
}

func TestClientCreateAcceptsNonJSONBody(t *testing.T) {
	c, srv := newTestClient(t)
	srv.ApplyThenReply(http.MethodPost, "/api/talukas", "Taluka created successfully")

	rec, err := c.Create(context.Background(), model.TalukaInput{
		StateName: "Maharashtra", District: "Pune", TalukaName: "Haveli", Status: model.StatusInactive,
	})
	require.NoError(t, err)
	assert.Zero(t, rec)
	assert.Len(t, srv.Records(), 1)
}

func TestClientUpdateAcceptsNonJSONBody(t *testing.T) {
	c, srv := newTestClient(t, model.Taluka{ID: 4, StateName: "Goa", District: "North Goa", TalukaName: "Bardez"})
	srv.ApplyThenReply(http.MethodPut, "/api/talukas/4", "updated")

	_, err := c.Update(context.Background(), 4, model.TalukaInput{
		StateName: "Goa", District: "North Goa", TalukaName: "Pernem", Status: model.StatusActive,
	})
	require.NoError(t, err)
	got, _ := srv.Get(4)
	assert.Equal(t, "Pernem", got.TalukaName)
}

func TestClientListRejectsNonJSONBody(t *testing.T) {
	c, srv := newTestClient(t)
	srv.ApplyThenReply(http.MethodGet, "/api/talukas", "<html>oops</html>")

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "An unexpected error occurred. Please try again.", Describe(err))
}

func TestClientSetStatus(t *testing.T) {
	c, srv := newTestClient(t, model.Taluka{ID: 1, TalukaName: "Alpha", Status: model.StatusInactive})

	require.NoError(t, c.SetStatus(context.Background(), 1, model.StatusActive))

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/talukas/1/status", reqs[0].Path)
	assert.JSONEq(t, `{"status":"Active"}`, reqs[0].Body)
	rec, _ := srv.Get(1)
	assert.Equal(t, model.StatusActive, rec.Status)
}

func TestClientDelete(t *testing.T) {
	c, srv := newTestClient(t, model.Taluka{ID: 9, TalukaName: "Gone"})

	require.NoError(t, c.Delete(context.Background(), 9))
	_, ok := srv.Get(9)
	assert.False(t, ok)
}

func TestClientStatusErrorCarriesMessage(t *testing.T) {
	c, _ := newTestClient(t)

	err := c.Delete(context.Background(), 42)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "Taluka not found", se.Message)
	assert.Equal(t, "Error: 404 - Taluka not found", Describe(err))
	assert.False(t, NoResponse(err))
}

func TestClientStatusErrorWithoutMessage(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Fail(http.MethodGet, "/api/talukas", apitest.Failure{Code: http.StatusInternalServerError})

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error: 500 - An error occurred.", Describe(err))
}

func TestClientUnexpectedSuccessCode(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Fail(http.MethodPost, "/api/talukas", apitest.Failure{Code: http.StatusAccepted})

	_, err := c.Create(context.Background(), model.TalukaInput{StateName: "a", District: "b", TalukaName: "c"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusAccepted, se.Code)
}

func TestClientDroppedResponse(t *testing.T) {
	c, srv := newTestClient(t, model.Taluka{ID: 1, TalukaName: "Alpha"})
	srv.Fail(http.MethodDelete, "/api/talukas/1", apitest.Failure{Drop: true})

	err := c.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, NoResponse(err))
	assert.Equal(t, "No response received from the server. Please try again.", Describe(err))
	assert.Equal(t, 1, srv.Count(http.MethodDelete, "/api/talukas/1"))
}

func TestClientConnectionRefused(t *testing.T) {
	srv := apitest.NewServer()
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithTimeout(time.Second))
	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.True(t, NoResponse(err))
}

func TestClientBadBaseURL(t *testing.T) {
	c := NewClient("http://bad host")
	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.False(t, NoResponse(err))
	assert.Equal(t, "An unexpected error occurred. Please try again.", Describe(err))
}

func TestDescribeNil(t *testing.T) {
	assert.Empty(t, Describe(nil))
}
