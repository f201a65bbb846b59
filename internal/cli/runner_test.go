package cli

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/taluka/internal/api"
	"github.com/idilsaglam/taluka/internal/api/apitest"
	"github.com/idilsaglam/taluka/internal/config"
	"github.com/idilsaglam/taluka/internal/model"
	"github.com/idilsaglam/taluka/internal/tui"
	"github.com/idilsaglam/taluka/internal/ui"
)

func TestMain(m *testing.M) {
	ui.SetColorForcing(false, true)
	os.Exit(m.Run())
}

type harness struct {
	srv      *apitest.Server
	out, err bytes.Buffer
	in       string
	cfgPath  string
}

func newHarness(t *testing.T, seed ...model.Taluka) *harness {
	t.Helper()
	h := &harness{srv: apitest.NewServer(seed...)}
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) run(args ...string) int {
	h.out.Reset()
	h.err.Reset()
	c := api.NewClient(h.srv.URL, api.WithHTTPClient(h.srv.HTTPClient()))
	return Run(args, Options{
		Service:    c,
		Config:     config.Default(),
		ConfigPath: h.cfgPath,
		In:         strings.NewReader(h.in),
		Out:        &h.out,
		Err:        &h.err,
	})
}

func seed() []model.Taluka {
	return []model.Taluka{
		{ID: 1, StateName: "North State", District: "Northern", TalukaName: "Northgate", Status: model.StatusInactive},
		{ID: 2, StateName: "North State", District: "Northern", TalukaName: "Southpoint", Status: model.StatusActive},
	}
}

func TestHelp(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 0, h.run("help"))
	assert.Contains(t, h.out.String(), "Subcommands:")
}

func TestUnknownSubcommand(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Contains(t, h.err.String(), "unknown subcommand: frobnicate")
}

func TestList(t *testing.T) {
	h := newHarness(t, seed()...)

	require.Equal(t, 0, h.run("ls"))
	out := h.out.String()
	assert.Contains(t, out, "Taluka Master")
	assert.Contains(t, out, "Northgate")
	assert.Contains(t, out, "Southpoint")
	assert.Contains(t, out, "○ Inactive")
	assert.Contains(t, out, "● Active")
	assert.Contains(t, out, "1/2")
}

func TestListSearch(t *testing.T) {
	h := newHarness(t, seed()...)

	require.Equal(t, 0, h.run("ls", "-search", "NORTH"))
	out := h.out.String()
	assert.Contains(t, out, "Northgate")
	assert.NotContains(t, out, "Southpoint")
	assert.Contains(t, out, `name ~ "NORTH": 1 of 2`)

	require.Equal(t, 0, h.run("ls", "-search", "zzz"))
	assert.Contains(t, h.out.String(), "No talukas found.")
}

func TestListStatusFilter(t *testing.T) {
	h := newHarness(t, seed()...)

	require.Equal(t, 0, h.run("ls", "-status", "active"))
	assert.Contains(t, h.out.String(), "Southpoint")
	assert.NotContains(t, h.out.String(), "Northgate")
	assert.Contains(t, h.out.String(), "status = Active: 1 of 2")

	assert.Equal(t, 2, h.run("ls", "-status", "pending"))
	assert.Contains(t, h.err.String(), `invalid status "pending"`)
}

func TestListBackendError(t *testing.T) {
	h := newHarness(t)
	h.srv.Fail(http.MethodGet, "/api/talukas", apitest.Failure{Code: http.StatusServiceUnavailable})

	assert.Equal(t, 1, h.run("ls"))
	assert.Contains(t, h.err.String(), "Error: 503 - An error occurred.")
}

func TestAdd(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("add", "-state", " North State ", "-district", "Northern", "-name", "Northgate"))
	assert.Contains(t, h.out.String(), "Taluka added successfully!")

	recs := h.srv.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "North State", recs[0].StateName)
	assert.Equal(t, model.StatusInactive, recs[0].Status)
}

func TestAddMissingField(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 2, h.run("add", "-state", "North State", "-name", "Northgate"))
	assert.Contains(t, h.err.String(), "All fields are required!")
	assert.Zero(t, h.srv.Count(http.MethodPost, "/api/talukas"))
}

func TestEditKeepsUnsetFields(t *testing.T) {
	h := newHarness(t, seed()...)

	require.Equal(t, 0, h.run("edit", "2", "-name", "Southport"))
	assert.Contains(t, h.out.String(), "Taluka updated successfully!")

	got, _ := h.srv.Get(2)
	assert.Equal(t, "Southport", got.TalukaName)
	assert.Equal(t, "Northern", got.District)
	assert.Equal(t, model.StatusActive, got.Status)
}

func TestEditUnknownID(t *testing.T) {
	h := newHarness(t, seed()...)

	assert.Equal(t, 1, h.run("edit", "9", "-name", "x"))
	assert.Contains(t, h.err.String(), "no taluka with id 9")
	assert.Equal(t, 2, h.run("edit", "abc"))
}

func TestToggle(t *testing.T) {
	h := newHarness(t, seed()...)

	require.Equal(t, 0, h.run("toggle", "1"))
	assert.Contains(t, h.out.String(), "Taluka status updated to Active successfully!")
	got, _ := h.srv.Get(1)
	assert.Equal(t, model.StatusActive, got.Status)

	require.Equal(t, 0, h.run("toggle", "1"))
	got, _ = h.srv.Get(1)
	assert.Equal(t, model.StatusInactive, got.Status)
}

func TestRemovePrompts(t *testing.T) {
	h := newHarness(t, seed()...)

	h.in = "n\n"
	require.Equal(t, 0, h.run("rm", "1"))
	assert.Contains(t, h.out.String(), "Are you sure you want to delete this taluka?")
	assert.Contains(t, h.out.String(), "cancelled")
	_, ok := h.srv.Get(1)
	assert.True(t, ok)

	h.in = "y\n"
	require.Equal(t, 0, h.run("rm", "1"))
	assert.Contains(t, h.out.String(), "Taluka deleted successfully!")
	_, ok = h.srv.Get(1)
	assert.False(t, ok)
}

func TestRemoveYesSkipsPrompt(t *testing.T) {
	h := newHarness(t, seed()...)

	require.Equal(t, 0, h.run("rm", "2", "-yes"))
	assert.NotContains(t, h.out.String(), "Are you sure")
	assert.Len(t, h.srv.Records(), 1)
}

func TestRemoveNotFoundFromServer(t *testing.T) {
	h := newHarness(t, seed()...)
	h.srv.Fail(http.MethodDelete, "/api/talukas/1", apitest.Failure{Code: http.StatusNotFound, Message: "Taluka not found"})

	assert.Equal(t, 1, h.run("rm", "1", "-yes"))
	assert.Contains(t, h.err.String(), "Error: 404 - Taluka not found")
}

func TestUIUsesInteractive(t *testing.T) {
	h := newHarness(t)
	var got *tui.Model
	code := Run(nil, Options{
		Service: api.NewClient(h.srv.URL),
		Out:     &h.out,
		Err:     &h.err,
		Interactive: func(m tui.Model) error {
			got = &m
			return nil
		},
	})
	assert.Equal(t, 0, code)
	assert.NotNil(t, got)

	code = Run([]string{"ui"}, Options{
		Service:     api.NewClient(h.srv.URL),
		Err:         &h.err,
		Interactive: func(tui.Model) error { return errors.New("no tty") },
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, h.err.String(), "ui: no tty")
}

func TestConfigShowsEffectiveSettings(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.run("config"))
	assert.Contains(t, h.out.String(), "api_url: http://localhost:8080")
	assert.Contains(t, h.out.String(), "theme: classic")
}

func TestConfigSavesOnTopOfFile(t *testing.T) {
	h := newHarness(t)
	h.cfgPath = filepath.Join(t.TempDir(), "taluka", "config.yaml")
	require.NoError(t, config.Save(h.cfgPath, config.Config{
		APIURL: "http://old:8080", Timeout: time.Second, Theme: "neon", LogLevel: "debug",
	}))

	require.Equal(t, 0, h.run("config", "-api", "http://masters.internal:9090", "-timeout", "5s", "-no-color"))
	assert.Contains(t, h.out.String(), "saved "+h.cfgPath)

	got, err := config.LoadFile(h.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "http://masters.internal:9090", got.APIURL)
	assert.Equal(t, 5*time.Second, got.Timeout)
	assert.True(t, got.NoColor)
	assert.Equal(t, "neon", got.Theme)
	assert.Equal(t, "debug", got.LogLevel)
}

func TestConfigRejectsBadValues(t *testing.T) {
	h := newHarness(t)
	h.cfgPath = filepath.Join(t.TempDir(), "config.yaml")

	assert.Equal(t, 2, h.run("config", "-api", "masters.internal"))
	assert.Contains(t, h.err.String(), "must start with http://")
	assert.Equal(t, 2, h.run("config", "-timeout", "soon"))

	_, err := os.Stat(h.cfgPath)
	assert.True(t, os.IsNotExist(err))
}
