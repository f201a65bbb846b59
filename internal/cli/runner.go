package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/taluka/internal/config"
	"github.com/idilsaglam/taluka/internal/logging"
	"github.com/idilsaglam/taluka/internal/master"
	"github.com/idilsaglam/taluka/internal/model"
	"github.com/idilsaglam/taluka/internal/tui"
	"github.com/idilsaglam/taluka/internal/ui"
)

// Options carry what the root command resolved: the backend and where to talk.
type Options struct {
	Service master.Service
	Timeout time.Duration
	Logger  logrus.FieldLogger

	// Config is the effective configuration; ConfigPath is the file the
	// config subcommand writes (empty means the default file).
	Config     config.Config
	ConfigPath string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interactive replaces the full-screen program, for tests.
	Interactive func(tui.Model) error
}

func (o *Options) defaults() {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.Interactive == nil {
		o.Interactive = tui.Run
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// No subcommand opens the interactive screen.
func Run(args []string, opt Options) int {
	opt.defaults()
	if len(args) == 0 {
		args = []string{"ui"}
	}
	cmd, a := args[0], args[1:]
	opt.Logger.WithField("cmd", cmd).Debug("dispatch")

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return 0

	case "ui":
		return doUI(opt)

	case "ls":
		fs := newFlagSet("ls", opt.Err)
		term := fs.String("search", "", "only show talukas whose name contains `term`")
		status := fs.String("status", "", "only show `Active` or `Inactive` talukas")
		if err := fs.Parse(a); err != nil {
			return 2
		}
		var only model.Status
		if *status != "" {
			st, err := model.ParseStatus(*status)
			if err != nil {
				ui.Fail(opt.Err, "ls: "+err.Error())
				return 2
			}
			only = st
		}
		return doList(opt, *term, only)

	case "add":
		fs := newFlagSet("add", opt.Err)
		state := fs.String("state", "", "state name")
		district := fs.String("district", "", "district name")
		name := fs.String("name", "", "taluka name")
		if err := fs.Parse(a); err != nil {
			return 2
		}
		return doAdd(opt, *state, *district, *name)

	case "edit":
		id, rest, ok := leadingID(opt, "edit <id> [-state S] [-district D] [-name N]", a)
		if !ok {
			return 2
		}
		fs := newFlagSet("edit", opt.Err)
		var f fieldFlags
		fs.Var(&f.state, "state", "new state name")
		fs.Var(&f.district, "district", "new district name")
		fs.Var(&f.name, "name", "new taluka name")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		return doEdit(opt, id, f)

	case "toggle":
		id, _, ok := leadingID(opt, "toggle <id>", a)
		if !ok {
			return 2
		}
		return doToggle(opt, id)

	case "rm":
		id, rest, ok := leadingID(opt, "rm <id> [-yes]", a)
		if !ok {
			return 2
		}
		fs := newFlagSet("rm", opt.Err)
		yes := fs.Bool("yes", false, "do not ask for confirmation")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		return doRemove(opt, id, *yes)

	case "config":
		fs := newFlagSet("config", opt.Err)
		var f configFlags
		fs.Var(&f.api, "api", "backend base URL")
		fs.Var(&f.timeout, "timeout", "request timeout, e.g. 5s")
		fs.Var(&f.theme, "theme", "classic | neon | mono")
		fs.Var(&f.logFile, "log-file", "log file path")
		fs.Var(&f.logLevel, "log-level", "debug | info | warn | error")
		fs.Var(&f.noColor, "no-color", "disable colours")
		if err := fs.Parse(a); err != nil {
			return 2
		}
		return doConfig(opt, f)
	}

	ui.Fail(opt.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Err)
	PrintHelp(opt.Err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `taluka - manage Taluka Master records

Usage:
  taluka [root flags] <subcommand> [args]

Root flags:
  -config <file>     config file (default ~/.taluka/config.yaml)
  -api <url>         backend base URL
  -theme <name>      classic | neon | mono
  -no-color          disable colours

Subcommands:
  ui                                      Interactive screen (default)
  ls [-search term] [-status S]           List talukas, filtered by name or status
  add -state S -district D -name N        Add a taluka (status starts Inactive)
  edit <id> [-state S] [-district D] [-name N]
                                          Change the given fields of a taluka
  toggle <id>                             Flip a taluka between Active and Inactive
  rm <id> [-yes]                          Delete a taluka
  config [-api URL] [-timeout D] [-theme T] [-log-file F] [-log-level L] [-no-color]
                                          Show the configuration, or save the given settings

Examples:
  taluka add -state "North State" -district Northern -name Northgate
  taluka ls -search north
  taluka toggle 3
  taluka rm 3 -yes
  taluka config -api http://masters.internal:8080 -timeout 5s
`)
}

// -------------- subcommand impls ----------------

func doUI(opt Options) int {
	m := tui.New(opt.Service, tui.WithTimeout(opt.Timeout), tui.WithLogger(opt.Logger))
	if err := opt.Interactive(m); err != nil {
		ui.Fail(opt.Err, "ui: "+err.Error())
		return 1
	}
	return 0
}

func doList(opt Options, term string, only model.Status) int {
	s, code := load(opt)
	if code != 0 {
		return code
	}
	s.SetSearchTerm(term)

	all, visible := s.Records(), s.Visible()
	if only != "" {
		kept := visible[:0]
		for _, r := range visible {
			if r.Status == only {
				kept = append(kept, r)
			}
		}
		visible = kept
	}
	active := 0
	for _, r := range all {
		if r.Status == model.StatusActive {
			active++
		}
	}

	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Taluka Master"),
		ui.C(t.Success, t.SymActive), active,
		ui.C(t.Inactive, t.SymInactive), len(all)-active,
		ui.C(t.Accent, "Total"), len(all),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(active, len(all), 28)))
	if term != "" || only != "" {
		var what []string
		if term != "" {
			what = append(what, fmt.Sprintf("name ~ %q", term))
		}
		if only != "" {
			what = append(what, "status = "+string(only))
		}
		lines = append(lines, ui.C(t.Muted, fmt.Sprintf("%s: %d of %d", strings.Join(what, ", "), len(visible), len(all))))
	}
	lines = append(lines, "")

	if len(visible) == 0 {
		lines = append(lines, ui.C(t.Muted, "No talukas found."))
	} else {
		rows := make([][]string, 0, len(visible))
		for _, r := range visible {
			name := r.TalukaName
			if name == "" {
				name = ui.Dim("(unnamed)")
			}
			rows = append(rows, []string{
				strconv.FormatInt(r.ID, 10), name, r.District, r.StateName, ui.StatusLabel(r.Status),
			})
		}
		lines = append(lines, ui.Table([]string{"Sr No", "Taluka Name", "District", "State", "Status"}, rows)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: flip a status with `taluka toggle <id>`"))
	ui.Panel(opt.Out, lines)
	return 0
}

func doAdd(opt Options, state, district, name string) int {
	s := master.NewScreen()
	s.SetFields(state, district, name)
	return submit(opt, s)
}

func doEdit(opt Options, id int64, f fieldFlags) int {
	s, code := load(opt)
	if code != 0 {
		return code
	}
	if !s.EnterEdit(id) {
		return notFound(opt, id)
	}
	d := s.Draft()
	s.SetFields(f.state.or(d.StateName), f.district.or(d.District), f.name.or(d.TalukaName))
	return submit(opt, s)
}

func doToggle(opt Options, id int64) int {
	s, code := load(opt)
	if code != 0 {
		return code
	}
	r, ok := s.Find(id)
	if !ok {
		return notFound(opt, id)
	}
	req, err := s.BeginToggle(r.ID, r.Status)
	if err != nil {
		return reject(opt, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opt.Timeout)
	defer cancel()
	return report(opt, s.FinishToggle(req, req.Send(ctx, opt.Service)))
}

func doRemove(opt Options, id int64, yes bool) int {
	s, code := load(opt)
	if code != 0 {
		return code
	}
	r, ok := s.Find(id)
	if !ok {
		return notFound(opt, id)
	}
	if !yes && !confirm(opt, r) {
		fmt.Fprintln(opt.Out, ui.Dim("cancelled"))
		return 0
	}
	req, err := s.BeginDelete(id)
	if err != nil {
		return reject(opt, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opt.Timeout)
	defer cancel()
	return report(opt, s.FinishDelete(req, req.Send(ctx, opt.Service)))
}

// doConfig prints the effective configuration, or with flags writes them
// into the config file on top of what it already holds.
func doConfig(opt Options, f configFlags) int {
	if !f.any() {
		b, err := yaml.Marshal(opt.Config)
		if err != nil {
			ui.Fail(opt.Err, "config: "+err.Error())
			return 1
		}
		fmt.Fprint(opt.Out, string(b))
		return 0
	}

	path := opt.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			ui.Fail(opt.Err, "config: "+err.Error())
			return 1
		}
		path = p
	}
	c, err := config.LoadFile(path)
	if err != nil {
		ui.Fail(opt.Err, "config: "+err.Error())
		return 1
	}

	c.APIURL = f.api.or(c.APIURL)
	c.Theme = f.theme.or(c.Theme)
	c.LogFile = f.logFile.or(c.LogFile)
	c.LogLevel = f.logLevel.or(c.LogLevel)
	if f.timeout.set {
		d, err := time.ParseDuration(f.timeout.val)
		if err != nil {
			ui.Fail(opt.Err, "config: timeout: "+err.Error())
			return 2
		}
		c.Timeout = d
	}
	if f.noColor.set {
		c.NoColor = f.noColor.val
	}
	if err := c.Validate(); err != nil {
		ui.Fail(opt.Err, err.Error())
		return 2
	}

	if err := config.Save(path, c); err != nil {
		ui.Fail(opt.Err, "config: "+err.Error())
		return 1
	}
	ui.OK(opt.Out, "saved "+path)
	return 0
}

// -------------- helpers --------------

// load fetches the list into a fresh screen.
func load(opt Options) (*master.Screen, int) {
	s := master.NewScreen()
	if err := s.BeginLoad(); err != nil {
		return nil, reject(opt, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opt.Timeout)
	defer cancel()
	records, err := opt.Service.List(ctx)
	if out := s.FinishLoad(records, err); out.Notice != nil {
		return nil, report(opt, out)
	}
	return s, 0
}

func submit(opt Options, s *master.Screen) int {
	req, err := s.BeginSubmit()
	if err != nil {
		return reject(opt, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), opt.Timeout)
	defer cancel()
	return report(opt, s.FinishSubmit(req, req.Send(ctx, opt.Service)))
}

// report prints the outcome's notice. Reloads are moot for a one-shot command.
func report(opt Options, out master.Outcome) int {
	if out.Notice == nil {
		return 0
	}
	if out.Notice.IsError() {
		opt.Logger.WithField("notice", out.Notice.Text).Warn("operation failed")
		ui.Fail(opt.Err, out.Notice.Text)
		return 1
	}
	ui.OK(opt.Out, out.Notice.Text)
	return 0
}

// reject reports a request that never left, which is a usage problem.
func reject(opt Options, err error) int {
	ui.Fail(opt.Err, master.Rejected(err).Text)
	return 2
}

func notFound(opt Options, id int64) int {
	ui.Fail(opt.Err, fmt.Sprintf("no taluka with id %d", id))
	fmt.Fprintln(opt.Err, ui.Dim("Hint: run `taluka ls` to see valid ids"))
	return 1
}

func confirm(opt Options, r model.Taluka) bool {
	label := r.TalukaName
	if label == "" {
		label = "#" + strconv.FormatInt(r.ID, 10)
	}
	fmt.Fprintf(opt.Out, "%s %s [y/N] ", "Are you sure you want to delete this taluka?", ui.C(ui.Current().Accent, label))
	line, err := bufio.NewReader(opt.In).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(opt.Out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func leadingID(opt Options, usage string, a []string) (int64, []string, bool) {
	if len(a) == 0 {
		ui.Fail(opt.Err, "usage: taluka "+usage)
		return 0, nil, false
	}
	id, err := strconv.ParseInt(a[0], 10, 64)
	if err != nil || id <= 0 {
		ui.Fail(opt.Err, "not an id: "+a[0])
		return 0, nil, false
	}
	return id, a[1:], true
}

func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

// optString is a flag that remembers whether it was given.
type optString struct {
	val string
	set bool
}

func (o *optString) String() string { return o.val }
func (o *optString) Set(v string) error {
	o.val, o.set = v, true
	return nil
}

func (o optString) or(fallback string) string {
	if o.set {
		return o.val
	}
	return fallback
}

type fieldFlags struct {
	state, district, name optString
}

// optBool is a boolean flag that remembers whether it was given.
type optBool struct {
	val bool
	set bool
}

func (o *optBool) String() string   { return strconv.FormatBool(o.val) }
func (o *optBool) IsBoolFlag() bool { return true }
func (o *optBool) Set(v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	o.val, o.set = b, true
	return nil
}

type configFlags struct {
	api, timeout, theme, logFile, logLevel optString
	noColor                                optBool
}

func (f configFlags) any() bool {
	return f.api.set || f.timeout.set || f.theme.set || f.logFile.set || f.logLevel.set || f.noColor.set
}
