// Command notifyctl is a CLI client for the notification platform: it
// authenticates a registered client, mirrors its projects/purposes/
// memberships locally, and triggers one-off SMS/WhatsApp sends.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/shauryatech/notifyctl/internal/api"
	"github.com/shauryatech/notifyctl/internal/config"
	"github.com/shauryatech/notifyctl/internal/errs"
	"github.com/shauryatech/notifyctl/internal/quota"
	"github.com/shauryatech/notifyctl/internal/session"
	"github.com/shauryatech/notifyctl/internal/state"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app bundles everything a subcommand needs.
type app struct {
	cfg     config.Config
	api     *api.Client
	session *session.Store
	state   *state.Store
	logger  *zap.Logger
}

func usage() {
	fmt.Fprintf(os.Stderr, `notifyctl
Usage:
  notifyctl [-config file] [-v] <cmd> [args]

Commands:
  version
  register       -name <org> -desc <text> -email <addr> -p <password> -mobile <num> [-project <name> -sender <id>]
  login          -u <email> -p <password>            (saves credentials)
  logout
  whoami
  dashboard                                          (projects, purposes, quota summary)
  project-add    -name <name> [-sender <id>] [-mediums sms,whatsapp] [-wa-phone-id <id> -wa-token <tok>]
  purpose-add    -project <id> -name <name> [-desc <text>] [-template <id>]
                 [-medium sms|whatsapp] [-lang <code>] [-template-type <t>] [-vars name:type:pos,...]
  plans          [-channel sms|whatsapp]
  membership-add -plans <planID>[,<planID>...]
  memberships
  send-sms       -project <id> -mobile <num> -message <text> [-purpose <id>]
  send-wa        -project <id> -purpose <id> -mobile <num> [-vars name=value,...]
`)
	os.Exit(2)
}

func main() {
	cfgPath := flag.String("config", config.Path(), "config file (YAML)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	logger := newLogger(*verbose)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fail(err)
	}

	a := &app{
		cfg:     cfg,
		api:     api.New(api.Config{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout, Logger: logger}),
		session: session.NewStore(),
		state:   state.NewStore(),
		logger:  logger,
	}
	session.Restore(a.session, logger)
	if tok := a.session.Token(); tok != "" {
		a.api.SetToken(tok)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+5*time.Second)
	defer cancel()

	switch cmd {
	case "version":
		fmt.Printf("notifyctl %s (%s)\n", version, buildDate)
	case "register":
		cmdRegister(ctx, a, args)
	case "login":
		cmdLogin(ctx, a, args)
	case "logout":
		cmdLogout(a)
	case "whoami":
		cmdWhoami(a)
	case "dashboard":
		cmdDashboard(ctx, a)
	case "project-add":
		cmdProjectAdd(ctx, a, args)
	case "purpose-add":
		cmdPurposeAdd(ctx, a, args)
	case "plans":
		cmdPlans(ctx, a, args)
	case "membership-add":
		cmdMembershipAdd(ctx, a, args)
	case "memberships":
		cmdMemberships(ctx, a)
	case "send-sms":
		cmdSendSMS(ctx, a, args)
	case "send-wa":
		cmdSendWhatsApp(ctx, a, args)
	default:
		usage()
	}
}

func newLogger(verbose bool) *zap.Logger {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// requireAuth exits unless a session is held.
func requireAuth(a *app) {
	if !a.session.IsAuthenticated() {
		fail(errs.ErrNoSession)
	}
}

// loadClient fetches the client record into the state store.
func loadClient(ctx context.Context, a *app) {
	requireAuth(a)
	a.state.SetLoading(true)
	raw, err := a.api.FetchClient(ctx, a.session.ClientID())
	if err != nil {
		a.state.SetError(err.Error())
		fail(err)
	}
	a.state.SetClient(raw)
}

func cmdLogin(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("u", "", "email")
	password := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "need -u and -p")
		os.Exit(1)
	}

	res, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		fail(err)
	}
	a.session.Login(res.Token, res.ClientID, res.User)
	a.api.SetToken(res.Token)
	if err := session.Save(res.Token, res.ClientID, res.User); err != nil {
		a.logger.Warn("could not persist credentials", zap.Error(err))
	}
	fmt.Println("ok")
}

func cmdLogout(a *app) {
	a.session.Logout()
	a.state.Clear()
	if err := session.Clear(); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

func cmdWhoami(a *app) {
	user, ok := a.session.User()
	if !ok {
		fail(errs.ErrNoSession)
	}
	printJSON(map[string]string{
		"user_id":   user.UserID,
		"email":     user.Email,
		"client_id": a.session.ClientID(),
	})
}

func cmdRegister(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "organization name")
	desc := fs.String("desc", "", "description")
	email := fs.String("email", "", "email")
	password := fs.String("p", "", "password")
	mobile := fs.String("mobile", "", "mobile number")
	project := fs.String("project", "", "bootstrap project name (optional)")
	sender := fs.String("sender", "", "SMS sender id (optional)")
	_ = fs.Parse(args)
	if *name == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "need -name, -email and -p")
		os.Exit(1)
	}

	req := api.RegisterRequest{
		Name:        *name,
		Description: *desc,
		Email:       *email,
		Password:    *password,
		Mobile:      *mobile,
		SenderID:    *sender,
	}
	if *project != "" {
		req.Project = &api.BootstrapProject{Name: *project, SenderID: *sender}
	}

	created, err := a.api.Register(ctx, req)
	if err != nil {
		fail(err)
	}
	printJSON(created)
	fmt.Fprintln(os.Stderr, "registered; run `notifyctl login` to start a session")
}

func cmdDashboard(ctx context.Context, a *app) {
	loadClient(ctx, a)

	// Membership fetch is independent of the client fetch; a failure here
	// still leaves the project listing usable.
	a.state.SetMembershipLoading(true)
	ms, err := a.api.FetchMemberships(ctx, a.session.ClientID())
	if err != nil {
		a.state.SetError(err.Error())
		a.logger.Warn("membership fetch failed", zap.Error(err))
	} else {
		a.state.SetMemberships(ms)
	}

	client, _ := a.state.Client()
	fmt.Printf("%s (%s)\n", client.Name, client.Description)
	fmt.Printf("projects: %d\n", len(client.Projects))
	for _, p := range client.Projects {
		key := "<none>"
		if p.APIKey != nil {
			key = *p.APIKey
		}
		fmt.Printf("  %s  %s  sender=%s  api_key=%s  purposes=%d\n",
			p.ID, p.Name, p.SenderID, key, len(p.Purposes))
		for _, pu := range p.Purposes {
			medium := "sms"
			if pu.Meta != nil {
				medium = pu.Meta.Medium
			}
			fmt.Printf("    %s  %s  [%s]\n", pu.ID, pu.Name, medium)
		}
	}

	now := time.Now()
	sum := quota.Summarize(a.state.Memberships(), now)
	fmt.Printf("active plans: %d\n", sum.ActivePlans)
	printChannel("sms", sum.SMS)
	printChannel("whatsapp", sum.WhatsApp)
	for _, m := range sum.UnknownChannel {
		a.logger.Warn("membership with unknown channel excluded from totals",
			zap.String("membership_id", m.ID),
			zap.String("channel", m.Plan.Channel),
		)
	}
	for _, m := range a.state.Memberships() {
		u := quota.Compute(m, now)
		if u.Expiring {
			fmt.Printf("  warning: %s plan %q expiring (%.0f%% used, %d days left)\n",
				m.Plan.Channel, m.Plan.Name, u.Percentage, u.DaysRemaining)
		}
	}
}

func printChannel(name string, t quota.ChannelTotals) {
	fmt.Printf("%s: quota=%d used=%d remaining=%d\n", name, t.Quota, t.Used, t.Remaining)
}

func cmdPlans(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("plans", flag.ExitOnError)
	channel := fs.String("channel", "", "filter by channel (sms|whatsapp)")
	_ = fs.Parse(args)

	plans, err := a.api.FetchPlans(ctx)
	if err != nil {
		fail(err)
	}
	filtered := plans[:0:0]
	for _, p := range plans {
		if *channel == "" || equalFold(p.Channel, *channel) {
			filtered = append(filtered, p)
		}
	}
	printJSON(filtered)
}

func cmdMemberships(ctx context.Context, a *app) {
	requireAuth(a)
	ms, err := a.api.FetchMemberships(ctx, a.session.ClientID())
	if err != nil {
		fail(err)
	}
	a.state.SetMemberships(ms)

	now := time.Now()
	type row struct {
		ID       string  `json:"id"`
		Plan     string  `json:"plan"`
		Channel  string  `json:"channel"`
		Status   string  `json:"status"`
		Used     int     `json:"used"`
		Total    int     `json:"total"`
		UsedPct  float64 `json:"used_pct"`
		DaysLeft int     `json:"days_left"`
		Expiring bool    `json:"expiring"`
	}
	rows := make([]row, 0, len(ms))
	for _, m := range ms {
		u := quota.Compute(m, now)
		rows = append(rows, row{
			ID: m.ID, Plan: m.Plan.Name, Channel: m.Plan.Channel, Status: m.Status,
			Used: m.QuotaUsed, Total: m.QuotaTotal,
			UsedPct: u.Percentage, DaysLeft: u.DaysRemaining, Expiring: u.Expiring,
		})
	}
	printJSON(rows)
}

func cmdMembershipAdd(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("membership-add", flag.ExitOnError)
	plans := fs.String("plans", "", "comma-separated plan ids")
	_ = fs.Parse(args)
	requireAuth(a)

	ids := splitList(*plans)
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "need -plans")
		os.Exit(1)
	}

	ms, err := a.api.CreateMemberships(ctx, a.session.ClientID(), ids)
	if err != nil {
		fail(err)
	}
	for _, m := range ms {
		a.state.AddMembership(m)
	}
	printJSON(ms)
}

// ---- helpers ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	if errors.Is(err, errs.ErrUnavailable) {
		fmt.Fprintln(os.Stderr, "request failed, please retry:", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
