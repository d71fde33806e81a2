package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/shauryatech/notifyctl/internal/api"
	"github.com/shauryatech/notifyctl/internal/errs"
	"github.com/shauryatech/notifyctl/internal/model"
	"github.com/shauryatech/notifyctl/internal/normalize"
)

// ------- validators -------

var reMobile = regexp.MustCompile(`^\+?\d{7,15}$`)

func validMobile(num string) bool { return reMobile.MatchString(num) }

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseVarSpecs parses "name:type:position" declarations for purpose-add.
func parseVarSpecs(s string) ([]model.Variable, error) {
	var vars []model.Variable
	for _, spec := range splitList(s) {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("bad variable spec %q (want name:type:position)", spec)
		}
		pos, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("bad position in %q: %w", spec, err)
		}
		vars = append(vars, model.Variable{Name: parts[0], Type: parts[1], Position: pos})
	}
	if err := model.ValidateVariables(vars); err != nil {
		return nil, err
	}
	return vars, nil
}

// parseVarValues parses "name=value" assignments for send-wa.
func parseVarValues(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, kv := range splitList(s) {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("bad variable %q (want name=value)", kv)
		}
		out[name] = value
	}
	return out, nil
}

// ------- lookup helpers -------

// requireProjects loads the client and blocks commands that need at least one
// project before any request is issued.
func requireProjects(ctx context.Context, a *app, what string) model.Client {
	loadClient(ctx, a)
	client, _ := a.state.Client()
	if len(client.Projects) == 0 {
		fmt.Fprintf(os.Stderr, "you need at least one project to %s; run `notifyctl project-add` first\n", what)
		os.Exit(1)
	}
	return client
}

func findProject(client model.Client, id string) (model.Project, bool) {
	for _, p := range client.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

func findPurpose(p model.Project, id string) (model.Purpose, bool) {
	for _, pu := range p.Purposes {
		if pu.ID == id {
			return pu, true
		}
	}
	return model.Purpose{}, false
}

// ------- commands -------

// cmdProjectAdd provisions a new project and appends it to the local client.
func cmdProjectAdd(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("project-add", flag.ExitOnError)
	name := fs.String("name", "", "project name")
	sender := fs.String("sender", "", "SMS sender id")
	mediums := fs.String("mediums", "", "enabled channels, comma-separated (sms,whatsapp)")
	waPhoneID := fs.String("wa-phone-id", "", "WhatsApp phone-number id")
	waToken := fs.String("wa-token", "", "WhatsApp access token")
	_ = fs.Parse(args)

	loadClient(ctx, a)
	if *name == "" {
		fmt.Fprintln(os.Stderr, "need -name")
		os.Exit(1)
	}

	req := api.CreateProjectRequest{
		Name:     *name,
		ClientID: a.session.ClientID(),
		SenderID: *sender,
	}
	channels := splitList(*mediums)
	if len(channels) > 0 || *waPhoneID != "" {
		meta := map[string]any{}
		if len(channels) > 0 {
			for _, ch := range channels {
				if !equalFold(ch, model.ChannelSMS) && !equalFold(ch, model.ChannelWhatsApp) {
					fmt.Fprintf(os.Stderr, "unknown medium %q\n", ch)
					os.Exit(1)
				}
			}
			meta["mediums"] = channels
		}
		if *waPhoneID != "" {
			meta["whatsapp"] = map[string]any{
				"phone_number_id": *waPhoneID,
				"access_token":    *waToken,
			}
		}
		req.Metadata = meta
	}

	created, err := a.api.CreateProject(ctx, req)
	if err != nil {
		fail(err)
	}

	// Optimistic local append, same normalization path as a server fetch.
	key := created.APIKey
	raw := normalize.RawProject{
		ID:        created.ProjectID,
		ClientID:  a.session.ClientID(),
		Name:      *name,
		APIKey:    []byte(strconv.Quote(key)),
		SenderID:  *sender,
		CreatedAt: created.CreatedAt,
	}
	a.state.AddProject(raw)
	printJSON(created)
}

// cmdPurposeAdd creates a message purpose under an existing project.
func cmdPurposeAdd(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("purpose-add", flag.ExitOnError)
	projectID := fs.String("project", "", "project id")
	name := fs.String("name", "", "purpose name")
	desc := fs.String("desc", "", "description")
	template := fs.String("template", "", "template id")
	medium := fs.String("medium", "", "sms|whatsapp")
	lang := fs.String("lang", "", "template language code (whatsapp)")
	templateType := fs.String("template-type", "", "template type (whatsapp)")
	varSpecs := fs.String("vars", "", "template variables name:type:position,...")
	_ = fs.Parse(args)

	client := requireProjects(ctx, a, "create a purpose")
	if *projectID == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "need -project and -name")
		os.Exit(1)
	}
	if _, ok := findProject(client, *projectID); !ok {
		fail(fmt.Errorf("%w: project %q", errs.ErrNotFound, *projectID))
	}

	req := api.CreatePurposeRequest{
		ClientID:    a.session.ClientID(),
		ProjectID:   *projectID,
		Name:        *name,
		Description: *desc,
		TemplateID:  *template,
	}
	if *medium != "" || *varSpecs != "" || *lang != "" || *templateType != "" {
		m := *medium
		if m == "" {
			m = model.ChannelSMS
		}
		if !equalFold(m, model.ChannelSMS) && !equalFold(m, model.ChannelWhatsApp) {
			fmt.Fprintf(os.Stderr, "unknown medium %q\n", m)
			os.Exit(1)
		}
		vars, err := parseVarSpecs(*varSpecs)
		if err != nil {
			fail(err)
		}
		req.Meta = &model.PurposeMeta{
			Medium:       strings.ToLower(m),
			Language:     *lang,
			TemplateType: *templateType,
			Variables:    vars,
		}
	}

	purpose, err := a.api.CreatePurpose(ctx, req)
	if err != nil {
		fail(err)
	}
	a.state.AddPurpose(*projectID, purpose)
	printJSON(purpose)
}

// cmdSendSMS sends a one-off SMS using a project's credentials.
func cmdSendSMS(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("send-sms", flag.ExitOnError)
	projectID := fs.String("project", "", "project id")
	purposeID := fs.String("purpose", "", "purpose id (defaults to project id)")
	mobile := fs.String("mobile", "", "destination number")
	message := fs.String("message", "", "message text")
	_ = fs.Parse(args)

	client := requireProjects(ctx, a, "send SMS")
	if *projectID == "" || *mobile == "" || *message == "" {
		fmt.Fprintln(os.Stderr, "need -project, -mobile and -message")
		os.Exit(1)
	}
	if !validMobile(*mobile) {
		fmt.Fprintf(os.Stderr, "bad mobile number %q\n", *mobile)
		os.Exit(1)
	}
	project, ok := findProject(client, *projectID)
	if !ok {
		fail(fmt.Errorf("%w: project %q", errs.ErrNotFound, *projectID))
	}

	apiKey := ""
	if project.APIKey != nil {
		apiKey = *project.APIKey
	}
	purpose := *purposeID
	if purpose == "" {
		purpose = *projectID
	}

	msg, err := a.api.SendSMS(ctx, api.SMSRequest{
		ClientID:  client.ID,
		ProjectID: *projectID,
		APIKey:    apiKey,
		PurposeID: purpose,
		Mobile:    *mobile,
		Message:   *message,
	})
	if err != nil {
		fail(err)
	}
	fmt.Println(msg)
}

// cmdSendWhatsApp sends a one-off WhatsApp template message. Provided
// variable values are checked against the purpose's declared variable set
// before anything goes on the wire.
func cmdSendWhatsApp(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("send-wa", flag.ExitOnError)
	projectID := fs.String("project", "", "project id")
	purposeID := fs.String("purpose", "", "purpose id")
	mobile := fs.String("mobile", "", "destination number")
	varValues := fs.String("vars", "", "template values name=value,...")
	_ = fs.Parse(args)

	client := requireProjects(ctx, a, "send WhatsApp messages")
	if *projectID == "" || *purposeID == "" || *mobile == "" {
		fmt.Fprintln(os.Stderr, "need -project, -purpose and -mobile")
		os.Exit(1)
	}
	if !validMobile(*mobile) {
		fmt.Fprintf(os.Stderr, "bad mobile number %q\n", *mobile)
		os.Exit(1)
	}
	project, ok := findProject(client, *projectID)
	if !ok {
		fail(fmt.Errorf("%w: project %q", errs.ErrNotFound, *projectID))
	}

	values, err := parseVarValues(*varValues)
	if err != nil {
		fail(err)
	}
	if purpose, ok := findPurpose(project, *purposeID); ok && purpose.Meta != nil {
		for _, v := range purpose.Meta.Variables {
			if _, set := values[v.Name]; !set {
				fmt.Fprintf(os.Stderr, "missing value for template variable %q (position %d)\n", v.Name, v.Position)
				os.Exit(1)
			}
		}
	}

	apiKey := ""
	if project.APIKey != nil {
		apiKey = *project.APIKey
	}

	msg, err := a.api.SendWhatsApp(ctx, api.WhatsAppRequest{
		APIKey:    apiKey,
		PurposeID: *purposeID,
		Mobile:    *mobile,
		Variables: values,
	})
	if err != nil {
		fail(err)
	}
	fmt.Println(msg)
}
