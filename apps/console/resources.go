package main

import (
	"context"
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/safari/apps/console/tui"
	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/catalog"
	"github.com/trezcool/safari/core/listing"
	"github.com/trezcool/safari/core/wizard"
)

// formFactory opens a wizard: a create wizard when id is empty, else an edit wizard of the entity
// with that id or slug.
type formFactory func(ctx context.Context, a *app, id string) (tui.Form, tui.Outline, error)

type resource struct {
	name       string
	collection string
	spec       core.ListSpec
	columns    []tui.Column
	detail     string
	form       formFactory // nil: no wizard
}

var resources = []resource{
	{
		name: "universities", collection: catalog.Universities, spec: catalog.UniversitySpec,
		columns: []tui.Column{col("Name", "name", 34), col("Country", "country", 16), col("City", "city", 16), col("Ranking", "ranking", 8)},
		detail:  "description",
		form:    formFor(catalog.Universities, catalog.UniversitySteps, nil),
	},
	{
		name: "programs", collection: catalog.Programs, spec: catalog.ProgramSpec,
		columns: []tui.Column{col("Title", "title", 34), col("Level", "level", 12), col("Discipline", "discipline", 18), col("Country", "country", 12), col("Fee", "tuition_fee", 10)},
		detail:  "description",
		form:    formFor(catalog.Programs, catalog.ProgramSteps, nil),
	},
	{
		name: "courses", collection: catalog.Courses, spec: catalog.CourseSpec,
		columns: []tui.Column{col("Title", "title", 34), col("Category", "category", 16), col("Level", "level", 12), col("Price", "price", 8), col("Modules", "modules", 8)},
		detail:  "description",
		form: formFor(catalog.Courses, catalog.CourseSteps, func(c *wizard.Controller[catalog.Course]) tui.Outline {
			return courseOutline{ctl: c}
		}),
	},
	{
		name: "tests", collection: catalog.Tests, spec: catalog.TestSpec,
		columns: []tui.Column{col("Title", "title", 34), col("Exam", "exam", 10), col("Minutes", "duration_minutes", 8), col("Sections", "sections", 8)},
		detail:  "description",
		form: formFor(catalog.Tests, catalog.TestSteps, func(c *wizard.Controller[catalog.Test]) tui.Outline {
			return testOutline{ctl: c}
		}),
	},
	{
		name: "events", collection: catalog.Events, spec: catalog.EventSpec,
		columns: []tui.Column{col("Title", "title", 34), col("Kind", "kind", 12), col("Starts", "starts_at", 22), col("Location", "location", 18)},
		detail:  "description",
		form:    formFor(catalog.Events, catalog.EventSteps, nil),
	},
	{
		name: "pages", collection: catalog.Pages, spec: catalog.PageSpec,
		columns: []tui.Column{col("Title", "title", 34), col("Slug", "slug", 28), col("Published", "published", 10)},
		detail:  "content",
		form:    formFor(catalog.Pages, catalog.PageSteps, nil),
	},
	{
		name: "slides", collection: catalog.HeroSlides, spec: catalog.HeroSlideSpec,
		columns: []tui.Column{col("Title", "title", 34), col("Position", "order_index", 8), col("Active", "active", 8)},
		detail:  "subtitle",
		form:    formFor(catalog.HeroSlides, catalog.HeroSlideSteps, nil),
	},
	{
		name: "appointments", collection: catalog.Appointments, spec: catalog.AppointmentSpec,
		columns: []tui.Column{col("Name", "full_name", 24), col("Email", "email", 28), col("Date", "preferred_date", 12), col("Time", "time_slot", 6), col("Status", "status", 10)},
		detail:  "message",
	},
}

func col(title, key string, width int) tui.Column {
	return tui.Column{Title: title, Key: key, Width: width}
}

// formFor returns the factory of the wizards of one collection.
func formFor[T any](
	collection string,
	steps func() []wizard.Step[T],
	outline func(*wizard.Controller[T]) tui.Outline,
) formFactory {
	return func(ctx context.Context, a *app, id string) (tui.Form, tui.Outline, error) {
		cfg := wizard.Config[T]{
			Collection: collection,
			Steps:      steps(),
			Sync:       a.client,
			Validate:   a.validate,
			Translator: a.translator,
			Logger:     a.logger,
		}

		var ctl *wizard.Controller[T]
		var err error
		if id == "" {
			ctl, err = wizard.New(cfg)
		} else {
			var ent T
			if ent, err = fetch[T](ctx, a, collection, id); err != nil {
				return nil, nil, err
			}
			// the entity may have been looked up by slug
			if ident, ok := any(&ent).(wizard.Identifiable); ok && ident.GetID() != "" {
				id = ident.GetID()
			}
			ctl, err = wizard.Edit(cfg, id, ent)
		}
		if err != nil {
			return nil, nil, err
		}

		var ol tui.Outline
		if outline != nil {
			ol = outline(ctl)
		}
		return ctl, ol, nil
	}
}

func fetch[T any](ctx context.Context, a *app, collection, id string) (T, error) {
	var ent T
	res := a.client.Get(ctx, collection, id)
	if !res.OK {
		return ent, res.Err()
	}
	if err := json.Unmarshal(res.Entity, &ent); err != nil {
		return ent, errors.Wrapf(err, "decoding %s %s", collection, id)
	}
	return ent, nil
}

func resourceCmd(a *app, r resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.name,
		Short: "Manage " + r.name,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Browse and filter " + r.name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, r)
		},
	}
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one of the " + r.name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.Delete(cmd.Context(), r.collection, args[0])
			if !res.OK {
				if res.Kind == core.AuthRequired {
					return a.redirectToLogin(cmd)
				}
				return errors.New(res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}
	cmd.AddCommand(list, del)

	if r.form != nil {
		cmd.AddCommand(&cobra.Command{
			Use:   "new",
			Short: "Create one of the " + r.name + " step by step",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				form, outline, err := r.form(cmd.Context(), a, "")
				if err != nil {
					return err
				}
				return a.runWizard(cmd, "New "+singular(r.name), form, outline)
			},
		}, &cobra.Command{
			Use:   "edit ID|SLUG",
			Short: "Edit one of the " + r.name + " step by step",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				form, outline, err := r.form(cmd.Context(), a, args[0])
				if err != nil {
					return a.syncError(cmd, err)
				}
				return a.runWizard(cmd, "Edit "+args[0], form, outline)
			},
		})
	}
	return cmd
}

func singular(name string) string {
	switch name {
	case "universities":
		return "university"
	case "slides":
		return "hero slide"
	}
	if n := len(name); n > 1 && name[n-1] == 's' {
		return name[:n-1]
	}
	return name
}

// syncError sends the user to the login prompt when err asks for a session.
func (a *app) syncError(cmd *cobra.Command, err error) error {
	if listing.IsAuthError(err) {
		return a.redirectToLogin(cmd)
	}
	return err
}

func (a *app) runWizard(cmd *cobra.Command, title string, form tui.Form, outline tui.Outline) error {
	m := tui.NewWizard(cmd.Context(), form, tui.WizardOptions{Title: title, Outline: outline})
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return errors.Wrap(err, "running wizard")
	}

	switch final.(tui.WizardModel).Outcome() {
	case tui.Saved:
		fmt.Fprintln(cmd.OutOrStdout(), title+": saved.")
	case tui.LoginRequired:
		return a.redirectToLogin(cmd)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), title+": cancelled, nothing was saved.")
	}
	return nil
}

func (a *app) runList(cmd *cobra.Command, r resource) error {
	ctx := cmd.Context()
	onChange, changes := tui.Changes()
	ctl := listing.New[tui.Item](ctx, listing.Config[tui.Item]{
		Collection: r.collection,
		Filters:    listFilters(r.spec),
		Sync:       a.client,
		Logger:     a.logger,
		OnChange:   onChange,
	})

	opts := tui.ListOptions{
		Title:   r.name,
		Columns: r.columns,
		Facets:  r.spec.Facets,
		Detail:  r.detail,
		Delete: func(ctx context.Context, item tui.Item) core.SyncResult {
			id, _ := item["id"].(string)
			return a.client.Delete(ctx, r.collection, id)
		},
	}
	if r.form != nil {
		opts.Edit = func(ctx context.Context, item tui.Item) (tui.Form, tui.Outline, error) {
			id, _ := item["id"].(string)
			return r.form(ctx, a, id)
		}
	}

	final, err := tea.NewProgram(tui.NewList(ctx, ctl, changes, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return errors.Wrap(err, "running list")
	}
	if final.(tui.ListModel).Outcome() == tui.LoginRequired {
		return a.redirectToLogin(cmd)
	}
	return nil
}

// listFilters declares one filter per filterable field of spec, plus the full-text search.
func listFilters(spec core.ListSpec) []listing.Filter {
	filters := []listing.Filter{{Name: "search", Default: listing.Text("")}}
	for _, name := range spec.SetFilters {
		filters = append(filters, listing.Filter{Name: name, Default: listing.Set()})
	}
	for _, name := range spec.RangeFilters {
		filters = append(filters, listing.Filter{Name: name, Default: listing.Range(nil, nil)})
	}
	for _, name := range spec.FlagFilters {
		filters = append(filters, listing.Filter{Name: name, Default: listing.AnyFlag()})
	}
	return filters
}

func setupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure a fresh install: site settings and owner account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := wizard.New(wizard.Config[catalog.SetupRequest]{
				Collection: catalog.Setup,
				Steps:      catalog.SetupSteps(),
				Sync:       a.client,
				Validate:   a.validate,
				Translator: a.translator,
				Logger:     a.logger,
			})
			if err != nil {
				return err
			}
			return a.runWizard(cmd, "Setup", ctl, nil)
		},
	}
}

func bookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "book",
		Short: "Book a counselling appointment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := wizard.NewWithDraft(wizard.Config[catalog.Appointment]{
				Collection: catalog.Appointments,
				Steps:      catalog.BookingSteps(a.conf.AppointmentSlots),
				Sync:       a.client,
				Validate:   a.validate,
				Translator: a.translator,
				Logger:     a.logger,
			}, catalog.Appointment{Status: catalog.StatusPending})
			if err != nil {
				return err
			}
			return a.runWizard(cmd, "Book an appointment", ctl, nil)
		},
	}
}
