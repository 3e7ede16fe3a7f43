package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/trezcool/safari/core"
	"github.com/trezcool/safari/core/wizard"
)

// Form is the part of a wizard.Controller the terminal needs, whatever its draft type.
type Form interface {
	View() wizard.View
	StepLabels() []string
	SetField(name string, value interface{}) error
	Next() error
	Previous()
	JumpTo(index int) error
	SubmitAsync(ctx context.Context) (<-chan wizard.Status, error)
	Status() wizard.Status
}

// Outline edits the nested groups of a draft (modules and lessons, sections and questions) as indented text.
type Outline interface {
	Text(field string) string
	Apply(field, text string) error
}

type Outcome int

const (
	Editing Outcome = iota
	Saved
	Cancelled
	LoginRequired
)

type WizardOptions struct {
	Title   string
	Outline Outline
	// Embedded wizards never quit the program; the parent model watches Outcome instead.
	Embedded bool
	Width    int
}

type submittedMsg struct {
	status wizard.Status
}

type input struct {
	field wizard.Field
	text  textinput.Model
	area  textarea.Model
	multi bool
	err   string // last rejected value
}

func (in *input) value() string {
	if in.multi {
		return in.area.Value()
	}
	return in.text.Value()
}

func (in *input) setValue(v string) {
	if in.multi {
		in.area.SetValue(v)
		return
	}
	in.text.SetValue(v)
}

func (in *input) focus() tea.Cmd {
	if in.multi {
		return in.area.Focus()
	}
	return in.text.Focus()
}

func (in *input) blur() {
	if in.multi {
		in.area.Blur()
		return
	}
	in.text.Blur()
}

type WizardModel struct {
	form     Form
	opts     WizardOptions
	ctx      context.Context
	styles   Styles
	markdown *glamour.TermRenderer
	spinner  spinner.Model

	stepID  string
	inputs  []input
	focused int
	message string
	outcome Outcome
}

func NewWizard(ctx context.Context, form Form, opts WizardOptions) WizardModel {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	md, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(opts.Width-4))
	if err != nil {
		md = nil
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := WizardModel{
		form:     form,
		opts:     opts,
		ctx:      ctx,
		styles:   DefaultStyles(),
		markdown: md,
		spinner:  sp,
	}
	m.loadStep()
	return m
}

func (m WizardModel) Outcome() Outcome { return m.outcome }

// loadStep rebuilds the inputs when the current step changed.
func (m *WizardModel) loadStep() {
	view := m.form.View()
	if view.StepID == m.stepID && m.inputs != nil {
		m.syncValues(view)
		return
	}
	m.stepID = view.StepID
	m.inputs = make([]input, 0, len(view.Fields))
	for _, fv := range view.Fields {
		in := input{field: fv.Field}
		switch fv.Kind {
		case wizard.TextArea, wizard.Markdown, wizard.Groups:
			in.multi = true
			in.area = textarea.New()
			in.area.SetWidth(m.opts.Width - 4)
			in.area.SetHeight(6)
			in.area.ShowLineNumbers = false
		default:
			in.text = textinput.New()
			in.text.Width = m.opts.Width - 24
			in.text.Placeholder = placeholder(fv.Field)
			if strings.Contains(fv.Name, "password") {
				in.text.EchoMode = textinput.EchoPassword
			}
		}
		if fv.Kind == wizard.Groups && m.opts.Outline != nil {
			in.setValue(m.opts.Outline.Text(fv.Name))
		} else {
			in.setValue(fv.Value)
		}
		m.inputs = append(m.inputs, in)
	}
	m.focused = 0
	if len(m.inputs) > 0 {
		m.inputs[0].focus()
	}
}

// syncValues shows derived values (e.g. the slug) in every input but the focused one.
func (m *WizardModel) syncValues(view wizard.View) {
	for i := range m.inputs {
		if i == m.focused || i >= len(view.Fields) || m.inputs[i].field.Kind == wizard.Groups {
			continue
		}
		if m.inputs[i].value() != view.Fields[i].Value {
			m.inputs[i].setValue(view.Fields[i].Value)
		}
	}
}

func placeholder(f wizard.Field) string {
	switch f.Kind {
	case wizard.Date:
		return "YYYY-MM-DD"
	case wizard.DateTime:
		return "2006-01-02T15:04:05Z"
	case wizard.Bool:
		return "space to toggle"
	case wizard.Select:
		return "←/→ " + strings.Join(f.Options, " | ")
	}
	return f.Help
}

func (m WizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.update(msg)
}

func (m WizardModel) update(msg tea.Msg) (WizardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		return m.submitted(msg.status)

	case spinner.TickMsg:
		if m.form.Status().Phase != wizard.Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.outcome != Editing {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			m.outcome = Cancelled
			return m, m.quit()
		case "tab":
			return m, m.moveFocus(1)
		case "shift+tab":
			return m, m.moveFocus(-1)
		case "ctrl+n", "pgdown":
			if err := m.form.Next(); err != nil {
				m.message = gateMessage(err)
			} else {
				m.message = ""
			}
			m.loadStep()
			return m, nil
		case "ctrl+p", "pgup":
			m.form.Previous()
			m.message = ""
			m.loadStep()
			return m, nil
		case "ctrl+s":
			return m.submit()
		case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9":
			idx := int(msg.String()[len("alt+")] - '1')
			if err := m.form.JumpTo(idx); err != nil {
				m.message = "Complete the previous steps first."
			} else {
				m.message = ""
			}
			m.loadStep()
			return m, nil
		}
		return m.edit(msg)
	}
	return m, nil
}

func (m WizardModel) quit() tea.Cmd {
	if m.opts.Embedded {
		return nil
	}
	return tea.Quit
}

func (m *WizardModel) moveFocus(delta int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.inputs[m.focused].blur()
	m.focused = (m.focused + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focused].focus()
}

// edit hands the key to the focused input and merges its value into the draft.
func (m WizardModel) edit(msg tea.KeyMsg) (WizardModel, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	in := &m.inputs[m.focused]

	var cmd tea.Cmd
	switch in.field.Kind {
	case wizard.Select:
		switch msg.String() {
		case "left", "right":
			in.setValue(cycle(in.field.Options, in.value(), msg.String() == "right"))
		default:
			return m, nil
		}
	case wizard.Bool:
		if msg.String() != " " {
			return m, nil
		}
		if in.value() == "true" {
			in.setValue("false")
		} else {
			in.setValue("true")
		}
	default:
		if in.multi {
			in.area, cmd = in.area.Update(msg)
		} else {
			in.text, cmd = in.text.Update(msg)
		}
	}

	var err error
	if in.field.Kind == wizard.Groups {
		if m.opts.Outline != nil {
			err = m.opts.Outline.Apply(in.field.Name, in.value())
		}
	} else {
		err = m.form.SetField(in.field.Name, in.value())
	}
	in.err = ""
	if err != nil {
		in.err = fieldMessage(err, in.field.Name)
	}
	m.loadStep()
	return m, cmd
}

func cycle(options []string, cur string, forward bool) string {
	if len(options) == 0 {
		return cur
	}
	idx := -1
	for i, o := range options {
		if o == cur {
			idx = i
			break
		}
	}
	switch {
	case idx < 0:
		return options[0]
	case forward:
		return options[(idx+1)%len(options)]
	default:
		return options[(idx-1+len(options))%len(options)]
	}
}

func (m WizardModel) submit() (WizardModel, tea.Cmd) {
	ch, err := m.form.SubmitAsync(m.ctx)
	if err != nil {
		m.message = gateMessage(err)
		m.loadStep()
		return m, nil
	}
	m.message = ""
	wait := func() tea.Msg { return submittedMsg{status: <-ch} }
	return m, tea.Batch(wait, m.spinner.Tick)
}

func (m WizardModel) submitted(status wizard.Status) (WizardModel, tea.Cmd) {
	switch status.Phase {
	case wizard.Succeeded:
		m.outcome = Saved
		m.message = ""
		return m, m.quit()
	case wizard.Failed:
		if status.Kind == core.AuthRequired {
			m.outcome = LoginRequired
			return m, m.quit()
		}
		// entered data stays in place: the user may fix it and submit again
		m.message = status.Reason
	}
	m.loadStep()
	return m, nil
}

func gateMessage(err error) string {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		return "Please correct the highlighted fields."
	}
	return err.Error()
}

func fieldMessage(err error, field string) string {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		if msg, ok := vErr.FieldMap()[field]; ok {
			return msg
		}
	}
	return err.Error()
}

func (m WizardModel) View() string {
	view := m.form.View()
	var b strings.Builder

	if m.opts.Title != "" {
		b.WriteString(m.styles.Title.Render(m.opts.Title))
		b.WriteString("\n")
	}
	b.WriteString(m.stepIndicator(view))
	b.WriteString("\n\n")

	for i, fv := range view.Fields {
		if i >= len(m.inputs) {
			break
		}
		in := m.inputs[i]
		label := m.styles.Label.Render(fv.Label)
		if fv.Required {
			label += m.styles.Required.Render(" *")
		}
		if i == m.focused {
			label = m.styles.Selected.Render("› ") + label
		} else {
			label = "  " + label
		}
		b.WriteString(label + "\n")
		if in.multi {
			b.WriteString(in.area.View())
		} else {
			b.WriteString("  " + in.text.View())
		}
		b.WriteString("\n")

		switch {
		case in.err != "":
			b.WriteString("  " + m.styles.Error.Render(in.err) + "\n")
		case fv.Error != "":
			b.WriteString("  " + m.styles.Error.Render(fv.Error) + "\n")
		case fv.Help != "" && i == m.focused:
			b.WriteString("  " + m.styles.Help.Render(fv.Help) + "\n")
		}
		if fv.Kind == wizard.Markdown && i == m.focused && m.markdown != nil && strings.TrimSpace(in.value()) != "" {
			if out, err := m.markdown.Render(in.value()); err == nil {
				b.WriteString(m.styles.Box.Render(strings.TrimSpace(out)) + "\n")
			}
		}
		b.WriteString("\n")
	}

	switch status := m.form.Status(); {
	case status.Phase == wizard.Submitting:
		b.WriteString(m.spinner.View() + " Saving...\n")
	case m.outcome == Saved:
		b.WriteString(m.styles.Success.Render("Saved.") + "\n")
	case m.message != "":
		b.WriteString(m.styles.Error.Render(m.message) + "\n")
	}

	keys := "tab: next field • ctrl+n/ctrl+p: next/previous step • alt+N: go to step • ctrl+s: save • esc: cancel"
	b.WriteString(m.styles.Muted.Render(keys))
	return b.String()
}

func (m WizardModel) stepIndicator(view wizard.View) string {
	labels := m.form.StepLabels()
	parts := make([]string, 0, len(labels))
	for i, l := range labels {
		text := fmt.Sprintf("%d %s", i+1, l)
		switch {
		case i == view.Index:
			parts = append(parts, m.styles.StepActive.Render(text))
		case i < view.Index:
			parts = append(parts, m.styles.StepDone.Render(text))
		default:
			parts = append(parts, m.styles.Step.Render(text))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
