package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"pocketbank-cli/internal/client"
	"pocketbank-cli/internal/domain"
	"pocketbank-cli/internal/payees"
	"pocketbank-cli/internal/recipient"
	"pocketbank-cli/internal/session"
	"pocketbank-cli/internal/transfer"
	"pocketbank-cli/internal/ui"

	"github.com/charmbracelet/huh"
)

const sessionExpired = "Your session has expired. Please log in again."

// feed serialises output from the notification subscriber with the
// interactive forms. Lines printed while a form is on screen are held back
// until it closes; held notification lines are dropped once the message has
// been dismissed.
type feed struct {
	mu      sync.Mutex
	w       io.Writer
	held    bool
	pending []heldLine
}

// heldLine carries the notification id it renders, or 0 for plain output.
type heldLine struct {
	id   uint64
	text string
}

func newFeed(w io.Writer) *feed {
	return &feed{w: w}
}

func (f *feed) Println(s string) {
	f.notice(0, s)
}

func (f *feed) notice(id uint64, s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held {
		f.pending = append(f.pending, heldLine{id: id, text: s})
		return
	}
	fmt.Fprintln(f.w, s)
}

func (f *feed) dismissed(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.pending {
		if l.id == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}

func (f *feed) hold() {
	f.mu.Lock()
	f.held = true
	f.mu.Unlock()
}

func (f *feed) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.pending {
		fmt.Fprintln(f.w, l.text)
	}
	f.pending = nil
	f.held = false
}

func (a *app) run(ctx context.Context, form *huh.Form) error {
	a.out.hold()
	defer a.out.release()
	return form.RunWithContext(ctx)
}

// guarded runs call through the session guard and hands back its value.
func guarded[T any](ctx context.Context, g *session.Guard, call func(context.Context) (T, error)) (T, error) {
	var v T
	err := g.Do(ctx, func(ctx context.Context) error {
		var err error
		v, err = call(ctx)
		return err
	})
	return v, err
}

// reportFailure prints why a call failed. While notifications are running the
// server's own flash message explains rejections, so only transport failures
// are printed locally.
func (a *app) reportFailure(err error, fallback string) {
	var se *client.StatusError
	switch {
	case errors.Is(err, session.ErrUnauthorized):
		a.out.Println(ui.Hint(sessionExpired, false))
	case errors.Is(err, client.ErrTransport):
		a.out.Println(ui.Hint("Failed to connect to the server. Please try again.", false))
	case a.notifying.Load():
		a.log.Debug(fallback, "err", err)
	case errors.As(err, &se) && se.Message != "":
		a.out.Println(ui.Hint(se.Message, false))
	default:
		a.out.Println(ui.Hint(fallback, false))
	}
}

func violationErr(v domain.Violations, field string) error {
	if msg := v[field]; msg != "" {
		return errors.New(msg)
	}
	return nil
}

// ensureLogin returns once the server accepts the session cookie.
func (a *app) ensureLogin(ctx context.Context) error {
	if active, err := a.sessions.Probe(ctx); err == nil && active {
		a.needsLogin.Store(false)
		return nil
	}

	for a.needsLogin.Load() {
		choice := "login"
		err := a.run(ctx, huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome to PocketBank").
				Options(
					huh.NewOption("Log in", "login"),
					huh.NewOption("Create an account", "register"),
					huh.NewOption("Quit", "quit"),
				).
				Value(&choice),
		)))
		if err != nil {
			return err
		}

		switch choice {
		case "login":
			err = a.login(ctx)
		case "register":
			err = a.register(ctx)
		default:
			return huh.ErrUserAborted
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) login(ctx context.Context) error {
	email := a.cfg.Email
	var password string
	err := a.run(ctx, huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Email").Value(&email).
			Validate(func(s string) error {
				return violationErr(session.ValidateLogin(s, "x"), session.FieldEmail)
			}),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).
			Validate(func(s string) error {
				return violationErr(session.ValidateLogin("a@b.c", s), session.FieldPassword)
			}),
	)))
	if err != nil {
		return err
	}

	v, err := a.sessions.Login(ctx, email, password)
	switch {
	case err != nil:
		a.reportFailure(err, "Login failed")
	case !v.OK():
		a.out.Println(ui.Violations(v))
	default:
		a.needsLogin.Store(false)
	}
	return nil
}

func (a *app) register(ctx context.Context) error {
	var r domain.Registration
	check := func(field string, set func(*domain.Registration, string)) func(string) error {
		return func(s string) error {
			cp := r
			set(&cp, s)
			return violationErr(session.ValidateRegistration(cp), field)
		}
	}

	err := a.run(ctx, huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Full name").Value(&r.Name).
			Validate(check(session.FieldName, func(r *domain.Registration, s string) { r.Name = s })),
		huh.NewInput().Title("Account number").Description("10 digits").Value(&r.AccountNumber).
			Validate(check(session.FieldAccount, func(r *domain.Registration, s string) { r.AccountNumber = s })),
		huh.NewInput().Title("Transaction PIN").Description("4 digits").EchoMode(huh.EchoModePassword).Value(&r.TransactionPIN).
			Validate(check(session.FieldPIN, func(r *domain.Registration, s string) { r.TransactionPIN = s })),
		huh.NewInput().Title("Email").Value(&r.Email).
			Validate(check(session.FieldEmail, func(r *domain.Registration, s string) { r.Email = s })),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&r.Password).
			Validate(check(session.FieldPassword, func(r *domain.Registration, s string) { r.Password = s })),
	)))
	if err != nil {
		return err
	}

	v, err := a.sessions.Register(ctx, r)
	switch {
	case err != nil:
		a.reportFailure(err, "Registration failed")
	case !v.OK():
		a.out.Println(ui.Violations(v))
	default:
		a.out.Println(ui.Hint("Account created. You can log in now.", true))
	}
	return nil
}

func (a *app) shell(ctx context.Context) error {
	stop := a.startNotifications(ctx)
	defer stop()

	for ctx.Err() == nil {
		if a.needsLogin.Load() {
			if err := a.ensureLogin(ctx); err != nil {
				return err
			}
			continue
		}

		choice := ""
		err := a.run(ctx, huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(
					huh.NewOption("Dashboard", "dashboard"),
					huh.NewOption("Balance", "balance"),
					huh.NewOption("Transfer money", "transfer"),
					huh.NewOption("Deposit", "deposit"),
					huh.NewOption("Transaction history", "history"),
					huh.NewOption("Saved payees", "payees"),
					huh.NewOption("Notifications", "notifications"),
					huh.NewOption("Profile", "profile"),
					huh.NewOption("Log out", "logout"),
					huh.NewOption("Quit", "quit"),
				).
				Value(&choice),
		)))
		if err != nil {
			return err
		}

		switch choice {
		case "dashboard":
			if d, err := guarded(ctx, a.guard, a.client.Dashboard); err != nil {
				a.reportFailure(err, "Failed to load dashboard")
			} else {
				a.out.Println(ui.Dashboard(d))
			}
		case "balance":
			if b, err := guarded(ctx, a.guard, a.client.Balance); err != nil {
				a.reportFailure(err, "Failed to load balance")
			} else {
				a.out.Println(ui.Balance(b))
			}
		case "profile":
			p, perr := guarded(ctx, a.guard, a.client.Profile)
			if perr != nil {
				a.reportFailure(perr, "Failed to load profile")
				break
			}
			a.out.Println(ui.Profile(p))
			err = a.profileActions(ctx)
		case "history":
			if snap, err := a.history.Refresh(ctx); err != nil {
				a.reportFailure(err, "Failed to load transactions")
			} else {
				a.out.Println(ui.History(snap.Rows()))
			}
		case "transfer":
			err = a.transferFlow(ctx)
		case "deposit":
			err = a.depositFlow(ctx)
		case "payees":
			a.listPayees()
		case "notifications":
			err = a.notificationsFlow(ctx)
		case "logout":
			if err := a.sessions.Logout(ctx); err != nil {
				a.reportFailure(err, "Logout failed")
			}
			a.needsLogin.Store(true)
		case "quit":
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// lastRecipient remembers the most recent successful lookup so an accepted
// transfer can be saved as a payee.
type lastRecipient struct {
	mu      sync.Mutex
	account string
	name    string
}

func (l *lastRecipient) set(account, name string) {
	l.mu.Lock()
	l.account, l.name = account, name
	l.mu.Unlock()
}

func (l *lastRecipient) nameFor(account string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.account == account {
		return l.name
	}
	return ""
}

// recipientCheck validates the account field and, when it is well formed,
// resolves the recipient name into hint. huh runs it as the field loses focus.
func (a *app) recipientCheck(ctx context.Context, form *transfer.Form, hint *string, last *lastRecipient) func(string) error {
	check := a.transferCheck(form, transfer.FieldRecipient)
	return func(s string) error {
		if err := check(s); err != nil {
			*hint = ""
			return err
		}
		res := a.resolver.Resolve(ctx, transfer.FieldRecipient, strings.TrimSpace(s))
		if res.Status == recipient.Found {
			last.set(res.Account, res.Name)
		}
		*hint = ui.Hint(res.Hint(), res.Status == recipient.Found)
		return nil
	}
}

func (a *app) transferCheck(form *transfer.Form, field string) func(string) error {
	return func(s string) error {
		f := *form
		switch field {
		case transfer.FieldRecipient:
			f.RecipientAccount = s
		case transfer.FieldAmount:
			f.Amount = s
		case transfer.FieldPIN:
			f.PIN = s
		}
		return violationErr(a.transfer.Validate(f), field)
	}
}

func (a *app) pickPayee(ctx context.Context) (string, error) {
	list := a.payees.List()
	if len(list) == 0 {
		return "", nil
	}
	opts := []huh.Option[string]{huh.NewOption("New recipient", "")}
	for _, p := range list {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.AccountNumber), p.AccountNumber))
	}
	choice := ""
	err := a.run(ctx, huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Send to").Options(opts...).Value(&choice),
	)))
	return choice, err
}

func (a *app) transferFlow(ctx context.Context) error {
	var form transfer.Form
	account, err := a.pickPayee(ctx)
	if err != nil {
		return err
	}
	form.RecipientAccount = account
	last := &lastRecipient{}
	var hint string

	for {
		confirm := true
		err := a.run(ctx, huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Recipient account number").Value(&form.RecipientAccount).
					DescriptionFunc(func() string { return hint }, &hint).
					Validate(a.recipientCheck(ctx, &form, &hint, last)),
				huh.NewInput().Title("Amount").Placeholder("0.00").Value(&form.Amount).
					Validate(a.transferCheck(&form, transfer.FieldAmount)),
				huh.NewInput().Title("Transaction PIN").EchoMode(huh.EchoModePassword).Value(&form.PIN).
					Validate(a.transferCheck(&form, transfer.FieldPIN)),
			),
			huh.NewGroup(
				huh.NewConfirm().
					TitleFunc(func() string {
						return fmt.Sprintf("Send %s to %s?", strings.TrimSpace(form.Amount), strings.TrimSpace(form.RecipientAccount))
					}, &form).
					Value(&confirm),
			),
		))
		if err != nil {
			return err
		}
		if !confirm {
			a.out.Println("Transfer cancelled.")
			return nil
		}

		out := a.transfer.Submit(ctx, form)
		switch out.Status {
		case transfer.Accepted:
			if name := last.nameFor(strings.TrimSpace(form.RecipientAccount)); name != "" {
				if err := a.payees.Add(payees.Payee{AccountNumber: strings.TrimSpace(form.RecipientAccount), Name: name}); err != nil {
					a.log.Warn("could not save payee", "err", err)
				}
			}
			form.Clear()
			return nil
		case transfer.Invalid:
			a.out.Println(ui.Violations(out.Violations))
		case transfer.Rejected:
			a.out.Println(ui.Hint(out.Message, false))
			retry := false
			if err := a.run(ctx, huh.NewForm(huh.NewGroup(
				huh.NewConfirm().Title("Try again?").Value(&retry),
			))); err != nil || !retry {
				return err
			}
		}
	}
}

func (a *app) depositFlow(ctx context.Context) error {
	var amount string
	err := a.run(ctx, huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Deposit amount").Placeholder("0.00").Value(&amount).
			Validate(func(s string) error {
				return violationErr(a.transfer.ValidateDeposit(s), transfer.FieldAmount)
			}),
	)))
	if err != nil {
		return err
	}

	out := a.transfer.Deposit(ctx, amount)
	switch out.Status {
	case transfer.Invalid:
		a.out.Println(ui.Violations(out.Violations))
	case transfer.Rejected:
		a.out.Println(ui.Hint(out.Message, false))
	case transfer.Unauthenticated:
		a.out.Println(ui.Hint(sessionExpired, false))
	}
	return nil
}

// notificationsFlow lists the visible notifications and dismisses the one the
// user picks.
func (a *app) notificationsFlow(ctx context.Context) error {
	msgs := a.queue.Messages()
	if len(msgs) == 0 {
		a.out.Println("No notifications.")
		return nil
	}

	opts := make([]huh.Option[uint64], 0, len(msgs)+1)
	for _, n := range msgs {
		opts = append(opts, huh.NewOption(ui.Notification(n), n.ID))
	}
	opts = append(opts, huh.NewOption("Back", uint64(0)))

	var id uint64
	err := a.run(ctx, huh.NewForm(huh.NewGroup(
		huh.NewSelect[uint64]().Title("Dismiss a notification").Options(opts...).Value(&id),
	)))
	if err != nil || id == 0 {
		return err
	}
	if !a.queue.Dismiss(id) {
		a.out.Println("That notification has already expired.")
	}
	return nil
}

// profileActions offers account deletion under the profile view.
func (a *app) profileActions(ctx context.Context) error {
	choice := "back"
	err := a.run(ctx, huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Options(
				huh.NewOption("Back", "back"),
				huh.NewOption("Delete my account permanently", "delete"),
			).
			Value(&choice),
	)))
	if err != nil || choice != "delete" {
		return err
	}

	confirm := false
	err = a.run(ctx, huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Delete your account?").
			Description("This removes your account and all of its transaction history. It cannot be undone.").
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirm),
	)))
	if err != nil || !confirm {
		return err
	}

	if err := a.sessions.DeleteAccount(ctx); err != nil {
		a.reportFailure(err, "Failed to delete account")
		return nil
	}
	a.needsLogin.Store(true)
	return nil
}

func (a *app) listPayees() {
	list := a.payees.List()
	if len(list) == 0 {
		a.out.Println("No saved payees yet. Recipients are saved after a successful transfer.")
		return
	}
	for _, p := range list {
		a.out.Println(fmt.Sprintf("%-24s %s", p.Name, p.AccountNumber))
	}
}
