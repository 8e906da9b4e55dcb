package main

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/barrigacheea/marketplace/internal/forms"
	"github.com/barrigacheea/marketplace/internal/produto"
	"github.com/barrigacheea/marketplace/internal/user"
)

const tracerName = "barriga-cheea-web"

const dateLayout = "2006-01-02"

func ping(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// home is the public browse page: every listing grouped by status, with
// free-text search and the three sort toggles applied per group.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer(tracerName).Start(r.Context(), "home")
	defer span.End()

	query := r.URL.Query().Get("q")
	sortOption := produto.SortOption(r.URL.Query().Get("sort"))
	span.SetAttributes(
		attribute.String("query", query),
		attribute.String("sort", string(sortOption)),
	)

	sections := make(map[produto.Status][]produto.Produto)
	counts := make(map[produto.Status]int)
	for _, status := range produto.Statuses() {
		listed := app.produtos.ListByStatus(status)
		counts[status] = len(listed)
		filtered := produto.FilterBySearch(listed, query)
		sections[status] = produto.SortBy(filtered, sortOption)
	}

	app.render(w, r, "home.page.tmpl", &templateData{
		Counts:   counts,
		Query:    query,
		Sections: sections,
		Sort:     string(sortOption),
		Statuses: produto.Statuses(),
		Total:    app.produtos.Count(),
	})
}

func (app *application) acessibilidade(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, "acessibilidade.page.tmpl", &templateData{})
}

func (app *application) showProduto(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer(tracerName).Start(r.Context(), "showProduto")
	defer span.End()

	id := r.URL.Query().Get(":id")
	span.SetAttributes(attribute.String("produto.id", id))

	p, err := app.produtos.GetByID(id)
	if errors.Is(err, produto.ErrNotFound) {
		// absence is expected; notify and send the visitor back home
		app.session.Put(r, "flash", "Produto não encontrado")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	app.render(w, r, "show.page.tmpl", &templateData{
		Produto: &p,
	})
}

func (app *application) createProdutoForm(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, "create.page.tmpl", &templateData{
		Form: forms.New(nil),
	})
}

func (app *application) createProduto(w http.ResponseWriter, r *http.Request) {
	in, form, ok := app.produtoInput(w, r)
	if !ok {
		return
	}
	if !form.Valid() {
		app.render(w, r, "create.page.tmpl", &templateData{Form: form})
		return
	}

	p := app.produtos.Add(in)

	app.session.Put(r, "flash", "Produto cadastrado com sucesso!")
	http.Redirect(w, r, fmt.Sprintf("/produto/%s", p.ID), http.StatusSeeOther)
}

func (app *application) editProdutoForm(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")

	p, err := app.produtos.GetByID(id)
	if errors.Is(err, produto.ErrNotFound) {
		app.session.Put(r, "flash", "Produto não encontrado")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	form := forms.New(url.Values{
		"photoDescription": {p.PhotoDescription},
		"name":             {p.Name},
		"pickupInfo":       {p.PickupInfo},
		"expirationDate":   {p.ExpirationDate.Format(dateLayout)},
		"releaseTime":      {p.ReleaseTime},
		"description":      {p.Description},
	})

	app.render(w, r, "edit.page.tmpl", &templateData{
		Form:    form,
		Produto: &p,
	})
}

func (app *application) updateProduto(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(":id")

	in, form, ok := app.produtoInput(w, r)
	if !ok {
		return
	}
	if !form.Valid() {
		p, err := app.produtos.GetByID(id)
		if errors.Is(err, produto.ErrNotFound) {
			app.session.Put(r, "flash", "Produto não encontrado")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		app.render(w, r, "edit.page.tmpl", &templateData{Form: form, Produto: &p})
		return
	}

	p, err := app.produtos.Update(id, in)
	if errors.Is(err, produto.ErrNotFound) {
		app.session.Put(r, "flash", "Produto não encontrado")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	app.session.Put(r, "flash", "Produto atualizado com sucesso!")
	http.Redirect(w, r, fmt.Sprintf("/produto/%s", p.ID), http.StatusSeeOther)
}

// produtoInput parses and validates the shared add/edit listing form.
// A false third return means the response was already written.
func (app *application) produtoInput(w http.ResponseWriter, r *http.Request) (produto.Input, *forms.Form, bool) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil && err != http.ErrNotMultipart {
		app.clientError(w, http.StatusBadRequest)
		return produto.Input{}, nil, false
	}

	form := forms.New(r.PostForm)
	form.Required("photoDescription", "name", "pickupInfo", "expirationDate", "releaseTime", "description")
	form.MaxLength("name", 100)
	form.MaxLength("photoDescription", 200)
	form.MaxLength("releaseTime", 50)

	var expiration time.Time
	if value := form.Get("expirationDate"); value != "" {
		var err error
		expiration, err = time.Parse(dateLayout, value)
		if err != nil {
			form.Errors.Add("expirationDate", "Data inválida (use AAAA-MM-DD)")
		}
	}

	photo, err := readPhoto(r)
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return produto.Input{}, nil, false
	}

	in := produto.Input{
		Photo:            photo,
		PhotoDescription: form.Get("photoDescription"),
		Name:             form.Get("name"),
		PickupInfo:       form.Get("pickupInfo"),
		Description:      form.Get("description"),
		ExpirationDate:   expiration,
		ReleaseTime:      form.Get("releaseTime"),
	}
	return in, form, true
}

// setProdutoStatus handles the explicit donor actions "marcar como
// liberado" and "marcar como doado". These pin the status: later edits no
// longer re-derive it from the expiration date.
func (app *application) setProdutoStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	status := produto.Status(r.PostForm.Get("status"))
	if !status.Valid() {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	app.produtos.SetStatus(r.URL.Query().Get(":id"), status)

	app.session.Put(r, "flash", fmt.Sprintf("Status atualizado para %q", status.Badge().Label))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) deleteProduto(w http.ResponseWriter, r *http.Request) {
	app.produtos.Remove(r.URL.Query().Get(":id"))

	app.session.Put(r, "flash", "Produto excluído")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) signupUserForm(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, "signup.page.tmpl", &templateData{
		Form: forms.New(nil),
	})
}

func (app *application) signupUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	form := forms.New(r.PostForm)
	form.Required("name", "email", "city", "state", "postalCode", "address", "password")
	form.MatchesPattern("email", forms.EmailRX)
	form.PasswordPolicy("password")

	if !form.Valid() {
		app.render(w, r, "signup.page.tmpl", &templateData{Form: form})
		return
	}

	u, err := app.users.Register(user.NewUser{
		Name:       form.Get("name"),
		Email:      form.Get("email"),
		City:       form.Get("city"),
		State:      form.Get("state"),
		PostalCode: form.Get("postalCode"),
		Address:    form.Get("address"),
		Password:   form.Get("password"),
	})
	if errors.Is(err, user.ErrDuplicateEmail) {
		form.Errors.Add("email", "Usuário já cadastrado com este e-mail")
		app.render(w, r, "signup.page.tmpl", &templateData{Form: form})
		return
	} else if err != nil {
		app.serverError(w, err)
		return
	}

	app.logConfirmationLink(u.Email)

	http.Redirect(w, r, "/user/signup/success", http.StatusSeeOther)
}

func (app *application) signupSuccess(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, "success.page.tmpl", &templateData{})
}

func (app *application) loginUserForm(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, "login.page.tmpl", &templateData{
		Form: forms.New(nil),
	})
}

// loginUser checks the provided credentials and redirects the client
// to the requested path
func (app *application) loginUser(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer(tracerName).Start(r.Context(), "loginUser")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	form := forms.New(r.PostForm)

	u, err := app.users.Authenticate(form.Get("email"), form.Get("password"))
	if errors.Is(err, user.ErrInvalidCredentials) {
		// a generic message; do not reveal which part was wrong
		form.Errors.Add("generic", "E-mail ou Senha incorretos")
		app.render(w, r, "login.page.tmpl", &templateData{Form: form})
		return
	} else if err != nil {
		app.serverError(w, err)
		return
	}

	// Add the ID of the current user to the session data (user logged in)
	app.session.Put(r, "authenticatedUserID", u.ID)
	app.session.Put(r, "rememberMe", form.Get("remember") != "")

	// Pop the captured path from the session data.
	path := app.session.PopString(r, "redirectPathAfterLogin")
	if path != "" {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}

	// Redirect the user to the root page.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) logoutUser(w http.ResponseWriter, r *http.Request) {
	// remove authenticatedUserID from the session data (user logged out)
	app.session.Remove(r, "authenticatedUserID")
	app.session.Remove(r, "rememberMe")
	// add flash message to the user session
	app.session.Put(r, "flash", "Você saiu da sua conta!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) userProfile(w http.ResponseWriter, r *http.Request) {
	// get user ID from session data
	userID := app.session.GetString(r, "authenticatedUserID")

	u, err := app.users.GetByID(userID)
	if errors.Is(err, user.ErrNotFound) {
		app.session.Remove(r, "authenticatedUserID")
		http.Redirect(w, r, "/user/login", http.StatusSeeOther)
		return
	} else if err != nil {
		app.serverError(w, err)
		return
	}

	app.render(w, r, "profile.page.tmpl", &templateData{
		User: &u,
	})
}

// confirmEmail handles the link from the (logged) confirmation mail.
func (app *application) confirmEmail(w http.ResponseWriter, r *http.Request) {
	email, err := app.parseConfirmationToken(r.URL.Query().Get("token"))
	if err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	if err := app.users.ConfirmEmail(email); err != nil {
		app.session.Put(r, "flash", "Usuário não encontrado")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	app.session.Put(r, "flash", "E-mail confirmado com sucesso!")
	http.Redirect(w, r, "/user/login", http.StatusSeeOther)
}

func (app *application) resendConfirmation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	email := r.PostForm.Get("email")
	err := app.users.ResendConfirmation(email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		app.session.Put(r, "flash", "Usuário não encontrado")
	case errors.Is(err, user.ErrAlreadyConfirmed):
		app.session.Put(r, "flash", "E-mail já confirmado")
	case err != nil:
		app.serverError(w, err)
		return
	default:
		app.logConfirmationLink(email)
		app.session.Put(r, "flash", "E-mail de confirmação reenviado!")
	}

	http.Redirect(w, r, "/user/login", http.StatusSeeOther)
}

func (app *application) forgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, "forgot.page.tmpl", &templateData{
		Form: forms.New(nil),
	})
}

func (app *application) forgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, http.StatusBadRequest)
		return
	}

	form := forms.New(r.PostForm)
	form.Required("email")
	form.MatchesPattern("email", forms.EmailRX)

	if !form.Valid() {
		app.render(w, r, "forgot.page.tmpl", &templateData{Form: form})
		return
	}

	err := app.users.ForgotPassword(form.Get("email"))
	if errors.Is(err, user.ErrNotFound) {
		form.Errors.Add("email", "Usuário não encontrado")
		app.render(w, r, "forgot.page.tmpl", &templateData{Form: form})
		return
	} else if err != nil {
		app.serverError(w, err)
		return
	}

	// mail delivery is simulated; the flow ends with the notice
	app.session.Put(r, "flash", "Enviamos as instruções de redefinição para o seu e-mail.")
	http.Redirect(w, r, "/user/login", http.StatusSeeOther)
}

// logConfirmationLink writes the confirmation link to the log in place of
// sending a real email.
func (app *application) logConfirmationLink(email string) {
	token, err := app.confirmationToken(email)
	if err != nil {
		app.errorLog.Printf("signing confirmation token: %v", err)
		return
	}
	app.infoLog.Printf("confirmation link for %s: /user/confirm?token=%s", email, token)
}
