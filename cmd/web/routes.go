package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {

	// 'standard' middleware used for every request
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders)

	// middleware specific to our dynamic application routes
	dynamicMiddleware := alice.New(app.session.Enable, noSurf, app.authenticate)

	mux := pat.New()
	mux.Get("/", dynamicMiddleware.ThenFunc(app.home))
	mux.Get("/acessibilidade", dynamicMiddleware.ThenFunc(app.acessibilidade))

	// fixed produto paths must be registered before the :id patterns
	mux.Get("/produto/criar", dynamicMiddleware.Append(app.requireAuthentication).ThenFunc(app.createProdutoForm))
	mux.Post("/produto/criar", dynamicMiddleware.Append(app.requireAuthentication).ThenFunc(app.createProduto))
	mux.Get("/produto/editar/:id", dynamicMiddleware.Append(app.requireAuthentication).ThenFunc(app.editProdutoForm))
	mux.Post("/produto/editar/:id", dynamicMiddleware.Append(app.requireAuthentication).ThenFunc(app.updateProduto))
	mux.Post("/produto/:id/status", dynamicMiddleware.Append(app.requireAuthentication).ThenFunc(app.setProdutoStatus))
	mux.Post("/produto/:id/excluir", dynamicMiddleware.Append(app.requireAuthentication).ThenFunc(app.deleteProduto))
	mux.Get("/produto/:id", dynamicMiddleware.ThenFunc(app.showProduto))

	mux.Get("/user/signup", dynamicMiddleware.ThenFunc(app.signupUserForm))
	mux.Post("/user/signup", dynamicMiddleware.ThenFunc(app.signupUser))
	mux.Get("/user/signup/success", dynamicMiddleware.ThenFunc(app.signupSuccess))
	mux.Get("/user/login", dynamicMiddleware.ThenFunc(app.loginUserForm))
	mux.Post("/user/login", dynamicMiddleware.ThenFunc(app.loginUser))
	mux.Post("/user/logout", dynamicMiddleware.Append(app.requireAuthentication).ThenFunc(app.logoutUser))
	mux.Get("/user/profile", dynamicMiddleware.Append(app.requireAuthentication).ThenFunc(app.userProfile))
	mux.Get("/user/confirm", dynamicMiddleware.ThenFunc(app.confirmEmail))
	mux.Post("/user/confirm/resend", dynamicMiddleware.ThenFunc(app.resendConfirmation))
	mux.Get("/user/forgot-password", dynamicMiddleware.ThenFunc(app.forgotPasswordForm))
	mux.Post("/user/forgot-password", dynamicMiddleware.ThenFunc(app.forgotPassword))

	mux.Get("/ping", http.HandlerFunc(ping))

	fileServer := http.FileServer(http.Dir("./ui/static/"))
	mux.Get("/static/", http.StripPrefix("/static", fileServer))

	// standardMiddleware ↔ servemux ↔ dynamicMiddleware ↔ app handler
	return standardMiddleware.Then(mux)
}
