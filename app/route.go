package app

import (
	"github.com/go-chi/chi/v5/middleware"
)

func (a *App) RegisterRoutes() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)

	a.invoices.Mount(a.router)
}
