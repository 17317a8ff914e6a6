package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/devcamper-api/internal/api"
	apiMiddleware "github.com/phrazzld/devcamper-api/internal/api/middleware"
	"github.com/phrazzld/devcamper-api/internal/authz"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if !app.config.Server.IsProduction() {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.authService, api.CookieOptions{
		ExpireDays: app.config.Auth.CookieExpireDays,
		Secure:     app.config.Server.IsProduction(),
	})
	bootcampHandler := api.NewBootcampHandler(app.bootcampService)
	courseHandler := api.NewCourseHandler(app.courseService)
	userHandler := api.NewUserHandler(app.userService)

	protect := apiMiddleware.NewAuthMiddleware(app.authService).Authenticate
	canWrite := func(resource string) func(http.Handler) http.Handler {
		return apiMiddleware.RequirePermission(app.enforcer, resource, authz.ActionWrite)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Get("/logout", authHandler.Logout)
			r.Post("/forgotpassword", authHandler.ForgotPassword)
			r.Put("/resetpassword/{resettoken}", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Get("/me", authHandler.Me)
				r.Put("/updatedetails", authHandler.UpdateDetails)
				r.Put("/updatepassword", authHandler.UpdatePassword)
			})
		})

		r.Route("/bootcamps", func(r chi.Router) {
			r.Get("/", bootcampHandler.ListBootcamps)
			r.Get("/radius/{zipcode}/{distance}", bootcampHandler.BootcampsInRadius)
			r.Get("/{id}", bootcampHandler.GetBootcamp)
			r.Get("/{bootcampId}/courses", courseHandler.ListBootcampCourses)

			r.Group(func(r chi.Router) {
				r.Use(protect, canWrite(authz.ResourceBootcamps))
				r.Post("/", bootcampHandler.CreateBootcamp)
				r.Put("/{id}", bootcampHandler.UpdateBootcamp)
				r.Delete("/{id}", bootcampHandler.DeleteBootcamp)
			})
			r.With(protect, canWrite(authz.ResourceCourses)).
				Post("/{bootcampId}/courses", courseHandler.AddCourse)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", courseHandler.ListCourses)
			r.Get("/{id}", courseHandler.GetCourse)

			r.Group(func(r chi.Router) {
				r.Use(protect, canWrite(authz.ResourceCourses))
				r.Put("/{id}", courseHandler.UpdateCourse)
				r.Delete("/{id}", courseHandler.DeleteCourse)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(protect, apiMiddleware.RequirePermission(app.enforcer, authz.ResourceUsers, authz.ActionManage))
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Get("/{id}", userHandler.GetUser)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
