// Package router builds the gin engine and its route table.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"calories_tracker/internal/app/di"
	"calories_tracker/internal/platform/http/validation"
	jwtmw "calories_tracker/internal/platform/jwt"
	"calories_tracker/internal/shared/role"
)

// NewRouter registers every route. corsOrigins enables CORS for the listed origins when non-empty.
func NewRouter(app *di.App, corsOrigins []string) *gin.Engine {
	validation.Register()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", app.Health.Health)
	r.HEAD("/healthz", app.Health.Health)
	r.GET("/readyz", app.Health.Ready)

	api := r.Group("/api")

	accounts := api.Group("/accounts")
	// 新規ユーザー登録
	accounts.POST("/register", app.Auth.Register)
	// ログイン（JWT 発行）
	accounts.POST("/login", app.Auth.Login)

	// 認証必須のルート
	authed := api.Group("/")
	authed.Use(jwtmw.AuthRequired(app.JWT))

	me := authed.Group("/accounts")
	{
		me.GET("/me", app.Auth.Me)
		me.PUT("/settings/profile", app.Auth.EditProfile)

		regular := me.Group("/settings", jwtmw.RequirePolicy(role.MustBeARegularUser))
		regular.PUT("/daily-calorie-limit", app.Auth.SetDailyCalorieLimit)
		regular.PATCH("/daily-calorie-limit-exceeded", app.Auth.CheckCalorieDeficiency)
	}

	meals := authed.Group("/meals")
	{
		meals.GET("", jwtmw.RequirePolicy(role.MustBeAnAdministrator), app.Meals.ListAll)

		owned := meals.Group("", jwtmw.RequirePolicy(role.MustBeAnAdministratorOrARegularUser))
		owned.GET("/user/:id", app.Meals.ListByUser)
		owned.GET("/calories/today/:id", app.Meals.TotalCaloriesToday)
		owned.GET("/:id", app.Meals.Get)
		owned.POST("", app.Meals.Create)
		owned.PUT("/:id", app.Meals.Update)
		owned.DELETE("/:id", app.Meals.Delete)
	}

	users := authed.Group("/users", jwtmw.RequirePolicy(role.MustBeAnAdministratorOrAUserManager))
	{
		users.GET("", app.Users.List)
		users.GET("/:id", app.Users.Get)
		users.POST("", app.Users.Create)
		users.PUT("/:id", app.Users.Update)
		users.DELETE("/:id", app.Users.Delete)
	}

	return r
}
