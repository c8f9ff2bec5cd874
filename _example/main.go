package main

import (
	"net/http"
	"strconv"

	"github.com/shaurya/recordkit/db"
	"github.com/shaurya/recordkit/framework"
	"github.com/shaurya/recordkit/orm"
	"go.uber.org/zap"
)

// ──────────────────────────────────────────────────────────────────────────────
// Models
// ──────────────────────────────────────────────────────────────────────────────

type Author struct {
	orm.Record
	Name  string `gorm:"not null" validate:"required"`
	Email string `gorm:"uniqueIndex;not null" validate:"required,email"`
	Posts []Post
}

type Post struct {
	orm.Record
	Title     string `gorm:"not null" validate:"required"`
	Body      string `gorm:"type:text" record:"safe"`
	AuthorID  uint   `gorm:"not null;index"`
	Author    Author
	Published bool `record:"safe"`
	Datetime  bool `record:"unsafe"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Controllers
// ──────────────────────────────────────────────────────────────────────────────

type PostsController struct{ framework.Controller }

func (c *PostsController) Show(ctx *framework.Context) error {
	post, err := framework.Load[Post](ctx, ctx.Param(framework.IDParam), "Author")
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, post)
}

// Create assigns the request body onto a post whose author is fixed by the
// route; a body trying to set author_id is overridden.
func (c *PostsController) Create(ctx *framework.Context) error {
	authorID, err := strconv.ParseUint(ctx.Query("author"), 10, 64)
	if err != nil {
		return ctx.BadRequest(err)
	}

	post := &Post{}
	post.SetPreSetAttributes(map[string]any{"author_id": uint(authorID)})
	if err := ctx.BindAttributes(post); err != nil {
		return err
	}

	if err := framework.RepoFor[Post](ctx).Save(post); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (c *PostsController) Update(ctx *framework.Context) error {
	repo := framework.RepoFor[Post](ctx)
	post, err := repo.Load(ctx.Param(framework.IDParam))
	if err != nil {
		return err
	}
	post.SetPreSetAttributes(map[string]any{"author_id": post.AuthorID})
	if err := ctx.BindAttributes(post); err != nil {
		return err
	}
	if err := repo.Save(post); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, post)
}

func (c *PostsController) Destroy(ctx *framework.Context) error {
	repo := framework.RepoFor[Post](ctx)
	post, err := repo.Load(ctx.Param(framework.IDParam))
	if err != nil {
		return err
	}
	if err := repo.Delete(post); err != nil {
		return err
	}
	return ctx.Status(http.StatusNoContent)
}

// Latest returns the newest published post, with its creation date in the
// display format.
func (c *PostsController) Latest(ctx *framework.Context) error {
	app := ctx.App()
	criteria := orm.Criteria{}.Where("published = ?", true)
	post, err := framework.RepoFor[Post](ctx).LastCreated(criteria)
	if err != nil {
		return err
	}
	post.UseDates(app.Dates)
	return ctx.JSON(http.StatusOK, framework.H{
		"post":    post,
		"created": app.Dates.FromTimestamp(post.CreatedAt.Unix()),
		"author":  orm.Value(post, "Author.Name", "unknown"),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Main
// ──────────────────────────────────────────────────────────────────────────────

func main() {
	app := framework.New(nil, framework.SecureHeaders)
	if err := app.Boot(); err != nil {
		panic(err)
	}

	conn, err := db.Connect(app.Config.Database, app.Config.App.Env)
	if err != nil {
		app.Log.Fatal("database", zap.Error(err))
	}
	if err := app.UseDB(conn); err != nil {
		app.Log.Fatal("database", zap.Error(err))
	}

	posts := &PostsController{}
	app.Routes(func(r *framework.Router) {
		r.GET("/posts/latest", posts.Latest)
		r.Resources("posts", posts)
	})

	if err := app.Run(); err != nil {
		app.Log.Fatal("server", zap.Error(err))
	}
}
