// Package catalog holds the demo models served by the scaffold command.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	scerrors "github.com/toyz/scaffold/internal/errors"
	"github.com/toyz/scaffold/pkg/scaffold"
	"github.com/toyz/scaffold/pkg/scaffold/model"
	"github.com/toyz/scaffold/pkg/scaffold/mvc"
	"github.com/toyz/scaffold/pkg/scaffold/store"
)

// Country is keyed by its ISO 3166 alpha-2 code
type Country struct {
	Code       string `json:"code" xml:"code" validate:"required,len=2,alpha"`
	Name       string `json:"name" xml:"name" validate:"required"`
	Population int    `json:"population" xml:"population" validate:"gte=0"`
}

// Movie uses a generated integer key
type Movie struct {
	ID    int    `json:"id" xml:"id"`
	Title string `json:"title" xml:"title" validate:"required"`
	Year  int    `json:"year" xml:"year" validate:"omitempty,gte=1888,lte=2100"`
}

// Book is served by the Library controller
type Book struct {
	ID     uuid.UUID `json:"id" xml:"id"`
	Title  string    `json:"title" xml:"title" validate:"required"`
	Author string    `json:"author" xml:"author"`
}

var (
	CountrySchema = model.Define("Country",
		model.Prop("Code", func(c *Country) *string { return &c.Code }),
		model.Prop("Name", func(c *Country) *string { return &c.Name }, model.Order(1)),
		model.Prop("Population", func(c *Country) *int { return &c.Population }, model.Order(2)),
	)

	MovieSchema = model.Define("Movie",
		model.Prop("ID", func(m *Movie) *int { return &m.ID }, model.Hidden()),
		model.Prop("Title", func(m *Movie) *string { return &m.Title }, model.Order(1)),
		model.Prop("Year", func(m *Movie) *int { return &m.Year }, model.Order(2), model.CustomView()),
	)

	BookSchema = model.Define("Book",
		model.Prop("ID", func(b *Book) *uuid.UUID { return &b.ID }, model.Hidden()),
		model.Prop("Title", func(b *Book) *string { return &b.Title }, model.Order(1)),
		model.Prop("Author", func(b *Book) *string { return &b.Author }, model.Order(2)),
	)
)

// yearView renders Movie.Year in list and details views
const yearView = `<time datetime="{{.Value}}">{{.Value}}</time>`

// Options selects the storage of the catalog
type Options struct {
	// DB stores entities in PostgreSQL when set; memory stores are used otherwise
	DB store.DB
	// Seed inserts sample entities after registration
	Seed bool
}

// Catalog is the set of registered demo models
type Catalog struct {
	Countries store.Repository[Country]
	Movies    store.Repository[Movie]
	Books     store.Repository[Book]

	Descriptors []*model.Descriptor
}

// Register publishes Country, Movie and Book on app
func Register(app *mvc.App, opts Options) (*Catalog, error) {
	c := &Catalog{}

	countries, err := mvc.Register(app, CountrySchema, "Code",
		mvc.WithModelConstraint[Country](),
		mvc.WithRepositoryFactory(func(d *model.Descriptor) store.Repository[Country] {
			c.Countries = repository[Country](opts.DB, d)
			return c.Countries
		}))
	if err != nil {
		return nil, fmt.Errorf("register Country: %w", err)
	}

	movies, err := mvc.Register(app, MovieSchema, "ID",
		mvc.WithModelConstraint[Movie](),
		mvc.WithRepositoryFactory(func(d *model.Descriptor) store.Repository[Movie] {
			c.Movies = repository[Movie](opts.DB, d)
			return c.Movies
		}))
	if err != nil {
		return nil, fmt.Errorf("register Movie: %w", err)
	}
	if err := app.Views().RegisterPropertyView(movies.Name(), "Year", yearView); err != nil {
		return nil, err
	}

	books, err := mvc.Register(app, BookSchema, "ID",
		mvc.WithController("Library", func(base *mvc.Controller[Book]) mvc.Actions {
			return &Library{Controller: base}
		}),
		mvc.WithRepositoryFactory(func(d *model.Descriptor) store.Repository[Book] {
			c.Books = repository[Book](opts.DB, d)
			return c.Books
		}),
		mvc.WithAttributeRoute[Book]("Export", "Book/export", []string{http.MethodGet}, false, c.exportBooks),
	)
	if err != nil {
		return nil, fmt.Errorf("register Book: %w", err)
	}

	c.Descriptors = []*model.Descriptor{countries, movies, books}

	if opts.Seed {
		if err := c.Seed(context.Background()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func repository[T any](db store.DB, d *model.Descriptor) store.Repository[T] {
	if db == nil {
		return store.NewMemory[T](d)
	}
	return store.NewPostgres[T](db, d)
}

// Seed inserts the sample entities
func (c *Catalog) Seed(ctx context.Context) error {
	for _, country := range []*Country{
		{Code: "NO", Name: "Norway", Population: 5550000},
		{Code: "JP", Name: "Japan", Population: 124500000},
		{Code: "CL", Name: "Chile", Population: 19600000},
	} {
		if err := c.Countries.Insert(ctx, country); err != nil {
			return fmt.Errorf("seed country %s: %w", country.Code, err)
		}
	}

	for _, movie := range []*Movie{
		{Title: "Ran", Year: 1985},
		{Title: "Kon-Tiki", Year: 1950},
	} {
		if err := c.Movies.Insert(ctx, movie); err != nil {
			return fmt.Errorf("seed movie %q: %w", movie.Title, err)
		}
	}

	for _, book := range []*Book{
		{Title: "Dune", Author: "Frank Herbert"},
		{Title: "Kristin Lavransdatter", Author: "Sigrid Undset"},
	} {
		if err := c.Books.Insert(ctx, book); err != nil {
			return fmt.Errorf("seed book %q: %w", book.Title, err)
		}
	}
	return nil
}

// exportBooks serves every book as JSON, ordered by title
func (c *Catalog) exportBooks(ac *mvc.ActionContext) error {
	books, err := c.Books.List(ac.Ctx())
	if err != nil {
		return scerrors.WrapPersistenceError("Book", "export", err)
	}
	sort.SliceStable(books, func(i, j int) bool {
		return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
	})
	return ac.JSON(scaffold.OK(books))
}

// Library serves books. Details tags the response; every other action comes
// from the embedded controller.
type Library struct {
	*mvc.Controller[Book]
}

func (l *Library) Details(ac *mvc.ActionContext) error {
	ac.Request.Response().SetHeader("X-Catalog-Controller", "Library")
	return l.Controller.Details(ac)
}

// Schema returns the DDL creating the catalog tables in PostgreSQL
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS "country" ("code" varchar(2) PRIMARY KEY, "name" text NOT NULL, "population" integer NOT NULL DEFAULT 0)`,
		`CREATE TABLE IF NOT EXISTS "movie" ("id" serial PRIMARY KEY, "title" text NOT NULL, "year" integer NOT NULL DEFAULT 0)`,
		`CREATE TABLE IF NOT EXISTS "book" ("id" uuid PRIMARY KEY, "title" text NOT NULL, "author" text NOT NULL DEFAULT '')`,
	}
}

// Migrate creates the catalog tables
func Migrate(ctx context.Context, db store.DB) error {
	for _, stmt := range Schema() {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
