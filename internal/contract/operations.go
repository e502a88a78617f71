// internal/contract/operations.go
package contract

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Shape names the body carried by a response.
type Shape string

const (
	ShapeTitleList  Shape = "Title[]"
	ShapeTitle      Shape = "Title"
	ShapeEntry      Shape = "WatchlistEntry"
	ShapeNoContent  Shape = "none"
	ShapeErrorBody  Shape = "ErrorBody"
	ShapeInputError Shape = "ErrorBody{field}"
)

// Operation is the shared description of one HTTP operation. Server routes and the client
// are both built from these values, so a path or status change happens in exactly one place.
type Operation struct {
	Name          string
	Method        string
	Path          string // placeholders use {name}
	AuthRequired  bool
	NumericParams []string
	Responses     map[int]Shape
	// Invalidates lists the read families whose cached results are stale after this
	// operation succeeds.
	Invalidates []string
}

var (
	ListTitles = Operation{
		Name:   "movies.list",
		Method: http.MethodGet,
		Path:   "/api/movies",
		Responses: map[int]Shape{
			http.StatusOK:         ShapeTitleList,
			http.StatusBadRequest: ShapeInputError,
		},
	}

	GetTitle = Operation{
		Name:          "movies.get",
		Method:        http.MethodGet,
		Path:          "/api/movies/{id}",
		NumericParams: []string{"id"},
		Responses: map[int]Shape{
			http.StatusOK:       ShapeTitle,
			http.StatusNotFound: ShapeErrorBody,
		},
	}

	ListWatchlist = Operation{
		Name:         "mylist.list",
		Method:       http.MethodGet,
		Path:         "/api/mylist",
		AuthRequired: true,
		Responses: map[int]Shape{
			http.StatusOK:           ShapeTitleList,
			http.StatusUnauthorized: ShapeErrorBody,
		},
	}

	AddToWatchlist = Operation{
		Name:         "mylist.add",
		Method:       http.MethodPost,
		Path:         "/api/mylist",
		AuthRequired: true,
		Responses: map[int]Shape{
			http.StatusCreated:      ShapeEntry,
			http.StatusBadRequest:   ShapeInputError,
			http.StatusUnauthorized: ShapeErrorBody,
			http.StatusNotFound:     ShapeErrorBody,
		},
		Invalidates: []string{"mylist.list"},
	}

	RemoveFromWatchlist = Operation{
		Name:          "mylist.remove",
		Method:        http.MethodDelete,
		Path:          "/api/mylist/{titleId}",
		AuthRequired:  true,
		NumericParams: []string{"titleId"},
		Responses: map[int]Shape{
			http.StatusNoContent:    ShapeNoContent,
			http.StatusUnauthorized: ShapeErrorBody,
			http.StatusNotFound:     ShapeErrorBody,
		},
		Invalidates: []string{"mylist.list"},
	}
)

// Operations returns every operation in declaration order.
func Operations() []Operation {
	return []Operation{ListTitles, GetTitle, ListWatchlist, AddToWatchlist, RemoveFromWatchlist}
}

// Declares reports whether status is one of the operation's declared outcomes.
func (op Operation) Declares(status int) bool {
	_, ok := op.Responses[status]
	return ok
}

// MuxPath is the gorilla/mux route template. Numeric params get a digit pattern so a
// non-numeric segment never reaches a handler.
func (op Operation) MuxPath() string {
	path := op.Path
	for _, name := range op.NumericParams {
		path = strings.Replace(path, "{"+name+"}", "{"+name+":[0-9]+}", 1)
	}
	return path
}

// URL resolves the operation path against params. See BuildURL.
func (op Operation) URL(params map[string]string) string {
	return BuildURL(op.Path, params)
}

func (op Operation) String() string {
	return fmt.Sprintf("%s %s (%s)", op.Method, op.Path, op.Name)
}

// BuildURL substitutes {name} placeholders in path with the matching params.
// Placeholders without a param are left in place; params without a placeholder are ignored.
func BuildURL(path string, params map[string]string) string {
	for name, value := range params {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	return path
}
