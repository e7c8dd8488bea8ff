// Package route maps view paths to locations and keeps the current one.
package route

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ListPath is the path of the list view.
const ListPath = "/"

const updatePrefix = "/update/"

// ErrNoRoute is returned for paths no view serves.
var ErrNoRoute = errors.New("no route")

// Name identifies a view.
type Name string

const (
	List   Name = "list"
	Update Name = "update"
)

// Location is a matched path.
type Location struct {
	Path string
	Name Name
	id   string
}

// ID parses the :id parameter of an update location.
func (l Location) ID() (int64, error) {
	if l.Name != Update {
		return 0, fmt.Errorf("route %s has no id", l.Name)
	}
	id, err := strconv.ParseInt(l.id, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", l.id)
	}
	return id, nil
}

// UpdatePath returns the update view path for id.
func UpdatePath(id int64) string {
	return updatePrefix + strconv.FormatInt(id, 10)
}

// Match resolves path to a Location.
func Match(path string) (Location, error) {
	clean := strings.TrimSpace(path)
	if clean != ListPath {
		clean = strings.TrimSuffix(clean, "/")
	}
	switch {
	case clean == ListPath || clean == "":
		return Location{Path: ListPath, Name: List}, nil
	case strings.HasPrefix(clean, updatePrefix):
		id := strings.TrimPrefix(clean, updatePrefix)
		if id == "" || strings.Contains(id, "/") {
			break
		}
		return Location{Path: clean, Name: Update, id: id}, nil
	}
	return Location{}, fmt.Errorf("%w: %q", ErrNoRoute, path)
}

// Navigator moves the view to another path.
type Navigator interface {
	Navigate(path string) error
}

// Router holds the current location and tells subscribers about moves.
type Router struct {
	mu      sync.RWMutex
	current Location
	nextID  int
	subs    map[int]func(Location)
}

var _ Navigator = (*Router)(nil)

// NewRouter returns a router on the list view.
func NewRouter() *Router {
	return &Router{
		current: Location{Path: ListPath, Name: List},
		subs:    make(map[int]func(Location)),
	}
}

// Current returns the current location.
func (r *Router) Current() Location {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Navigate moves to path. Unknown paths are rejected and leave the current
// location in place.
func (r *Router) Navigate(path string) error {
	loc, err := Match(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.current = loc
	fns := make([]func(Location), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
	return nil
}

// Subscribe registers fn for every navigation. The returned func
// unsubscribes.
func (r *Router) Subscribe(fn func(Location)) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}
