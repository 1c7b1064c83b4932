package service

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// Forms guarded against double submission
const (
	FormLogin    = "login"
	FormRegister = "register"
	FormCheckout = "checkout"
	FormContact  = "contact"
	FormProfile  = "profile"
	FormPassword = "password"
)

// Guard rejects a form submission while a previous submission of the same form is running
type Guard struct {
	mu    sync.Mutex
	forms map[string]*semaphore.Weighted
}

// NewGuard creates an empty Guard
func NewGuard() *Guard {
	return &Guard{forms: make(map[string]*semaphore.Weighted)}
}

func (g *Guard) semaphore(form string) *semaphore.Weighted {
	g.mu.Lock()
	defer g.mu.Unlock()

	sem, ok := g.forms[form]
	if !ok {
		sem = semaphore.NewWeighted(1)
		g.forms[form] = sem
	}
	return sem
}

// Do runs fn unless form is already being submitted, in which case it returns
// ErrSubmissionInFlight without calling fn
func (g *Guard) Do(form string, fn func() error) error {
	sem := g.semaphore(form)
	if !sem.TryAcquire(1) {
		return ErrSubmissionInFlight
	}
	defer sem.Release(1)

	return fn()
}
