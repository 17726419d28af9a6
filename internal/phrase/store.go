// Package phrase stores the phrases that are expanded and typed.
package phrase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when no phrase has the requested name.
var ErrNotFound = errors.New("phrase not found")

// Phrase is a named piece of text that may contain macro tags.
type Phrase struct {
	ID        string
	Folder    string
	Name      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists phrases. Names are unique across folders.
type Store interface {
	// Save inserts p, or updates the phrase with the same name.
	// p.ID and p.CreatedAt are filled from the stored row.
	Save(ctx context.Context, p *Phrase) error
	Get(ctx context.Context, name string) (*Phrase, error)
	// List returns phrases sorted by name. An empty folder lists all phrases.
	List(ctx context.Context, folder string) ([]*Phrase, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Validate checks that p can be stored.
func (p *Phrase) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("phrase name cannot be empty")
	}
	if strings.ContainsAny(p.Name, "\n\r") {
		return fmt.Errorf("phrase name %q contains a line break", p.Name)
	}
	return nil
}
