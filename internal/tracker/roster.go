package tracker

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/erazemk/ppestock/internal/ledger"
	"github.com/erazemk/ppestock/internal/model"
)

// Roster returns a copy of the employees, sites and superiors.
func (t *Tracker) Roster() model.Roster {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.roster.Clone()
}

// Employees returns the authorized employees.
func (t *Tracker) Employees() []model.Employee {
	return t.Roster().Employees
}

// AddEmployee authorizes a new employee.
func (t *Tracker) AddEmployee(ctx context.Context, e model.Employee) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("%w: employee name required", ledger.ErrInvalidCatalog)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isEmployee(e.Name) {
		return fmt.Errorf("employee %q: %w", e.Name, ledger.ErrDuplicate)
	}
	err := t.mutate(ctx, func() error {
		t.roster.Employees = append(t.roster.Employees, e)
		return nil
	})
	if err != nil {
		return err
	}
	t.logger.Info("employee added", "name", e.Name)
	return nil
}

// RemoveEmployee withdraws an employee. Past transactions keep the name.
func (t *Tracker) RemoveEmployee(ctx context.Context, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isEmployee(name) {
		return fmt.Errorf("employee %q: %w", name, ledger.ErrNotFound)
	}
	err := t.mutate(ctx, func() error {
		t.roster.Employees = slices.DeleteFunc(t.roster.Employees, func(e model.Employee) bool { return e.Name == name })
		return nil
	})
	if err != nil {
		return err
	}
	t.logger.Info("employee removed", "name", name)
	return nil
}

// AddSite registers a site items can be issued to.
func (t *Tracker) AddSite(ctx context.Context, name string) error {
	return t.addName(ctx, "site", name, func(r *model.Roster) *[]string { return &r.Sites })
}

// AddSuperior registers a superior who can sign for site issues.
func (t *Tracker) AddSuperior(ctx context.Context, name string) error {
	return t.addName(ctx, "superior", name, func(r *model.Roster) *[]string { return &r.Superiors })
}

func (t *Tracker) addName(ctx context.Context, kind, name string, list func(*model.Roster) *[]string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: %s name required", ledger.ErrInvalidCatalog, kind)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if slices.Contains(*list(&t.roster), name) {
		return fmt.Errorf("%s %q: %w", kind, name, ledger.ErrDuplicate)
	}
	err := t.mutate(ctx, func() error {
		names := list(&t.roster)
		*names = append(*names, name)
		return nil
	})
	if err != nil {
		return err
	}
	t.logger.Info(kind+" added", "name", name)
	return nil
}
